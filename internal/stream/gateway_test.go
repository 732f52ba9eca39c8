package stream_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pnl-engine/internal/domain"
	"pnl-engine/internal/memory"
	"pnl-engine/internal/stream"
	"pnl-engine/pkg/ptdecimal"
)

func fifoPolicy(instrument, book string) domain.MatchingPolicy { return domain.FIFO }

func TestGatewaySerializesSameStream(t *testing.T) {
	router := stream.NewRouter(4, 16)
	registry := memory.NewEngineRegistry(fifoPolicy)
	gw := stream.NewGateway(router, registry, memory.NewTradeArena())

	qty := ptdecimal.NewFromInt(1, ptdecimal.Quantity)
	price := ptdecimal.NewFromInt(10, ptdecimal.Money)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			trade := domain.NewMarketTrade("t", time.Now(), "X", "b", qty, price)
			_, _, err := gw.AddTrade(trade)
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	state, _ := registry.Get("X", "b")
	require.True(t, state.State().Quantity.Equal(ptdecimal.NewFromInt(100, ptdecimal.Quantity)))
}

func TestGatewayRecordsProvenance(t *testing.T) {
	router := stream.NewRouter(2, 8)
	registry := memory.NewEngineRegistry(fifoPolicy)
	arena := memory.NewTradeArena()
	gw := stream.NewGateway(router, registry, arena)

	trade := domain.NewMarketTrade("abc", time.Now(), "X", "b",
		ptdecimal.NewFromInt(1, ptdecimal.Quantity), ptdecimal.NewFromInt(10, ptdecimal.Money))
	_, _, err := gw.AddTrade(trade)
	require.NoError(t, err)

	got, ok := arena.Get("abc")
	require.True(t, ok)
	require.Equal(t, "abc", got.TradeID)
}
