package pool_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pnl-engine/internal/domain"
	"pnl-engine/internal/pool"
	"pnl-engine/pkg/ptdecimal"
)

func lotAt(qty, price int64) domain.PartialTrade {
	trade := domain.NewMarketTrade("t", time.Now(), "X", "b",
		ptdecimal.NewFromInt(qty, ptdecimal.Quantity), ptdecimal.NewFromInt(price, ptdecimal.Money))
	return domain.NewPartialTrade(trade)
}

func TestFIFOPopsEarliest(t *testing.T) {
	p := pool.ForPolicy(domain.FIFO)
	var lots []domain.PartialTrade
	lots = p.Push(lots, lotAt(10, 1))
	lots = p.Push(lots, lotAt(10, 2))

	popped, rest := p.Pop(lots, ptdecimal.NewFromInt(20, ptdecimal.Quantity))
	require.True(t, popped.Price().Equal(ptdecimal.NewFromInt(1, ptdecimal.Money)))
	require.Len(t, rest, 1)
}

func TestLIFOPopsLatest(t *testing.T) {
	p := pool.ForPolicy(domain.LIFO)
	var lots []domain.PartialTrade
	lots = p.Push(lots, lotAt(10, 1))
	lots = p.Push(lots, lotAt(10, 2))

	popped, rest := p.Pop(lots, ptdecimal.NewFromInt(20, ptdecimal.Quantity))
	require.True(t, popped.Price().Equal(ptdecimal.NewFromInt(2, ptdecimal.Money)))
	require.Len(t, rest, 1)
}

func TestBestPricePopsLowestWhenLong(t *testing.T) {
	p := pool.ForPolicy(domain.BestPrice)
	var lots []domain.PartialTrade
	lots = p.Push(lots, lotAt(10, 5))
	lots = p.Push(lots, lotAt(10, 2))
	lots = p.Push(lots, lotAt(10, 8))

	popped, rest := p.Pop(lots, ptdecimal.NewFromInt(30, ptdecimal.Quantity))
	require.True(t, popped.Price().Equal(ptdecimal.NewFromInt(2, ptdecimal.Money)))
	require.Len(t, rest, 2)
}

func TestBestPricePopsHighestWhenShort(t *testing.T) {
	p := pool.ForPolicy(domain.BestPrice)
	var lots []domain.PartialTrade
	lots = p.Push(lots, lotAt(-10, 5))
	lots = p.Push(lots, lotAt(-10, 2))
	lots = p.Push(lots, lotAt(-10, 8))

	popped, _ := p.Pop(lots, ptdecimal.NewFromInt(-30, ptdecimal.Quantity))
	require.True(t, popped.Price().Equal(ptdecimal.NewFromInt(8, ptdecimal.Money)))
}

func TestWorstPriceIsBestPriceMirror(t *testing.T) {
	p := pool.ForPolicy(domain.WorstPrice)
	var lots []domain.PartialTrade
	lots = p.Push(lots, lotAt(10, 5))
	lots = p.Push(lots, lotAt(10, 2))
	lots = p.Push(lots, lotAt(10, 8))

	popped, _ := p.Pop(lots, ptdecimal.NewFromInt(30, ptdecimal.Quantity))
	require.True(t, popped.Price().Equal(ptdecimal.NewFromInt(8, ptdecimal.Money)))
}

func TestBestPriceTieBreaksOnInsertionOrder(t *testing.T) {
	p := pool.ForPolicy(domain.BestPrice)
	var lots []domain.PartialTrade
	lots = p.Push(lots, lotAt(10, 5))
	lots = p.Push(lots, lotAt(20, 5))

	popped, rest := p.Pop(lots, ptdecimal.NewFromInt(30, ptdecimal.Quantity))
	require.True(t, popped.Price().Equal(ptdecimal.NewFromInt(5, ptdecimal.Money)))
	require.True(t, popped.Quantity.Equal(ptdecimal.NewFromInt(10, ptdecimal.Quantity)))
	require.Len(t, rest, 1)
	require.True(t, rest[0].Price().Equal(ptdecimal.NewFromInt(5, ptdecimal.Money)))
	require.True(t, rest[0].Quantity.Equal(ptdecimal.NewFromInt(20, ptdecimal.Quantity)))
}

func TestPushPreservesOriginalSlice(t *testing.T) {
	p := pool.ForPolicy(domain.FIFO)
	var lots []domain.PartialTrade
	lots = p.Push(lots, lotAt(10, 1))
	before := len(lots)

	_ = p.Push(lots, lotAt(10, 2))
	require.Len(t, lots, before, "Push must not mutate its argument slice")
}

func TestMatchedPoolIsAppendOnly(t *testing.T) {
	var matched []domain.MatchedPair
	matched = pool.PushMatched(matched, lotAt(10, 1), lotAt(-10, 2))
	require.Len(t, matched, 1)

	matched2 := pool.PushMatched(matched, lotAt(5, 1), lotAt(-5, 2))
	require.Len(t, matched2, 2)
	require.Len(t, matched, 1, "PushMatched must not mutate the original slice")
}
