package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pnl-engine/internal/analytics"
	"pnl-engine/internal/domain"
	"pnl-engine/pkg/ptdecimal"
)

func decQ(s string) ptdecimal.Decimal {
	d, err := ptdecimal.NewFromString(s, ptdecimal.Quantity)
	if err != nil {
		panic(err)
	}
	return d
}

func decM(s string) ptdecimal.Decimal {
	d, err := ptdecimal.NewFromString(s, ptdecimal.Money)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAvgCostFlatIsZero(t *testing.T) {
	s := domain.NewPnlState()
	require.True(t, analytics.AvgCost(s).IsZero())
}

func TestAvgCostNonFlat(t *testing.T) {
	s := domain.PnlState{Quantity: decQ("18"), Cost: decM("-1854")}
	avg := analytics.AvgCost(s)
	require.True(t, avg.Equal(decM("103")))
}

func TestUnrealizedZeroAtAvgCost(t *testing.T) {
	s := domain.PnlState{Quantity: decQ("9"), Cost: decM("-936")}
	avg := analytics.AvgCost(s)
	unrealized := analytics.Unrealized(s, avg)
	require.True(t, unrealized.IsZero())
}

func TestStripAtCombinesFields(t *testing.T) {
	s := domain.PnlState{Quantity: decQ("9"), Cost: decM("-936"), Realized: decM("27")}
	strip := analytics.StripAt(s, decM("110"))

	require.True(t, strip.Quantity.Equal(decQ("9")))
	require.True(t, strip.Realized.Equal(decM("27")))
	require.True(t, strip.Unrealized.Equal(decQ("9").Mul(decM("110")).Add(decM("-936"))))
}
