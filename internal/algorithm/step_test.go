package algorithm_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pnl-engine/internal/algorithm"
	"pnl-engine/internal/domain"
	"pnl-engine/pkg/ptdecimal"
)

func trade(qty, price string) domain.MarketTrade {
	q, err := ptdecimal.NewFromString(qty, ptdecimal.Quantity)
	if err != nil {
		panic(err)
	}
	p, err := ptdecimal.NewFromString(price, ptdecimal.Money)
	if err != nil {
		panic(err)
	}
	return domain.NewMarketTrade("t", time.Now(), "X", "b", q, p)
}

func mustStep(t *testing.T, state domain.PnlState, qty, price string, policy domain.MatchingPolicy) domain.PnlState {
	t.Helper()
	next, err := algorithm.Step(state, trade(qty, price), policy)
	require.NoError(t, err)
	return next
}

func requireState(t *testing.T, s domain.PnlState, qty, cost, realized string) {
	t.Helper()
	q, _ := ptdecimal.NewFromString(qty, ptdecimal.Quantity)
	c, _ := ptdecimal.NewFromString(cost, ptdecimal.Money)
	r, _ := ptdecimal.NewFromString(realized, ptdecimal.Money)
	require.Truef(t, s.Quantity.Equal(q), "quantity: want %s got %s", qty, s.Quantity)
	require.Truef(t, s.Cost.Equal(c), "cost: want %s got %s", cost, s.Cost)
	require.Truef(t, s.Realized.Equal(r), "realized: want %s got %s", realized, s.Realized)
}

func TestS1_FIFOLongThenShort(t *testing.T) {
	s := domain.NewPnlState()
	s = mustStep(t, s, "6", "100", domain.FIFO)
	requireState(t, s, "6", "-600", "0")

	s = mustStep(t, s, "6", "106", domain.FIFO)
	requireState(t, s, "12", "-1236", "0")

	s = mustStep(t, s, "6", "103", domain.FIFO)
	requireState(t, s, "18", "-1854", "0")

	s = mustStep(t, s, "-9", "105", domain.FIFO)
	requireState(t, s, "9", "-936", "27")
}

func buildLongLadder(t *testing.T, policy domain.MatchingPolicy) domain.PnlState {
	s := domain.NewPnlState()
	s = mustStep(t, s, "6", "100", policy)
	s = mustStep(t, s, "6", "106", policy)
	s = mustStep(t, s, "6", "103", policy)
	return s
}

func TestS2_BestPrice(t *testing.T) {
	s := buildLongLadder(t, domain.BestPrice)
	s = mustStep(t, s, "-9", "105", domain.BestPrice)
	requireState(t, s, "9", "-945", "36")
}

func TestS3_WorstPrice(t *testing.T) {
	s := buildLongLadder(t, domain.WorstPrice)
	s = mustStep(t, s, "-9", "105", domain.WorstPrice)
	requireState(t, s, "9", "-909", "0")
}

func TestS4_LIFO(t *testing.T) {
	s := buildLongLadder(t, domain.LIFO)
	s = mustStep(t, s, "-9", "105", domain.LIFO)
	requireState(t, s, "9", "-918", "9")
}

func TestS5_CrossTheFlat(t *testing.T) {
	s := domain.NewPnlState()
	s = mustStep(t, s, "1", "101", domain.FIFO)
	s = mustStep(t, s, "-2", "102", domain.FIFO)

	requireState(t, s, "-1", "102", "1")
	require.Len(t, s.Matched, 1)
	require.True(t, s.Matched[0].Opening.Quantity.Abs().Equal(s.Matched[0].Closing.Quantity.Abs()))
	require.Len(t, s.Unmatched, 1)
	negOne, _ := ptdecimal.NewFromString("-1", ptdecimal.Quantity)
	require.True(t, s.Unmatched[0].Quantity.Equal(negOne))
}

func TestS6_FractionalQuantities(t *testing.T) {
	s := domain.NewPnlState()
	s = mustStep(t, s, "10.17", "2.54", domain.FIFO)
	s = mustStep(t, s, "-8.17", "2.12", domain.FIFO)
	s = mustStep(t, s, "-1.5", "2.05", domain.FIFO)

	half, _ := ptdecimal.NewFromString("0.5", ptdecimal.Quantity)
	require.True(t, s.Quantity.Equal(half))
}

func TestZeroQuantityTradeIsNoOp(t *testing.T) {
	s := buildLongLadder(t, domain.FIFO)
	next := mustStep(t, s, "0", "999", domain.FIFO)
	require.True(t, next.Quantity.Equal(s.Quantity))
	require.True(t, next.Cost.Equal(s.Cost))
	require.Equal(t, len(s.Unmatched), len(next.Unmatched))
}

// Invariant 1: sum of unmatched lot quantities equals state.quantity.
func TestInvariantUnmatchedSumsToQuantity(t *testing.T) {
	s := buildLongLadder(t, domain.FIFO)
	s = mustStep(t, s, "-9", "105", domain.FIFO)

	sum := ptdecimal.Zero(ptdecimal.Quantity)
	for _, lot := range s.Unmatched {
		sum = sum.Add(lot.Quantity)
	}
	require.True(t, sum.Equal(s.Quantity))
}

// Invariant 2: flat implies empty unmatched pool and zero cost.
func TestInvariantFlatImpliesEmptyPoolAndZeroCost(t *testing.T) {
	s := domain.NewPnlState()
	s = mustStep(t, s, "5", "10", domain.FIFO)
	s = mustStep(t, s, "-5", "12", domain.FIFO)

	require.True(t, s.Quantity.IsZero())
	require.Empty(t, s.Unmatched)
	require.True(t, s.Cost.IsZero())
}

// Invariant 3: flat symmetry, realized = q * (p2 - p1).
func TestInvariantFlatSymmetry(t *testing.T) {
	s := domain.NewPnlState()
	s = mustStep(t, s, "7", "20", domain.FIFO)
	s = mustStep(t, s, "-7", "23", domain.FIFO)

	want, _ := ptdecimal.NewFromString("21", ptdecimal.Money) // 7 * (23-20)
	require.True(t, s.Realized.Equal(want))
}

// Invariant 4: policy determinism across repeated runs.
func TestInvariantPolicyDeterminism(t *testing.T) {
	run := func() domain.PnlState {
		s := buildLongLadder(t, domain.BestPrice)
		return mustStep(t, s, "-9", "105", domain.BestPrice)
	}
	a, b := run(), run()
	require.True(t, a.Quantity.Equal(b.Quantity))
	require.True(t, a.Cost.Equal(b.Cost))
	require.True(t, a.Realized.Equal(b.Realized))
}

// Invariant 6: matched-pair conservation, sum(open_cost - close_value) == realized.
func TestInvariantMatchedPairConservation(t *testing.T) {
	s := buildLongLadder(t, domain.FIFO)
	s = mustStep(t, s, "-9", "105", domain.FIFO)

	sum := ptdecimal.Zero(ptdecimal.Money)
	for _, pair := range s.Matched {
		openCost := pair.Opening.Quantity.Mul(pair.Opening.Price()).Neg()
		closeValue := pair.Closing.Quantity.Mul(pair.Closing.Price())
		sum = sum.Add(openCost.Sub(closeValue))
	}
	require.True(t, sum.Equal(s.Realized))
}

func TestPoolExhaustionIsUnreachableUnderNormalUse(t *testing.T) {
	// A reduction that never exceeds the open position never exhausts the
	// pool; this test documents that normal sequences never surface
	// ErrPoolExhaustion, rather than attempting to force it artificially.
	s := domain.NewPnlState()
	s = mustStep(t, s, "3", "10", domain.FIFO)
	_, err := algorithm.Step(s, trade("-3", "11"), domain.FIFO)
	require.NoError(t, err)
}
