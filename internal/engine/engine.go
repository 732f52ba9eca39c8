// Package engine is the in-memory P&L engine: a value-typed PnlState
// folded through the pure matching algorithm on every submitted trade,
// exposing new/add_trade/state/strip.
package engine

import (
	"pnl-engine/internal/algorithm"
	"pnl-engine/internal/analytics"
	"pnl-engine/internal/domain"
	"pnl-engine/internal/metrics"
	"pnl-engine/pkg/ptdecimal"
)

// Engine is a single-threaded, synchronous P&L stream for one
// instrument/book pair under a fixed matching policy. It holds its
// state as a value; concurrent callers must serialize externally — see
// internal/stream for a dispatcher that does exactly that.
type Engine struct {
	policy     domain.MatchingPolicy
	state      domain.PnlState
	instrument string
	book       string
}

// New constructs an in-memory engine with a chosen matching policy,
// starting flat.
func New(policy domain.MatchingPolicy) *Engine {
	return &Engine{policy: policy, state: domain.NewPnlState()}
}

// Restore constructs an engine with a chosen matching policy and a
// pre-existing state, used when rehydrating a stream from a snapshot or
// the durable backend rather than starting flat.
func Restore(policy domain.MatchingPolicy, state domain.PnlState) *Engine {
	return &Engine{policy: policy, state: state}
}

// Policy reports the matching policy this engine was constructed with.
func (e *Engine) Policy() domain.MatchingPolicy {
	return e.policy
}

// AddTrade applies a market trade and returns the new state, plus the
// trade-level strip: the summary strip marked at the trade's own
// execution price, letting a caller see realized/unrealized right where
// the trade printed without a second round-trip through Strip. The only
// error an in-memory engine can return is domain.ErrPoolExhaustion, an
// unreachable-if-invariants-hold condition.
func (e *Engine) AddTrade(trade domain.MarketTrade) (domain.PnlState, analytics.Strip, error) {
	if e.instrument == "" && e.book == "" {
		e.instrument, e.book = trade.Instrument, trade.Book
	}

	matchedBefore := len(e.state.Matched)
	next, err := algorithm.Step(e.state, trade, e.policy)
	if err != nil {
		metrics.IncTradeRejected(trade.Instrument, trade.Book)
		return domain.PnlState{}, analytics.Strip{}, err
	}
	e.state = next

	metrics.IncTradeApplied(trade.Instrument, trade.Book)
	metrics.IncMatchEvents(trade.Instrument, trade.Book, len(next.Matched)-matchedBefore)
	qty, _ := next.Quantity.Raw().Float64()
	realized, _ := next.Realized.Raw().Float64()
	metrics.ObserveState(trade.Instrument, trade.Book, qty, realized, len(next.Unmatched))

	return e.state, analytics.StripAt(next, trade.Price), nil
}

// State returns the current immutable snapshot.
func (e *Engine) State() domain.PnlState {
	return e.state
}

// Strip derives the summary strip at the given mark price, also
// recording the resulting unrealized figure as a gauge.
func (e *Engine) Strip(mark ptdecimal.Decimal) analytics.Strip {
	s := analytics.StripAt(e.state, mark)
	if e.instrument != "" {
		unrealized, _ := s.Unrealized.Raw().Float64()
		metrics.ObserveUnrealized(e.instrument, e.book, unrealized)
	}
	return s
}
