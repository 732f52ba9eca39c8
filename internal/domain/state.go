package domain

import "pnl-engine/pkg/ptdecimal"

// PnlState is the immutable five-tuple the engine transitions on every
// trade:
//
//   - Quantity:  net signed inventory.
//   - Cost:      accumulated cost, sign convention "buys decrease cost,
//     sells increase it" so cost + quantity*price collapses to
//     zero when flat at the breakeven price.
//   - Realized:  cumulative realized P&L.
//   - Unmatched: pool of open lots, same sign as Quantity (or empty).
//   - Matched:   append-only ordered list of matched pairs.
//
// A PnlState is never mutated in place; every transition returns a new
// value. Unmatched/Matched are Go slices under copy-on-write semantics:
// internal/pool copies a slice into a fresh one before every push or
// pop, so a successor state may reuse an unchanged slice but never
// writes into one it shares.
type PnlState struct {
	Quantity  ptdecimal.Decimal
	Cost      ptdecimal.Decimal
	Realized  ptdecimal.Decimal
	Unmatched []PartialTrade
	Matched   []MatchedPair
}

// NewPnlState returns the zero/flat state.
func NewPnlState() PnlState {
	return PnlState{
		Quantity: ptdecimal.Zero(ptdecimal.Quantity),
		Cost:     ptdecimal.Zero(ptdecimal.Money),
		Realized: ptdecimal.Zero(ptdecimal.Money),
	}
}

// IsFlat reports whether the position carries no inventory.
func (s PnlState) IsFlat() bool {
	return s.Quantity.IsZero()
}
