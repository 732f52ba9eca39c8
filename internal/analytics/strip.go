// Package analytics derives the read-only views over a PnlState: average
// cost, unrealized P&L at a mark price, and the summary strip. None of
// this mutates state; it is pure projection.
package analytics

import (
	"fmt"

	"pnl-engine/internal/domain"
	"pnl-engine/pkg/ptdecimal"
)

// Strip is the (quantity, avg_cost, mark, realized, unrealized) tuple
// callers use to report P&L: a named, printable tuple, not a bare
// struct.
type Strip struct {
	Quantity   ptdecimal.Decimal `json:"quantity"`
	AvgCost    ptdecimal.Decimal `json:"avg_cost"`
	Mark       ptdecimal.Decimal `json:"mark"`
	Realized   ptdecimal.Decimal `json:"realized"`
	Unrealized ptdecimal.Decimal `json:"unrealized"`
}

// AvgCost returns (quantity == 0) ? 0 : -cost/quantity.
func AvgCost(state domain.PnlState) ptdecimal.Decimal {
	if state.Quantity.IsZero() {
		return ptdecimal.Zero(ptdecimal.Money)
	}
	avg, err := state.Cost.Neg().DivExact(state.Quantity)
	if err != nil {
		// state.Quantity is non-zero by the guard above; DivExact can
		// only fail on a zero divisor.
		panic(fmt.Sprintf("analytics: unexpected division error: %v", err))
	}
	return avg
}

// Unrealized returns quantity*mark + cost, zero when mark equals
// avg_cost on a non-flat position.
func Unrealized(state domain.PnlState, mark ptdecimal.Decimal) ptdecimal.Decimal {
	return state.Quantity.Mul(mark).Add(state.Cost)
}

// StripAt derives the full summary strip at a mark price.
func StripAt(state domain.PnlState, mark ptdecimal.Decimal) Strip {
	return Strip{
		Quantity:   state.Quantity,
		AvgCost:    AvgCost(state),
		Mark:       mark,
		Realized:   state.Realized,
		Unrealized: Unrealized(state, mark),
	}
}

// String renders a compact one-liner suitable for logs.
func (s Strip) String() string {
	return fmt.Sprintf("qty=%s avg=%s mark=%s realized=%s unrealized=%s",
		s.Quantity, s.AvgCost, s.Mark, s.Realized, s.Unrealized)
}
