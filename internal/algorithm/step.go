// Package algorithm implements the pure matching function at the heart
// of the engine: step(state, trade) -> state'. It never touches storage
// or wall-clock time; it is a total function over values, and the only
// error it can return is ErrPoolExhaustion, a condition unreachable if
// the engine's invariants hold.
package algorithm

import (
	"pnl-engine/internal/domain"
	"pnl-engine/internal/pool"
)

// Step applies a market trade to a PnlState under the given matching
// policy, returning the resulting state. A zero-quantity trade is a
// no-op.
func Step(state domain.PnlState, trade domain.MarketTrade, policy domain.MatchingPolicy) (domain.PnlState, error) {
	if trade.IsZero() {
		return state, nil
	}
	lot := domain.NewPartialTrade(trade)
	return addPartialTrade(state, lot, pool.ForPolicy(policy))
}

// addPartialTrade classifies the lot as extending or reducing the
// position and dispatches accordingly.
func addPartialTrade(state domain.PnlState, lot domain.PartialTrade, p pool.Unmatched) (domain.PnlState, error) {
	if state.Quantity.IsZero() || state.Quantity.Sign() == lot.Quantity.Sign() {
		return extendPosition(state, lot, p), nil
	}
	return reducePosition(state, &lot, p)
}

// extendPosition grows the position by pushing the lot onto the
// unmatched pool and adjusting cost.
func extendPosition(state domain.PnlState, lot domain.PartialTrade, p pool.Unmatched) domain.PnlState {
	return domain.PnlState{
		Quantity:  state.Quantity.Add(lot.Quantity),
		Cost:      state.Cost.Sub(lot.Quantity.Mul(lot.Price())),
		Realized:  state.Realized,
		Unmatched: p.Push(state.Unmatched, lot),
		Matched:   state.Matched,
	}
}

// reducePosition loops matching the incoming lot against the unmatched
// pool until it is exhausted or the pool runs dry, then recurses as an
// extension for any crossed-the-flat remainder.
func reducePosition(state domain.PnlState, lot *domain.PartialTrade, p pool.Unmatched) (domain.PnlState, error) {
	for lot != nil && !lot.Quantity.IsZero() && len(state.Unmatched) > 0 {
		remainder, next, err := matchOne(state, *lot, p)
		if err != nil {
			return domain.PnlState{}, err
		}
		state = next
		lot = remainder
	}

	if lot != nil && !lot.Quantity.IsZero() {
		// Crossed the flat line: the remainder becomes an extension in
		// the opposite direction.
		return addPartialTrade(state, *lot, p)
	}

	return state, nil
}

// matchOne performs a single pop-and-match against the unmatched pool,
// returning the state after the match and any remaining portion of the
// incoming lot still to be matched.
func matchOne(state domain.PnlState, lot domain.PartialTrade, p pool.Unmatched) (*domain.PartialTrade, domain.PnlState, error) {
	if len(state.Unmatched) == 0 {
		return nil, domain.PnlState{}, domain.ErrPoolExhaustion
	}
	opening, unmatched := p.Pop(state.Unmatched, state.Quantity)

	var (
		remainder  *domain.PartialTrade
		closingLot = lot
		openingLot = opening
	)

	switch {
	case lot.Quantity.Abs().GreaterThan(opening.Quantity.Abs()):
		// The incoming lot is larger than the matched lot: split it by
		// the matched lot's quantity, leaving a remainder still to match.
		rem := lot.WithQuantity(lot.Quantity.Add(opening.Quantity))
		closingLot = lot.WithQuantity(opening.Quantity.Neg())
		remainder = &rem

	case lot.Quantity.Abs().LessThan(opening.Quantity.Abs()):
		// The matched lot is larger: split it, return the spare to the
		// unmatched pool, and the incoming lot is fully consumed.
		spare := opening.WithQuantity(opening.Quantity.Add(lot.Quantity))
		openingLot = opening.WithQuantity(lot.Quantity.Neg())
		unmatched = p.Push(unmatched, spare)

	default:
		// Exact match; nothing left over on either side.
	}

	closeValue := closingLot.Quantity.Mul(closingLot.Price())
	openCost := openingLot.Quantity.Mul(openingLot.Price()).Neg()

	newState := domain.PnlState{
		Quantity:  state.Quantity.Sub(openingLot.Quantity),
		Cost:      state.Cost.Sub(openCost),
		Realized:  state.Realized.Add(openCost.Sub(closeValue)),
		Unmatched: unmatched,
		Matched:   pool.PushMatched(state.Matched, openingLot, closingLot),
	}

	return remainder, newState, nil
}
