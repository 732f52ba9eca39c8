package pool

import "pnl-engine/internal/domain"

// PushMatched records a completed (opening, closing) pair. Order of
// insertion is observable and tested; pairs are never removed or
// rewritten, so this always returns a strictly longer slice.
func PushMatched(matched []domain.MatchedPair, opening, closing domain.PartialTrade) []domain.MatchedPair {
	return append(append([]domain.MatchedPair{}, matched...), domain.MatchedPair{Opening: opening, Closing: closing})
}
