package domain

// MatchingPolicy selects which open lot in the unmatched pool is retired
// first when a position is reduced.
type MatchingPolicy string

const (
	FIFO       MatchingPolicy = "FIFO"
	LIFO       MatchingPolicy = "LIFO"
	BestPrice  MatchingPolicy = "BEST_PRICE"
	WorstPrice MatchingPolicy = "WORST_PRICE"
)
