package main

import (
	"fmt"

	"pnl-engine/internal/domain"
)

func parsePolicy(s string) (domain.MatchingPolicy, error) {
	switch domain.MatchingPolicy(s) {
	case domain.FIFO, domain.LIFO, domain.BestPrice, domain.WorstPrice:
		return domain.MatchingPolicy(s), nil
	default:
		return "", fmt.Errorf("pnlctl: unknown matching policy %q (want FIFO, LIFO, BEST_PRICE, or WORST_PRICE)", s)
	}
}
