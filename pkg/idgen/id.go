// Package idgen generates the two kinds of identifier the engine needs:
// stable trade identifiers (UUIDs) and monotonic sequence numbers.
package idgen

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// TradeID returns a new stable identifier for a market trade.
func TradeID() string {
	return uuid.NewString()
}

// SequenceGenerator hands out monotonically increasing sequence numbers.
// The snapshot WAL (snapshot.EventStore) keeps its own counter and does
// not use it.
type SequenceGenerator struct {
	seq int64
}

// NewSequenceGenerator starts a generator at the given floor; Next()
// returns floor+1 on its first call.
func NewSequenceGenerator(floor int64) *SequenceGenerator {
	return &SequenceGenerator{seq: floor}
}

// Next returns the next sequence number.
func (g *SequenceGenerator) Next() int64 {
	return atomic.AddInt64(&g.seq, 1)
}
