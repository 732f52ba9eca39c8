package memory

import (
	"strings"
	"sync"

	"pnl-engine/internal/domain"
	"pnl-engine/internal/engine"
)

// EngineRegistry is the in-memory multi-stream registry: one *engine.Engine
// per (instrument, book) pair, each running its own matching policy and
// folding its own PnlState independently. Lookup and creation are safe
// for concurrent use; serializing trades *within* a stream is
// internal/stream's job, not this registry's.
type EngineRegistry struct {
	mu       sync.RWMutex
	engines  map[string]*engine.Engine
	policyOf func(instrument, book string) domain.MatchingPolicy
}

// NewEngineRegistry builds a registry. policyOf selects the matching
// policy for a stream the first time it is seen; it is called at most
// once per (instrument, book) pair.
func NewEngineRegistry(policyOf func(instrument, book string) domain.MatchingPolicy) *EngineRegistry {
	return &EngineRegistry{
		engines:  make(map[string]*engine.Engine),
		policyOf: policyOf,
	}
}

func streamKey(instrument, book string) string {
	return instrument + "\x00" + book
}

// SplitStreamKey recovers the (instrument, book) pair from a key
// produced by Streams or StreamStates.
func SplitStreamKey(key string) (instrument, book string) {
	instrument, book, _ = strings.Cut(key, "\x00")
	return instrument, book
}

// Get returns the existing engine for a stream, or false if none exists
// yet.
func (r *EngineRegistry) Get(instrument, book string) (*engine.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[streamKey(instrument, book)]
	return e, ok
}

// GetOrCreate returns the engine for a stream, constructing one with
// policyOf's verdict on first use.
func (r *EngineRegistry) GetOrCreate(instrument, book string) *engine.Engine {
	key := streamKey(instrument, book)

	r.mu.RLock()
	e, ok := r.engines[key]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.engines[key]; ok {
		return e
	}
	e = engine.New(r.policyOf(instrument, book))
	r.engines[key] = e
	return e
}

// Streams lists every (instrument, book) pair currently registered.
func (r *EngineRegistry) Streams() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.engines))
	for k := range r.engines {
		out = append(out, k)
	}
	return out
}

// Restore installs state as the starting point for (instrument, book),
// constructing its engine with policyOf's verdict if it doesn't already
// exist. Used when rehydrating a registry from a snapshot.
func (r *EngineRegistry) Restore(instrument, book string, state domain.PnlState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := streamKey(instrument, book)
	var policy domain.MatchingPolicy
	if e, ok := r.engines[key]; ok {
		policy = e.Policy()
	} else {
		policy = r.policyOf(instrument, book)
	}
	r.engines[key] = engine.Restore(policy, state)
}

// StreamStates snapshots every registered stream's current PnlState,
// keyed the same way as Streams, for callers that need a consistent
// point-in-time view across all streams (e.g. snapshot.SnapshotManager).
func (r *EngineRegistry) StreamStates() map[string]domain.PnlState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]domain.PnlState, len(r.engines))
	for k, e := range r.engines {
		out[k] = e.State()
	}
	return out
}
