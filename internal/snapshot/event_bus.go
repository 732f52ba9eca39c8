package snapshot

import (
	"sync"

	"pnl-engine/internal/domain"
)

// EventBus is the single write entry point for a trade that must be
// both durably appended to the WAL and folded into in-memory state: the
// WAL append happens first and assigns the entry its sequence ID, so
// state never reflects a trade the WAL does not hold, and a crash
// mid-apply is recovered by replaying the WAL alone.
type EventBus struct {
	store *EventStore
	state *SystemState
	mu    sync.Mutex
}

// NewEventBus wires a WAL to the state it replays into.
func NewEventBus(store *EventStore, state *SystemState) *EventBus {
	return &EventBus{
		store: store,
		state: state,
	}
}

// PublishTrade durably appends trade to the WAL as the next sequence
// entry, then folds it into the bus's SystemState, returning the
// resulting state for trade's stream.
func (b *EventBus) PublishTrade(trade domain.MarketTrade) (domain.PnlState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if trade.IsZero() {
		// A zero-quantity trade is a no-op: no WAL entry is written.
		if e, ok := b.state.Registry.Get(trade.Instrument, trade.Book); ok {
			return e.State(), nil
		}
		return domain.NewPnlState(), nil
	}

	event := NewTradeAppliedEvent(b.store.LastSequenceID()+1, trade)
	if err := b.store.Append(event); err != nil {
		return domain.PnlState{}, err
	}
	if err := b.state.ApplyEvent(event); err != nil {
		return domain.PnlState{}, err
	}

	e := b.state.Registry.GetOrCreate(trade.Instrument, trade.Book)
	return e.State(), nil
}
