package snapshot

import (
	"encoding/json"
	"fmt"

	"pnl-engine/internal/domain"
	"pnl-engine/internal/memory"
)

// SystemState is the full in-memory state of every stream the WAL has
// seen: one engine per (instrument, book), held behind an
// EngineRegistry, plus the WAL cursor this state reflects.
type SystemState struct {
	Registry    *memory.EngineRegistry `json:"-"`
	LastEventID int64                  `json:"last_event_id"`
	PolicyOf    func(instrument, book string) domain.MatchingPolicy `json:"-"`
}

// NewSystemState builds an empty state. policyOf selects the matching
// policy for a stream the first time a trade for it is replayed.
func NewSystemState(policyOf func(instrument, book string) domain.MatchingPolicy) *SystemState {
	return &SystemState{
		Registry: memory.NewEngineRegistry(policyOf),
		PolicyOf: policyOf,
	}
}

// ApplyEvent folds one WAL entry into state.
func (ss *SystemState) ApplyEvent(event *Event) error {
	ss.LastEventID = event.ID

	switch event.Type {
	case EventTradeApplied:
		return ss.applyTradeApplied(event)
	default:
		return fmt.Errorf("snapshot: unknown event type %q", event.Type)
	}
}

func (ss *SystemState) applyTradeApplied(event *Event) error {
	var data TradeAppliedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("snapshot: unmarshal trade-applied payload: %w", err)
	}

	e := ss.Registry.GetOrCreate(data.Trade.Instrument, data.Trade.Book)
	_, _, err := e.AddTrade(data.Trade)
	return err
}

// Streams reports every (instrument, book) key currently materialized.
func (ss *SystemState) Streams() []string {
	return ss.Registry.Streams()
}

// Snapshot captures every stream's PnlState, keyed by stream, alongside
// the WAL cursor it was taken at.
type Snapshot struct {
	SequenceID int64                      `json:"sequence_id"`
	States     map[string]domain.PnlState `json:"states"`
	Checksum   string                     `json:"checksum"`
}

// ToSnapshot serializes the current state of every known stream.
func (ss *SystemState) ToSnapshot() *Snapshot {
	states := ss.Registry.StreamStates()
	checksum, _ := CalculateChecksum(states)
	return &Snapshot{
		SequenceID: ss.LastEventID,
		States:     states,
		Checksum:   checksum,
	}
}
