package snapshot

import (
	"encoding/json"
	"time"

	"pnl-engine/internal/domain"
)

// EventType distinguishes WAL entry kinds. The current system only
// produces one kind, but the type tag is kept so future entry kinds
// (e.g. stream creation, policy change) don't require a log-format
// migration.
type EventType string

// EventTradeApplied is the only entry kind emitted today: a single
// market trade accepted onto some stream.
const EventTradeApplied EventType = "TRADE_APPLIED"

// Event is a single write-ahead log entry.
type Event struct {
	ID        int64           `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Checksum  string          `json:"checksum"`
}

// TradeAppliedData is the payload for an EventTradeApplied entry.
type TradeAppliedData struct {
	Trade domain.MarketTrade `json:"trade"`
}

// NewTradeAppliedEvent builds an event wrapping trade, with an
// auto-computed checksum.
func NewTradeAppliedEvent(id int64, trade domain.MarketTrade) *Event {
	dataBytes, _ := json.Marshal(TradeAppliedData{Trade: trade})
	event := &Event{
		ID:        id,
		Type:      EventTradeApplied,
		Timestamp: time.Now(),
		Data:      dataBytes,
	}
	event.Checksum = event.calculateChecksum()
	return event
}

func (e *Event) calculateChecksum() string {
	temp := struct {
		ID        int64           `json:"id"`
		Type      EventType       `json:"type"`
		Timestamp time.Time       `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}{
		ID:        e.ID,
		Type:      e.Type,
		Timestamp: e.Timestamp,
		Data:      e.Data,
	}

	data, _ := json.Marshal(temp)
	hash, err := CalculateChecksum(json.RawMessage(data))
	if err != nil {
		return ""
	}
	return hash
}

// Verify reports whether the event's stored checksum is still valid.
func (e *Event) Verify() bool {
	return e.Checksum == e.calculateChecksum()
}

// Marshal serializes the event as JSON.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent deserializes an event from JSON.
func UnmarshalEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
