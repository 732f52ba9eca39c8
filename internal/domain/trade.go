package domain

import (
	"time"

	"pnl-engine/pkg/ptdecimal"
)

// MarketTrade is an immutable record of an externally executed trade
// against a single instrument in a single book. Created once when a
// caller submits a trade; never mutated; referenced by any number of
// partial lots derived from it.
type MarketTrade struct {
	TradeID    string
	Timestamp  time.Time
	Instrument string
	Book       string
	// Quantity is signed: buy positive, sell negative.
	Quantity ptdecimal.Decimal
	Price    ptdecimal.Decimal
}

// NewMarketTrade constructs a MarketTrade. Callers are responsible for
// supplying a stable TradeID (see pkg/idgen.TradeID).
func NewMarketTrade(tradeID string, ts time.Time, instrument, book string, quantity, price ptdecimal.Decimal) MarketTrade {
	return MarketTrade{
		TradeID:    tradeID,
		Timestamp:  ts,
		Instrument: instrument,
		Book:       book,
		Quantity:   quantity,
		Price:      price,
	}
}

// IsZero reports whether the trade carries no quantity at all, the
// no-op case the in-memory engine accepts and ignores.
func (t MarketTrade) IsZero() bool {
	return t.Quantity.IsZero()
}
