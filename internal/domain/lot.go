package domain

import "pnl-engine/pkg/ptdecimal"

// PartialTrade is a signed sub-quantity of a market trade, carrying a
// reference back to it. Two representations are equivalent:
// storing the remaining signed quantity directly, or storing a used
// magnitude and deriving remaining = original - used. This type picks
// the first: Quantity always holds what remains of the originating
// trade in this lot.
type PartialTrade struct {
	Trade    MarketTrade
	Quantity ptdecimal.Decimal
}

// NewPartialTrade wraps a market trade's full signed quantity as a lot.
func NewPartialTrade(trade MarketTrade) PartialTrade {
	return PartialTrade{Trade: trade, Quantity: trade.Quantity}
}

// WithQuantity returns a copy of the lot with a different remaining
// quantity, used when a lot is split during matching.
func (p PartialTrade) WithQuantity(q ptdecimal.Decimal) PartialTrade {
	return PartialTrade{Trade: p.Trade, Quantity: q}
}

// Price is always the originating trade's execution price.
func (p PartialTrade) Price() ptdecimal.Decimal {
	return p.Trade.Price
}

// MatchedPair is an (opening-lot, closing-lot) pair recorded in the
// matched pool. sign(Opening) = -sign(Closing) and their magnitudes are
// equal.
type MatchedPair struct {
	Opening PartialTrade
	Closing PartialTrade
}
