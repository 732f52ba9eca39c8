package stream

import (
	"pnl-engine/internal/analytics"
	"pnl-engine/internal/domain"
	"pnl-engine/internal/memory"
	"pnl-engine/pkg/ptdecimal"
)

// Gateway is the serialized front door onto an EngineRegistry: every
// AddTrade for a given (instrument, book) runs on that stream's shard,
// so the engine's fold-in-place state never needs its own lock.
type Gateway struct {
	router   *Router
	registry *memory.EngineRegistry
	arena    *memory.TradeArena
}

// NewGateway wires a router to a registry and an optional provenance
// arena (pass nil to skip recording provenance).
func NewGateway(router *Router, registry *memory.EngineRegistry, arena *memory.TradeArena) *Gateway {
	return &Gateway{router: router, registry: registry, arena: arena}
}

// AddTrade serializes application of trade against its stream's engine,
// returning the resulting state and trade-level strip (or the error
// applying this trade produced — an in-memory engine only fails on
// domain.ErrPoolExhaustion).
func (g *Gateway) AddTrade(trade domain.MarketTrade) (domain.PnlState, analytics.Strip, error) {
	var (
		state domain.PnlState
		strip analytics.Strip
		err   error
	)
	g.router.Submit(trade.Instrument, trade.Book, func() {
		e := g.registry.GetOrCreate(trade.Instrument, trade.Book)
		state, strip, err = e.AddTrade(trade)
		if err == nil && g.arena != nil {
			g.arena.Put(trade)
		}
	})
	return state, strip, err
}

// Strip derives the summary strip for a stream at the given mark,
// serialized on the same shard as its trades so it never observes a
// torn state.
func (g *Gateway) Strip(instrument, book string, mark ptdecimal.Decimal) analytics.Strip {
	var s analytics.Strip
	g.router.Submit(instrument, book, func() {
		e := g.registry.GetOrCreate(instrument, book)
		s = e.Strip(mark)
	})
	return s
}
