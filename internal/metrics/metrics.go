// Package metrics exposes Prometheus instrumentation for the engine:
// per-stream position, realized/unrealized P&L and pool-size gauges and
// trade-processing counters, registered once at init() on the default
// Prometheus registerer. This package does not serve them over HTTP.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pnl_trades_total",
			Help: "Trades applied, split by stream and outcome.",
		},
		[]string{"instrument", "book", "outcome"}, // outcome: applied|rejected
	)

	quantity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pnl_quantity",
			Help: "Current net signed position, per stream.",
		},
		[]string{"instrument", "book"},
	)

	realized = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pnl_realized",
			Help: "Cumulative realized P&L, per stream.",
		},
		[]string{"instrument", "book"},
	)

	unrealized = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pnl_unrealized",
			Help: "Unrealized P&L at the last reported mark, per stream.",
		},
		[]string{"instrument", "book"},
	)

	unmatchedPoolSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pnl_unmatched_pool_size",
			Help: "Number of open lots currently in the unmatched pool, per stream.",
		},
		[]string{"instrument", "book"},
	)

	matchEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pnl_match_events_total",
			Help: "Opening/closing lot pairs recorded, per stream.",
		},
		[]string{"instrument", "book"},
	)
)

func init() {
	prometheus.MustRegister(tradesTotal, quantity, realized, unrealized, unmatchedPoolSize, matchEvents)
}

// ObserveState updates the position and pool-size gauges for a stream
// from its current PnlState-derived fields.
func ObserveState(instrument, book string, qty, realizedPnl float64, unmatchedLots int) {
	quantity.WithLabelValues(instrument, book).Set(qty)
	realized.WithLabelValues(instrument, book).Set(realizedPnl)
	unmatchedPoolSize.WithLabelValues(instrument, book).Set(float64(unmatchedLots))
}

// ObserveUnrealized records unrealized P&L at the mark a caller just
// derived via strip(mark).
func ObserveUnrealized(instrument, book string, value float64) {
	unrealized.WithLabelValues(instrument, book).Set(value)
}

// IncTradeApplied counts a trade that was folded into a stream's state.
func IncTradeApplied(instrument, book string) {
	tradesTotal.WithLabelValues(instrument, book, "applied").Inc()
}

// IncTradeRejected counts a trade that was rejected (e.g. ErrPoolExhaustion).
func IncTradeRejected(instrument, book string) {
	tradesTotal.WithLabelValues(instrument, book, "rejected").Inc()
}

// IncMatchEvents adds n newly recorded matched pairs to a stream's count.
func IncMatchEvents(instrument, book string, n int) {
	matchEvents.WithLabelValues(instrument, book).Add(float64(n))
}
