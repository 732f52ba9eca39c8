package durable

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"pnl-engine/internal/algorithm"
	"pnl-engine/internal/analytics"
	"pnl-engine/internal/domain"
	"pnl-engine/pkg/ptdecimal"
)

// Engine is a durable, transactional P&L stream for one (instrument,
// book) pair: every AddTrade reads the latest bitemporal snapshot,
// folds it through the pure matching algorithm, and writes the result
// back inside a single transaction.
type Engine struct {
	store      *Store
	instrument string
	book       string
	policy     domain.MatchingPolicy
}

// NewEngine builds a durable engine bound to one stream. Two Engine
// values for the same stream must not run AddTrade concurrently; callers
// serialize externally, typically via internal/stream.
func NewEngine(store *Store, instrument, book string, policy domain.MatchingPolicy) *Engine {
	return &Engine{store: store, instrument: instrument, book: book, policy: policy}
}

// AddTrade persists trade and returns the resulting state, plus the
// trade-level strip marked at the trade's own execution price. It
// rejects a trade whose timestamp is not strictly greater than the
// stream's most recent snapshot's valid_from (domain.ErrInvalidTimestamp),
// before any mutation occurs.
func (e *Engine) AddTrade(ctx context.Context, trade domain.MarketTrade) (domain.PnlState, analytics.Strip, error) {
	tx, err := e.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.PnlState{}, analytics.Strip{}, fmt.Errorf("%w: begin transaction: %v", domain.ErrStorageFailure, err)
	}
	defer tx.Rollback()

	current, lastValidFrom, err := e.loadState(ctx, tx, PosInfinity)
	if err != nil {
		return domain.PnlState{}, analytics.Strip{}, err
	}

	if !lastValidFrom.IsZero() && !trade.Timestamp.After(lastValidFrom) {
		slog.Warn("durable: rejected trade with non-monotonic timestamp",
			"instrument", e.instrument, "book", e.book, "trade_id", trade.TradeID,
			"trade_timestamp", trade.Timestamp, "last_valid_from", lastValidFrom)
		return domain.PnlState{}, analytics.Strip{}, fmt.Errorf("%w: trade timestamp %s is not after stream's last snapshot %s",
			domain.ErrInvalidTimestamp, trade.Timestamp, lastValidFrom)
	}

	next, err := algorithm.Step(current, trade, e.policy)
	if err != nil {
		slog.Warn("durable: rejected trade", "instrument", e.instrument, "book", e.book,
			"trade_id", trade.TradeID, "error", err)
		return domain.PnlState{}, analytics.Strip{}, err
	}

	if trade.IsZero() {
		// A zero-quantity trade is a no-op: nothing is written.
		return next, analytics.StripAt(next, trade.Price), nil
	}

	if err := e.persistTrade(ctx, tx, trade); err != nil {
		return domain.PnlState{}, analytics.Strip{}, err
	}
	if err := e.closeOpenRows(ctx, tx, trade.Timestamp); err != nil {
		return domain.PnlState{}, analytics.Strip{}, err
	}
	if err := e.insertSnapshot(ctx, tx, next, trade.Timestamp); err != nil {
		return domain.PnlState{}, analytics.Strip{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.PnlState{}, analytics.Strip{}, fmt.Errorf("%w: commit: %v", domain.ErrStorageFailure, err)
	}

	slog.Info("durable: trade persisted", "instrument", e.instrument, "book", e.book,
		"trade_id", trade.TradeID, "valid_from", trade.Timestamp)

	return next, analytics.StripAt(next, trade.Price), nil
}

// StateAt reconstructs the stream's state as of time t: the unmatched
// and matched pools and pnl row valid at t, equal to replaying every
// trade with timestamp <= t in-memory.
func (e *Engine) StateAt(ctx context.Context, t time.Time) (domain.PnlState, error) {
	state, _, err := e.loadState(ctx, e.store.db, t)
	return state, err
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (e *Engine) loadState(ctx context.Context, q queryer, asOf time.Time) (domain.PnlState, time.Time, error) {
	state := domain.NewPnlState()

	row := q.QueryRowContext(ctx, `
		SELECT quantity, cost, realized, valid_from FROM pnl
		WHERE instrument = ? AND book = ? AND valid_from <= ? AND ? < valid_to
		ORDER BY valid_from DESC LIMIT 1`, e.instrument, e.book, asOf, asOf)

	var (
		qtyStr, costStr, realizedStr string
		validFrom                    time.Time
	)
	switch err := row.Scan(&qtyStr, &costStr, &realizedStr, &validFrom); err {
	case nil:
		qty, err := decimalFromString(qtyStr, ptdecimal.Quantity)
		if err != nil {
			return domain.PnlState{}, time.Time{}, err
		}
		cost, err := decimalFromString(costStr, ptdecimal.Money)
		if err != nil {
			return domain.PnlState{}, time.Time{}, err
		}
		realized, err := decimalFromString(realizedStr, ptdecimal.Money)
		if err != nil {
			return domain.PnlState{}, time.Time{}, err
		}
		state.Quantity, state.Cost, state.Realized = qty, cost, realized
	case sql.ErrNoRows:
		// No snapshot yet: stream starts flat.
	default:
		return domain.PnlState{}, time.Time{}, fmt.Errorf("%w: load pnl snapshot: %v", domain.ErrStorageFailure, err)
	}

	unmatched, err := e.loadUnmatched(ctx, q, asOf)
	if err != nil {
		return domain.PnlState{}, time.Time{}, err
	}
	state.Unmatched = unmatched

	return state, validFrom, nil
}

func (e *Engine) loadUnmatched(ctx context.Context, q queryer, asOf time.Time) ([]domain.PartialTrade, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT u.trade_id, u.quantity, t.timestamp, t.instrument, t.book, t.price
		FROM unmatched_trade u JOIN trade t ON t.trade_id = u.trade_id
		WHERE u.instrument = ? AND u.book = ? AND u.valid_from <= ? AND ? < u.valid_to
		ORDER BY t.timestamp ASC`, e.instrument, e.book, asOf, asOf)
	if err != nil {
		return nil, fmt.Errorf("%w: load unmatched pool: %v", domain.ErrStorageFailure, err)
	}
	defer rows.Close()

	var out []domain.PartialTrade
	for rows.Next() {
		var (
			tradeID, instrument, book, qtyStr, priceStr string
			ts                                           time.Time
		)
		if err := rows.Scan(&tradeID, &qtyStr, &ts, &instrument, &book, &priceStr); err != nil {
			return nil, fmt.Errorf("%w: scan unmatched row: %v", domain.ErrStorageFailure, err)
		}
		qty, err := decimalFromString(qtyStr, ptdecimal.Quantity)
		if err != nil {
			return nil, err
		}
		price, err := decimalFromString(priceStr, ptdecimal.Money)
		if err != nil {
			return nil, err
		}
		trade := domain.NewMarketTrade(tradeID, ts, instrument, book, qty, price)
		out = append(out, domain.PartialTrade{Trade: trade, Quantity: qty})
	}
	return out, rows.Err()
}

func (e *Engine) persistTrade(ctx context.Context, tx *sql.Tx, trade domain.MarketTrade) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO trade (trade_id, timestamp, instrument, book, signed_quantity, price)
		VALUES (?, ?, ?, ?, ?, ?)`,
		trade.TradeID, trade.Timestamp, trade.Instrument, trade.Book,
		trade.Quantity.String(), trade.Price.String())
	if err != nil {
		return fmt.Errorf("%w: insert trade: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

// closeOpenRows closes out every currently-open (valid_to = +inf) row
// for this stream, across unmatched_trade, matched_trade, and pnl, by
// setting valid_to to the trade's timestamp.
func (e *Engine) closeOpenRows(ctx context.Context, tx *sql.Tx, at time.Time) error {
	for _, table := range []string{"unmatched_trade", "matched_trade", "pnl"} {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
			UPDATE %s SET valid_to = ? WHERE instrument = ? AND book = ? AND valid_to = ?`, table),
			at, e.instrument, e.book, PosInfinity)
		if err != nil {
			return fmt.Errorf("%w: close open %s rows: %v", domain.ErrStorageFailure, table, err)
		}
	}
	return nil
}

func (e *Engine) insertSnapshot(ctx context.Context, tx *sql.Tx, state domain.PnlState, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO pnl (instrument, book, quantity, cost, realized, valid_from, valid_to)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.instrument, e.book, state.Quantity.String(), state.Cost.String(), state.Realized.String(),
		at, PosInfinity)
	if err != nil {
		return fmt.Errorf("%w: insert pnl snapshot: %v", domain.ErrStorageFailure, err)
	}

	for _, lot := range state.Unmatched {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO unmatched_trade (trade_id, instrument, book, quantity, valid_from, valid_to)
			VALUES (?, ?, ?, ?, ?, ?)`,
			lot.Trade.TradeID, e.instrument, e.book, lot.Quantity.String(), at, PosInfinity)
		if err != nil {
			return fmt.Errorf("%w: insert unmatched row: %v", domain.ErrStorageFailure, err)
		}
	}

	for _, pair := range state.Matched {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO matched_trade (opening_trade_id, closing_trade_id, instrument, book, valid_from, valid_to)
			VALUES (?, ?, ?, ?, ?, ?)`,
			pair.Opening.Trade.TradeID, pair.Closing.Trade.TradeID, e.instrument, e.book, at, PosInfinity)
		if err != nil {
			return fmt.Errorf("%w: insert matched row: %v", domain.ErrStorageFailure, err)
		}
	}
	return nil
}

func decimalFromString(s string, kind ptdecimal.Kind) (ptdecimal.Decimal, error) {
	raw, err := decimal.NewFromString(s)
	if err != nil {
		return ptdecimal.Decimal{}, fmt.Errorf("%w: parse stored decimal %q: %v", domain.ErrStorageFailure, s, err)
	}
	return ptdecimal.FromRaw(raw, kind)
}
