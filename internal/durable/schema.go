// Package durable implements a bitemporal persistence backend: one
// (instrument, book) stream persisted across four tables, with every
// mutation to the unmatched/matched pools and the pnl snapshot committed
// in a single transaction per trade applied.
package durable

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// PosInfinity is the bitemporal +∞ sentinel: a valid_to this far in the
// future is never actually reached, and is never treated as a real
// wall-clock bound.
var PosInfinity = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS trade (
	trade_id        TEXT PRIMARY KEY,
	timestamp       TIMESTAMP NOT NULL,
	instrument      TEXT NOT NULL,
	book            TEXT NOT NULL,
	signed_quantity DECIMAL(26,12) NOT NULL,
	price           DECIMAL(26,6) NOT NULL
);

CREATE TABLE IF NOT EXISTS unmatched_trade (
	trade_id   TEXT NOT NULL REFERENCES trade(trade_id),
	instrument TEXT NOT NULL,
	book       TEXT NOT NULL,
	quantity   DECIMAL(26,12) NOT NULL,
	valid_from TIMESTAMP NOT NULL,
	valid_to   TIMESTAMP NOT NULL,
	PRIMARY KEY (valid_from, valid_to, trade_id, quantity)
);

CREATE TABLE IF NOT EXISTS matched_trade (
	opening_trade_id TEXT NOT NULL REFERENCES trade(trade_id),
	closing_trade_id TEXT NOT NULL REFERENCES trade(trade_id),
	instrument       TEXT NOT NULL,
	book             TEXT NOT NULL,
	valid_from       TIMESTAMP NOT NULL,
	valid_to         TIMESTAMP NOT NULL,
	PRIMARY KEY (valid_from, valid_to, opening_trade_id, closing_trade_id)
);

CREATE TABLE IF NOT EXISTS pnl (
	instrument TEXT NOT NULL,
	book       TEXT NOT NULL,
	quantity   DECIMAL(26,12) NOT NULL,
	cost       DECIMAL(26,6) NOT NULL,
	realized   DECIMAL(26,6) NOT NULL,
	valid_from TIMESTAMP NOT NULL,
	valid_to   TIMESTAMP NOT NULL,
	PRIMARY KEY (valid_from, valid_to, instrument, book)
);
`

// Store is a handle onto a DuckDB-backed bitemporal store.
type Store struct {
	db *sql.DB
}

// Open opens (and creates, if necessary) a DuckDB database at path and
// applies the schema. Pass ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("durable: open %q: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("durable: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
