package infrastructure

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		user_email   TEXT NOT NULL,
		total_amount BIGINT NOT NULL,
		currency     TEXT NOT NULL,
		status       TEXT NOT NULL,
		workflow_id  TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL,
		version      INT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_workflow_id ON orders (workflow_id)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_id       TEXT NOT NULL REFERENCES orders (id),
		product_id     TEXT NOT NULL,
		name           TEXT NOT NULL,
		quantity       INT NOT NULL,
		price_at_order BIGINT NOT NULL,
		currency       TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS payment_transactions (
		id                      TEXT PRIMARY KEY,
		order_id                TEXT NOT NULL,
		external_transaction_id TEXT,
		amount                  BIGINT NOT NULL,
		currency                TEXT NOT NULL,
		status                  TEXT NOT NULL,
		created_at              TIMESTAMPTZ NOT NULL,
		updated_at              TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id       TEXT PRIMARY KEY,
		name     TEXT NOT NULL,
		price    BIGINT NOT NULL,
		currency TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		product_id TEXT PRIMARY KEY REFERENCES products (id),
		quantity   INT NOT NULL CHECK (quantity >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_reservations (
		order_id   TEXT NOT NULL,
		product_id TEXT NOT NULL,
		quantity   INT NOT NULL,
		status     TEXT NOT NULL,
		PRIMARY KEY (order_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS event_stream (
		id             TEXT PRIMARY KEY,
		aggregate_id   TEXT NOT NULL,
		topic          TEXT NOT NULL,
		event_type     TEXT NOT NULL,
		version        TEXT NOT NULL,
		data           JSONB,
		metadata       JSONB,
		correlation_id TEXT,
		timestamp      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_event_stream_aggregate ON event_stream (aggregate_id, timestamp)`,
}

// EnsureSchema creates the tables the order service needs. Intended for
// local development and tests; production deployments run migrations.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to ensure schema")
		}
	}
	return nil
}
