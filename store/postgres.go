package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type DB struct {
	Pool *pgxpool.Pool
}

func Connect(databaseURL string) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

func Migrate(db *DB) error {
	ctx := context.Background()
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS monitors (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL UNIQUE,
			url             TEXT NOT NULL,
			method          TEXT NOT NULL DEFAULT 'GET',
			headers         JSONB NOT NULL DEFAULT '{}',
			body            TEXT NOT NULL DEFAULT '',
			interval_sec    INT NOT NULL DEFAULT 300,
			timeout_sec     INT NOT NULL DEFAULT 30,
			expected_status INT NOT NULL DEFAULT 200,
			active          BOOLEAN NOT NULL DEFAULT true,
			last_status     TEXT NOT NULL DEFAULT '',
			last_checked_at TIMESTAMPTZ,
			next_check_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_monitors_due ON monitors(next_check_at) WHERE active;

		CREATE TABLE IF NOT EXISTS checks (
			id               TEXT PRIMARY KEY,
			monitor_id       TEXT NOT NULL REFERENCES monitors(id) ON DELETE CASCADE,
			status           TEXT NOT NULL,
			status_code      INT,
			response_time_ms BIGINT,
			error_message    TEXT NOT NULL DEFAULT '',
			checked_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_checks_monitor ON checks(monitor_id, checked_at);
		CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at);

		CREATE TABLE IF NOT EXISTS alert_channels (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			type       TEXT NOT NULL,
			config     JSONB NOT NULL DEFAULT '{}',
			active     BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS monitor_alert_channels (
			monitor_id TEXT NOT NULL REFERENCES monitors(id) ON DELETE CASCADE,
			channel_id TEXT NOT NULL REFERENCES alert_channels(id) ON DELETE CASCADE,
			PRIMARY KEY (monitor_id, channel_id)
		);
	`)
	return err
}

// Healthy checks the database connection.
func (db *DB) Healthy(ctx context.Context) error {
	var n int
	return db.Pool.QueryRow(ctx, "SELECT 1").Scan(&n)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
