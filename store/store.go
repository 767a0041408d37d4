package store

import (
	"context"
	"time"

	"vigil/model"
)

// Store is the persistence surface the check engine consumes. *DB implements
// it against Postgres; tests substitute an in-memory fake.
type Store interface {
	// Scheduling.
	DueMonitors(ctx context.Context, now time.Time) ([]model.Monitor, error)
	ClaimMonitor(ctx context.Context, id string, nextCheckAt time.Time) (bool, error)

	// Probe results.
	InsertCheck(ctx context.Context, c *model.Check) error
	UpdateMonitorStatus(ctx context.Context, id string, status model.Status, checkedAt, nextCheckAt time.Time) error

	// Alerting.
	ActiveChannelsForMonitor(ctx context.Context, monitorID string) ([]model.AlertChannel, error)

	// Reporting.
	ListChecks(ctx context.Context, monitorID string, since, until time.Time) ([]model.Check, error)

	// Retention.
	DeleteChecksOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

var _ Store = (*DB)(nil)
