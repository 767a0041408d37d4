package store

import (
	"context"
	"time"

	"vigil/model"
)

func (db *DB) InsertCheck(ctx context.Context, c *model.Check) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO checks (id, monitor_id, status, status_code, response_time_ms, error_message, checked_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.MonitorID, c.Status, c.StatusCode, c.ResponseTimeMs, c.ErrorMessage, c.CheckedAt,
	)
	return err
}

// ListChecks returns a monitor's checks within [since, until], oldest first.
func (db *DB) ListChecks(ctx context.Context, monitorID string, since, until time.Time) ([]model.Check, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, monitor_id, status, status_code, response_time_ms, error_message, checked_at
		 FROM checks WHERE monitor_id = $1 AND checked_at >= $2 AND checked_at <= $3
		 ORDER BY checked_at ASC`,
		monitorID, since, until,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []model.Check
	for rows.Next() {
		var c model.Check
		var status string
		if err := rows.Scan(&c.ID, &c.MonitorID, &status, &c.StatusCode,
			&c.ResponseTimeMs, &c.ErrorMessage, &c.CheckedAt); err != nil {
			return nil, err
		}
		c.Status = model.Status(status)
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

// CheckCountsSince returns total and up check counts across all monitors,
// for the fleet-wide overview.
func (db *DB) CheckCountsSince(ctx context.Context, since time.Time) (total, up int64, err error) {
	err = db.Pool.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE status = 'up')
		 FROM checks WHERE checked_at >= $1`, since,
	).Scan(&total, &up)
	return total, up, err
}

func (db *DB) DeleteChecksOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM checks WHERE checked_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
