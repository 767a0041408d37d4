package store

import (
	"context"
	"encoding/json"
	"time"

	"vigil/model"
)

const monitorCols = `id, name, url, method, headers, body, interval_sec, timeout_sec,
	expected_status, active, last_status, last_checked_at, next_check_at, created_at`

func (db *DB) InsertMonitor(ctx context.Context, m *model.Monitor) error {
	headers, _ := json.Marshal(m.Headers)
	if headers == nil {
		headers = []byte("{}")
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO monitors (id, name, url, method, headers, body, interval_sec, timeout_sec,
		 expected_status, active, next_check_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.Name, m.URL, m.Method, headers, m.Body, m.IntervalSec, m.TimeoutSec,
		m.ExpectedStatus, m.Active, m.NextCheckAt, m.CreatedAt,
	)
	return err
}

func (db *DB) GetMonitor(ctx context.Context, id string) (*model.Monitor, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+monitorCols+` FROM monitors WHERE id = $1`, id)
	return scanMonitor(row)
}

func (db *DB) GetMonitorByName(ctx context.Context, name string) (*model.Monitor, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+monitorCols+` FROM monitors WHERE name = $1`, name)
	return scanMonitor(row)
}

func (db *DB) ListMonitors(ctx context.Context) ([]model.Monitor, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+monitorCols+` FROM monitors ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var monitors []model.Monitor
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, err
		}
		monitors = append(monitors, *m)
	}
	return monitors, rows.Err()
}

// DueMonitors returns every active monitor whose next check time has arrived.
func (db *DB) DueMonitors(ctx context.Context, now time.Time) ([]model.Monitor, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+monitorCols+` FROM monitors WHERE active AND next_check_at <= $1`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var monitors []model.Monitor
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, err
		}
		monitors = append(monitors, *m)
	}
	return monitors, rows.Err()
}

// ClaimMonitor advances next_check_at iff the monitor is still due. The
// conditional UPDATE is what keeps two overlapping scan ticks from dispatching
// the same monitor twice.
func (db *DB) ClaimMonitor(ctx context.Context, id string, nextCheckAt time.Time) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE monitors SET next_check_at = $2
		 WHERE id = $1 AND active AND next_check_at <= now()`,
		id, nextCheckAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (db *DB) UpdateMonitorStatus(ctx context.Context, id string, status model.Status, checkedAt, nextCheckAt time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE monitors SET last_status = $2, last_checked_at = $3, next_check_at = $4 WHERE id = $1`,
		id, status, checkedAt, nextCheckAt,
	)
	return err
}

// SetMonitorActive pauses or resumes a monitor. Resuming schedules an
// immediate check rather than waiting out the old next_check_at.
func (db *DB) SetMonitorActive(ctx context.Context, id string, active bool) error {
	var err error
	if active {
		_, err = db.Pool.Exec(ctx,
			`UPDATE monitors SET active = true, next_check_at = now() WHERE id = $1`, id)
	} else {
		_, err = db.Pool.Exec(ctx,
			`UPDATE monitors SET active = false WHERE id = $1`, id)
	}
	return err
}

// TriggerImmediateCheck makes the monitor due now; the next scan tick picks
// it up.
func (db *DB) TriggerImmediateCheck(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE monitors SET next_check_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMonitor(row rowScanner) (*model.Monitor, error) {
	var m model.Monitor
	var headers []byte
	var lastStatus string
	if err := row.Scan(&m.ID, &m.Name, &m.URL, &m.Method, &headers, &m.Body,
		&m.IntervalSec, &m.TimeoutSec, &m.ExpectedStatus, &m.Active,
		&lastStatus, &m.LastCheckedAt, &m.NextCheckAt, &m.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	m.LastStatus = model.Status(lastStatus)
	if len(headers) > 0 {
		json.Unmarshal(headers, &m.Headers)
	}
	return &m, nil
}
