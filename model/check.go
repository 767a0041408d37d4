package model

import "time"

// Check is one immutable probe result. Rows are append-only; only the
// retention sweep ever deletes them.
type Check struct {
	ID             string    `json:"id"`
	MonitorID      string    `json:"monitorId"`
	Status         Status    `json:"status"`
	StatusCode     *int      `json:"statusCode"`     // nil when no response was received
	ResponseTimeMs *int64    `json:"responseTimeMs"` // nil for timeouts and connection failures
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	CheckedAt      time.Time `json:"checkedAt"`
}
