package model

import "time"

// Status classifies the outcome of a single check.
type Status string

const (
	StatusUp       Status = "up"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// Monitor is an HTTP endpoint under periodic observation.
type Monitor struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	URL            string            `json:"url"`
	Method         string            `json:"method"`
	Headers        map[string]string `json:"headers,omitempty"`
	Body           string            `json:"body,omitempty"`
	IntervalSec    int               `json:"intervalSec"`
	TimeoutSec     int               `json:"timeoutSec"`
	ExpectedStatus int               `json:"expectedStatus"`
	Active         bool              `json:"active"`
	LastStatus     Status            `json:"lastStatus,omitempty"` // empty until first check
	LastCheckedAt  *time.Time        `json:"lastCheckedAt,omitempty"`
	NextCheckAt    time.Time         `json:"nextCheckAt"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// Interval returns the check interval as a duration.
func (m *Monitor) Interval() time.Duration {
	return time.Duration(m.IntervalSec) * time.Second
}

// Timeout returns the per-probe timeout as a duration.
func (m *Monitor) Timeout() time.Duration {
	return time.Duration(m.TimeoutSec) * time.Second
}
