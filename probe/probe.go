// Package probe executes a single HTTP check against a monitor and
// classifies the outcome.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"vigil/model"
	"vigil/store"
)

// maxErrorLen bounds the error text recorded on a check.
const maxErrorLen = 200

// Result is the outcome of one probe execution.
type Result struct {
	Check    model.Check
	Previous model.Status // monitor status before this probe, empty on the first check
}

// Transition reports whether this probe changed the monitor's status.
// The first check ever recorded for a monitor never counts as a transition,
// so a brand-new monitor cannot fire an alert.
func (r *Result) Transition() bool {
	return r.Previous != "" && r.Previous != r.Check.Status
}

// Executor performs HTTP checks and records their results.
type Executor struct {
	store  store.Store
	client *http.Client
}

func NewExecutor(st store.Store) *Executor {
	return &Executor{
		store: st,
		// The per-monitor timeout is applied via a request context deadline;
		// redirects are followed with the default policy.
		client: &http.Client{},
	}
}

// Execute probes one monitor, persists exactly one check, and advances the
// monitor's schedule to checkedAt + interval. It never retries: a failed
// probe is a down check, and the next attempt is the next scheduled tick.
func (e *Executor) Execute(ctx context.Context, m *model.Monitor) (*Result, error) {
	status, statusCode, responseMs, errMsg := e.probe(ctx, m)

	checkedAt := time.Now().UTC()
	check := model.Check{
		ID:             uuid.NewString(),
		MonitorID:      m.ID,
		Status:         status,
		StatusCode:     statusCode,
		ResponseTimeMs: responseMs,
		ErrorMessage:   errMsg,
		CheckedAt:      checkedAt,
	}

	if err := e.store.InsertCheck(ctx, &check); err != nil {
		return nil, fmt.Errorf("insert check: %w", err)
	}
	nextCheckAt := checkedAt.Add(m.Interval())
	if err := e.store.UpdateMonitorStatus(ctx, m.ID, status, checkedAt, nextCheckAt); err != nil {
		return nil, fmt.Errorf("update monitor status: %w", err)
	}

	return &Result{Check: check, Previous: m.LastStatus}, nil
}

// probe issues the configured request and classifies the outcome. It is a
// total function of the outcome: every path yields a status.
func (e *Executor) probe(ctx context.Context, m *model.Monitor) (status model.Status, statusCode *int, responseMs *int64, errMsg string) {
	ctx, cancel := context.WithTimeout(ctx, m.Timeout())
	defer cancel()

	var body io.Reader
	switch m.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if m.Body != "" {
			body = strings.NewReader(m.Body)
		}
	}

	req, err := http.NewRequestWithContext(ctx, m.Method, m.URL, body)
	if err != nil {
		return model.StatusDown, nil, nil, "Error: " + truncate(err.Error(), maxErrorLen)
	}
	for k, v := range m.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return model.StatusDown, nil, nil,
				fmt.Sprintf("Request timed out after %d seconds", m.TimeoutSec)
		}
		return model.StatusDown, nil, nil, "Connection error: " + truncate(err.Error(), maxErrorLen)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()

	code := resp.StatusCode
	if code == m.ExpectedStatus {
		return model.StatusUp, &code, &elapsed, ""
	}
	return model.StatusDegraded, &code, &elapsed,
		fmt.Sprintf("Expected status %d, got %d", m.ExpectedStatus, code)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
