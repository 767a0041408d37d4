package report

import (
	"reflect"
	"testing"
	"time"

	"vigil/model"
)

func check(monitorID string, status model.Status, at time.Time, responseMs int64) model.Check {
	c := model.Check{
		MonitorID: monitorID,
		Status:    status,
		CheckedAt: at,
	}
	if status != model.StatusDown {
		ms := responseMs
		c.ResponseTimeMs = &ms
		code := 200
		if status == model.StatusDegraded {
			code = 500
		}
		c.StatusCode = &code
	}
	return c
}

func TestUptimeEmptyWindowIsHealthy(t *testing.T) {
	if got := Uptime(nil); got != 100.0 {
		t.Errorf("Uptime(nil) = %v, want 100.0", got)
	}
	if got := Uptime([]model.Check{}); got != 100.0 {
		t.Errorf("Uptime(empty) = %v, want 100.0", got)
	}
}

func TestUptimeRounding(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	checks := []model.Check{
		check("m1", model.StatusUp, base, 100),
		check("m1", model.StatusDown, base.Add(5*time.Minute), 0),
		check("m1", model.StatusUp, base.Add(10*time.Minute), 100),
	}
	if got := Uptime(checks); got != 66.67 {
		t.Errorf("Uptime = %v, want 66.67", got)
	}
}

func TestIncidents(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	now := base.Add(time.Hour)

	tests := []struct {
		name     string
		statuses []model.Status
		want     int
		ongoing  int
	}{
		{"all up", []model.Status{"up", "up", "up"}, 0, 0},
		{"single closed", []model.Status{"up", "down", "up"}, 1, 0},
		{"opens at window edge", []model.Status{"down", "up"}, 1, 0},
		{"degraded counts", []model.Status{"up", "degraded", "up"}, 1, 0},
		{"merged non-up run", []model.Status{"up", "down", "degraded", "down", "up"}, 1, 0},
		{"two incidents", []model.Status{"down", "up", "down", "up"}, 2, 0},
		{"ongoing tail", []model.Status{"up", "down", "down"}, 1, 1},
		{"no checks", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var checks []model.Check
			for i, s := range tt.statuses {
				checks = append(checks, check("m1", s, base.Add(time.Duration(i)*5*time.Minute), 100))
			}
			incidents := Incidents(checks, now)
			if len(incidents) != tt.want {
				t.Fatalf("got %d incidents, want %d", len(incidents), tt.want)
			}
			ongoing := 0
			for _, in := range incidents {
				if in.Ongoing {
					ongoing++
					if in.ResolvedAt != nil {
						t.Error("ongoing incident has ResolvedAt set")
					}
				}
			}
			if ongoing != tt.ongoing {
				t.Errorf("got %d ongoing, want %d", ongoing, tt.ongoing)
			}
		})
	}
}

func TestIncidentsIdempotent(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	now := base.Add(time.Hour)
	checks := []model.Check{
		check("m1", model.StatusUp, base, 100),
		check("m1", model.StatusDown, base.Add(5*time.Minute), 0),
		check("m1", model.StatusUp, base.Add(10*time.Minute), 100),
	}

	first := Incidents(checks, now)
	second := Incidents(checks, now)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("incident list differs between runs:\n%+v\n%+v", first, second)
	}
}

// The end-to-end scenario: interval 300s, checks at t=0 (up), t=300
// (degraded), t=600 (up). One closed incident of 300s, uptime 66.67%.
func TestDegradedWindowEndToEnd(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	checks := []model.Check{
		check("m1", model.StatusUp, base, 120),
		check("m1", model.StatusDegraded, base.Add(300*time.Second), 450),
		check("m1", model.StatusUp, base.Add(600*time.Second), 130),
	}
	now := base.Add(600 * time.Second)

	if got := Uptime(checks); got != 66.67 {
		t.Errorf("Uptime = %v, want 66.67", got)
	}

	incidents := Incidents(checks, now)
	if len(incidents) != 1 {
		t.Fatalf("got %d incidents, want 1", len(incidents))
	}
	in := incidents[0]
	if in.Ongoing {
		t.Error("incident should be closed")
	}
	if in.DurationSec != 300 {
		t.Errorf("DurationSec = %d, want 300", in.DurationSec)
	}
	if in.Status != model.StatusDegraded {
		t.Errorf("Status = %q, want degraded", in.Status)
	}
	if !in.StartedAt.Equal(base.Add(300 * time.Second)) {
		t.Errorf("StartedAt = %v", in.StartedAt)
	}
	if in.ResolvedAt == nil || !in.ResolvedAt.Equal(base.Add(600*time.Second)) {
		t.Errorf("ResolvedAt = %v", in.ResolvedAt)
	}
}

func TestOngoingIncidentDurationTracksNow(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	checks := []model.Check{
		check("m1", model.StatusUp, base, 100),
		check("m1", model.StatusDown, base.Add(5*time.Minute), 0),
	}

	incidents := Incidents(checks, base.Add(15*time.Minute))
	if len(incidents) != 1 || !incidents[0].Ongoing {
		t.Fatalf("expected one ongoing incident, got %+v", incidents)
	}
	if incidents[0].DurationSec != 600 {
		t.Errorf("DurationSec = %d, want 600", incidents[0].DurationSec)
	}
}

func TestStatsSkipsMissingSamples(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	checks := []model.Check{
		check("m1", model.StatusUp, base, 100),
		check("m1", model.StatusDown, base.Add(time.Minute), 0), // no sample
		check("m1", model.StatusUp, base.Add(2*time.Minute), 300),
	}

	stats := Stats(checks)
	if stats.AvgMs != 200 {
		t.Errorf("AvgMs = %d, want 200", stats.AvgMs)
	}
	if stats.MinMs != 100 || stats.MaxMs != 300 {
		t.Errorf("Min/Max = %d/%d, want 100/300", stats.MinMs, stats.MaxMs)
	}

	if got := Stats(nil); got != (ResponseStats{}) {
		t.Errorf("Stats(nil) = %+v, want zero", got)
	}
}

func TestDailyBreakdown(t *testing.T) {
	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	checks := []model.Check{
		// Two days ago: one up, one down.
		check("m1", model.StatusUp, now.AddDate(0, 0, -2), 100),
		check("m1", model.StatusDown, now.AddDate(0, 0, -2).Add(time.Hour), 0),
		// Today: all up.
		check("m1", model.StatusUp, now.Add(-2*time.Hour), 150),
		check("m1", model.StatusUp, now.Add(-time.Hour), 250),
	}

	daily := DailyBreakdown(checks, 3, now)
	if len(daily) != 3 {
		t.Fatalf("got %d days, want 3", len(daily))
	}

	// Oldest first.
	if daily[0].Date != "2026-08-01" || daily[2].Date != "2026-08-03" {
		t.Errorf("dates = %s .. %s", daily[0].Date, daily[2].Date)
	}

	twoDaysAgo := daily[0]
	if twoDaysAgo.Uptime == nil || *twoDaysAgo.Uptime != 50.0 {
		t.Errorf("two days ago uptime = %v, want 50.0", twoDaysAgo.Uptime)
	}
	if twoDaysAgo.AvgResponseMs == nil || *twoDaysAgo.AvgResponseMs != 100 {
		t.Errorf("two days ago avg = %v, want 100", twoDaysAgo.AvgResponseMs)
	}

	// Yesterday had no checks: nil stats, not zero.
	yesterday := daily[1]
	if yesterday.Uptime != nil || yesterday.AvgResponseMs != nil {
		t.Errorf("empty day should report nil, got %+v", yesterday)
	}
	if yesterday.Checks != 0 {
		t.Errorf("empty day Checks = %d", yesterday.Checks)
	}

	today := daily[2]
	if today.Uptime == nil || *today.Uptime != 100.0 {
		t.Errorf("today uptime = %v, want 100.0", today.Uptime)
	}
	if today.AvgResponseMs == nil || *today.AvgResponseMs != 200 {
		t.Errorf("today avg = %v, want 200", today.AvgResponseMs)
	}
}

func TestTotalDowntime(t *testing.T) {
	incidents := []Incident{
		{DurationSec: 300},
		{DurationSec: 120, Ongoing: true},
	}
	if got := TotalDowntime(incidents); got != 420 {
		t.Errorf("TotalDowntime = %d, want 420", got)
	}
}
