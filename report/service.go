package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"vigil/model"
	"vigil/store"
)

// Service answers analytics queries against stored check history. It only
// reads; a consistent snapshot of the relevant rows is all it needs.
type Service struct {
	db *store.DB
}

func NewService(db *store.DB) *Service {
	return &Service{db: db}
}

// MonitorReport is the full analytics payload for one monitor.
type MonitorReport struct {
	MonitorID        string      `json:"monitorId"`
	MonitorName      string      `json:"monitorName"`
	PeriodDays       int         `json:"periodDays"`
	TotalChecks      int         `json:"totalChecks"`
	UptimePct        float64     `json:"uptimePct"`
	AvgResponseMs    int64       `json:"avgResponseMs"`
	MinResponseMs    int64       `json:"minResponseMs"`
	MaxResponseMs    int64       `json:"maxResponseMs"`
	IncidentCount    int         `json:"incidentCount"`
	TotalDowntimeSec int64       `json:"totalDowntimeSec"`
	Daily            []DailyStat `json:"daily"`
}

// Overview is the fleet-wide summary across all monitors.
type Overview struct {
	TotalMonitors    int     `json:"totalMonitors"`
	ActiveMonitors   int     `json:"activeMonitors"`
	OverallUptime    float64 `json:"overallUptime"`
	TotalChecks24h   int64   `json:"totalChecks24h"`
	MonitorsUp       int     `json:"monitorsUp"`
	MonitorsDown     int     `json:"monitorsDown"`
	MonitorsDegraded int     `json:"monitorsDegraded"`
}

// ComputeUptime returns the uptime percentage for a monitor over a window
// ending now.
func (s *Service) ComputeUptime(ctx context.Context, monitorID string, window time.Duration) (float64, error) {
	now := time.Now().UTC()
	checks, err := s.db.ListChecks(ctx, monitorID, now.Add(-window), now)
	if err != nil {
		return 0, fmt.Errorf("list checks: %w", err)
	}
	return Uptime(checks), nil
}

// ListIncidents returns a monitor's incidents over a window ending now,
// oldest first.
func (s *Service) ListIncidents(ctx context.Context, monitorID string, window time.Duration) ([]Incident, error) {
	now := time.Now().UTC()
	checks, err := s.db.ListChecks(ctx, monitorID, now.Add(-window), now)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	return Incidents(checks, now), nil
}

// GetDailyBreakdown returns per-day uptime and response stats over the last
// `days` days.
func (s *Service) GetDailyBreakdown(ctx context.Context, monitorID string, days int) ([]DailyStat, error) {
	now := time.Now().UTC()
	checks, err := s.db.ListChecks(ctx, monitorID, now.AddDate(0, 0, -days), now)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	return DailyBreakdown(checks, days, now), nil
}

// MonitorAnalytics assembles the full report for a monitor.
func (s *Service) MonitorAnalytics(ctx context.Context, monitorID string, days int) (*MonitorReport, error) {
	m, err := s.db.GetMonitor(ctx, monitorID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	checks, err := s.db.ListChecks(ctx, monitorID, now.AddDate(0, 0, -days), now)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}

	incidents := Incidents(checks, now)
	stats := Stats(checks)

	return &MonitorReport{
		MonitorID:        m.ID,
		MonitorName:      m.Name,
		PeriodDays:       days,
		TotalChecks:      len(checks),
		UptimePct:        Uptime(checks),
		AvgResponseMs:    stats.AvgMs,
		MinResponseMs:    stats.MinMs,
		MaxResponseMs:    stats.MaxMs,
		IncidentCount:    len(incidents),
		TotalDowntimeSec: TotalDowntime(incidents),
		Daily:            DailyBreakdown(checks, days, now),
	}, nil
}

// AllIncidents collects incidents across every monitor over the last `days`
// days, newest first.
func (s *Service) AllIncidents(ctx context.Context, days int) ([]Incident, error) {
	monitors, err := s.db.ListMonitors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list monitors: %w", err)
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -days)

	var all []Incident
	for _, m := range monitors {
		checks, err := s.db.ListChecks(ctx, m.ID, since, now)
		if err != nil {
			return nil, fmt.Errorf("list checks for %s: %w", m.ID, err)
		}
		for _, in := range Incidents(checks, now) {
			in.MonitorName = m.Name
			all = append(all, in)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].StartedAt.After(all[j].StartedAt)
	})
	return all, nil
}

// FleetOverview summarizes all monitors plus 24h uptime across the fleet.
func (s *Service) FleetOverview(ctx context.Context) (*Overview, error) {
	monitors, err := s.db.ListMonitors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list monitors: %w", err)
	}

	ov := &Overview{TotalMonitors: len(monitors), OverallUptime: 100.0}
	for _, m := range monitors {
		if m.Active {
			ov.ActiveMonitors++
		}
		switch m.LastStatus {
		case model.StatusUp:
			ov.MonitorsUp++
		case model.StatusDown:
			ov.MonitorsDown++
		case model.StatusDegraded:
			ov.MonitorsDegraded++
		}
	}

	total, up, err := s.db.CheckCountsSince(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("check counts: %w", err)
	}
	ov.TotalChecks24h = total
	if total > 0 {
		ov.OverallUptime = round2(100 * float64(up) / float64(total))
	}
	return ov, nil
}
