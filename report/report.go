// Package report derives uptime, incident, and response-time reporting from
// stored check history. The computations are pure: identical check history
// always yields identical results, so the API layer can recompute them at
// any time.
package report

import (
	"math"
	"time"

	"vigil/model"
)

// Incident is a contiguous span of non-up checks, bounded by up checks or
// the reporting window edge.
type Incident struct {
	MonitorID   string       `json:"monitorId"`
	MonitorName string       `json:"monitorName,omitempty"`
	Status      model.Status `json:"status"` // status of the opening check
	StartedAt   time.Time    `json:"startedAt"`
	ResolvedAt  *time.Time   `json:"resolvedAt"`
	DurationSec int64        `json:"durationSec"`
	Ongoing     bool         `json:"ongoing"`
}

// ResponseStats summarizes response times over checks that produced one.
// Timed-out and failed checks contribute no sample.
type ResponseStats struct {
	AvgMs int64 `json:"avgMs"`
	MinMs int64 `json:"minMs"`
	MaxMs int64 `json:"maxMs"`
}

// DailyStat is one calendar day of a breakdown. Uptime and AvgResponseMs are
// nil when the day has no checks: missing data, not measured failure.
type DailyStat struct {
	Date          string   `json:"date"`
	Uptime        *float64 `json:"uptime"`
	AvgResponseMs *int64   `json:"avgResponseMs"`
	Checks        int      `json:"checks"`
}

// Uptime returns the percentage of up checks, rounded to two decimals. An
// empty window reports 100.0: no data is healthy, not failing, so brand-new
// monitors do not surface as incidents.
func Uptime(checks []model.Check) float64 {
	if len(checks) == 0 {
		return 100.0
	}
	up := 0
	for _, c := range checks {
		if c.Status == model.StatusUp {
			up++
		}
	}
	return round2(100 * float64(up) / float64(len(checks)))
}

// Incidents scans checks in chronological order. An incident opens on the
// first non-up check after an up check (or after the window edge) and closes
// on the next up check. An incident with no closing check is ongoing, with
// duration measured against now.
func Incidents(checks []model.Check, now time.Time) []Incident {
	var incidents []Incident
	var open *Incident

	for _, c := range checks {
		switch {
		case c.Status != model.StatusUp && open == nil:
			open = &Incident{
				MonitorID: c.MonitorID,
				Status:    c.Status,
				StartedAt: c.CheckedAt,
			}
		case c.Status == model.StatusUp && open != nil:
			resolved := c.CheckedAt
			open.ResolvedAt = &resolved
			open.DurationSec = int64(resolved.Sub(open.StartedAt).Seconds())
			incidents = append(incidents, *open)
			open = nil
		}
	}

	if open != nil {
		open.Ongoing = true
		open.DurationSec = int64(now.Sub(open.StartedAt).Seconds())
		incidents = append(incidents, *open)
	}
	return incidents
}

// Stats computes mean/min/max response time over checks carrying a sample.
func Stats(checks []model.Check) ResponseStats {
	var sum, min, max int64
	n := int64(0)
	for _, c := range checks {
		if c.ResponseTimeMs == nil {
			continue
		}
		v := *c.ResponseTimeMs
		if n == 0 || v < min {
			min = v
		}
		if n == 0 || v > max {
			max = v
		}
		sum += v
		n++
	}
	if n == 0 {
		return ResponseStats{}
	}
	return ResponseStats{AvgMs: sum / n, MinMs: min, MaxMs: max}
}

// DailyBreakdown buckets checks by UTC calendar day for the last `days`
// days ending at now, oldest day first.
func DailyBreakdown(checks []model.Check, days int, now time.Time) []DailyStat {
	stats := make([]DailyStat, 0, days)

	for offset := days - 1; offset >= 0; offset-- {
		dayStart := now.UTC().AddDate(0, 0, -offset).Truncate(24 * time.Hour)
		dayEnd := dayStart.AddDate(0, 0, 1)

		var dayChecks []model.Check
		for _, c := range checks {
			if !c.CheckedAt.Before(dayStart) && c.CheckedAt.Before(dayEnd) {
				dayChecks = append(dayChecks, c)
			}
		}

		stat := DailyStat{Date: dayStart.Format("2006-01-02"), Checks: len(dayChecks)}
		if len(dayChecks) > 0 {
			up := 0
			for _, c := range dayChecks {
				if c.Status == model.StatusUp {
					up++
				}
			}
			uptime := round1(100 * float64(up) / float64(len(dayChecks)))
			stat.Uptime = &uptime

			avg := Stats(dayChecks).AvgMs
			stat.AvgResponseMs = &avg
		}
		stats = append(stats, stat)
	}
	return stats
}

// TotalDowntime sums incident durations within a window.
func TotalDowntime(incidents []Incident) int64 {
	var total int64
	for _, in := range incidents {
		total += in.DurationSec
	}
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
