package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"vigil/config"
	"vigil/report"
	"vigil/store"
)

// daysParam parses ?days= and clamps it to [1, MaxReportDays].
func daysParam(r *http.Request, fallback int) int {
	days := fallback
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}
	if days < 1 {
		days = 1
	}
	if days > config.MaxReportDays {
		days = config.MaxReportDays
	}
	return days
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.reports.FleetOverview(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, ov)
}

func (h *Handler) MonitorAnalytics(w http.ResponseWriter, r *http.Request) {
	days := daysParam(r, 30)
	rep, err := h.reports.MonitorAnalytics(r.Context(), chi.URLParam(r, "id"), days)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "monitor not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, rep)
}

func (h *Handler) MonitorUptime(w http.ResponseWriter, r *http.Request) {
	days := daysParam(r, 30)
	id := chi.URLParam(r, "id")
	uptime, err := h.reports.ComputeUptime(r.Context(), id, time.Duration(days)*24*time.Hour)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]interface{}{
		"monitorId":  id,
		"periodDays": days,
		"uptimePct":  uptime,
	})
}

func (h *Handler) MonitorIncidents(w http.ResponseWriter, r *http.Request) {
	days := daysParam(r, 7)
	id := chi.URLParam(r, "id")
	incidents, err := h.reports.ListIncidents(r.Context(), id, time.Duration(days)*24*time.Hour)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeIncidents(w, days, incidents)
}

func (h *Handler) AllIncidents(w http.ResponseWriter, r *http.Request) {
	days := daysParam(r, 7)
	incidents, err := h.reports.AllIncidents(r.Context(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeIncidents(w, days, incidents)
}

func writeIncidents(w http.ResponseWriter, days int, incidents []report.Incident) {
	if incidents == nil {
		incidents = []report.Incident{}
	}
	ongoing := 0
	for _, in := range incidents {
		if in.Ongoing {
			ongoing++
		}
	}
	writeJSON(w, map[string]interface{}{
		"periodDays":       days,
		"totalIncidents":   len(incidents),
		"ongoingIncidents": ongoing,
		"incidents":        incidents,
	})
}
