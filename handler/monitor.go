package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vigil/model"
	"vigil/store"
)

type createMonitorRequest struct {
	Name           string            `json:"name"`
	URL            string            `json:"url"`
	Method         string            `json:"method"`
	Headers        map[string]string `json:"headers"`
	Body           string            `json:"body"`
	IntervalSec    int               `json:"intervalSec"`
	TimeoutSec     int               `json:"timeoutSec"`
	ExpectedStatus int               `json:"expectedStatus"`
}

func (h *Handler) CreateMonitor(w http.ResponseWriter, r *http.Request) {
	var req createMonitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.URL == "" {
		writeError(w, http.StatusBadRequest, "name and url are required")
		return
	}
	if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		writeError(w, http.StatusBadRequest, "url must be http or https")
		return
	}

	now := time.Now().UTC()
	m := model.Monitor{
		ID:             uuid.NewString(),
		Name:           req.Name,
		URL:            req.URL,
		Method:         defaultStr(req.Method, "GET"),
		Headers:        req.Headers,
		Body:           req.Body,
		IntervalSec:    defaultInt(req.IntervalSec, 300),
		TimeoutSec:     defaultInt(req.TimeoutSec, 30),
		ExpectedStatus: defaultInt(req.ExpectedStatus, 200),
		Active:         true,
		NextCheckAt:    now, // new monitors are checked on the next scan tick
		CreatedAt:      now,
	}

	if err := h.db.InsertMonitor(r.Context(), &m); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, m)
}

func (h *Handler) ListMonitors(w http.ResponseWriter, r *http.Request) {
	monitors, err := h.db.ListMonitors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if monitors == nil {
		monitors = []model.Monitor{}
	}
	writeJSON(w, monitors)
}

func (h *Handler) GetMonitor(w http.ResponseWriter, r *http.Request) {
	m, err := h.db.GetMonitor(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "monitor not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, m)
}

func (h *Handler) PauseMonitor(w http.ResponseWriter, r *http.Request) {
	if err := h.db.SetMonitorActive(r.Context(), chi.URLParam(r, "id"), false); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]string{"message": "monitor paused"})
}

// ResumeMonitor reactivates a monitor and schedules an immediate check.
func (h *Handler) ResumeMonitor(w http.ResponseWriter, r *http.Request) {
	if err := h.db.SetMonitorActive(r.Context(), chi.URLParam(r, "id"), true); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]string{"message": "monitor resumed"})
}

// TriggerCheck makes the monitor due immediately instead of waiting out its
// interval.
func (h *Handler) TriggerCheck(w http.ResponseWriter, r *http.Request) {
	err := h.db.TriggerImmediateCheck(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "monitor not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]string{"message": "check scheduled"})
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func defaultInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
