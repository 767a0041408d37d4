package handler

import (
	"encoding/json"
	"net/http"

	"vigil/config"
	"vigil/report"
	"vigil/store"
)

type Handler struct {
	db      *store.DB
	reports *report.Service
	cfg     *config.Config
}

func New(db *store.DB, reports *report.Service, cfg *config.Config) *Handler {
	return &Handler{
		db:      db,
		reports: reports,
		cfg:     cfg,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
