package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vigil/model"
)

type createChannelRequest struct {
	Name   string            `json:"name"`
	Type   string            `json:"type"`
	Config map[string]string `json:"config"`
}

// requiredChannelKeys lists the config keys each channel type must carry.
// Malformed channels are rejected here, at creation time, so the dispatcher
// can assume a valid config.
var requiredChannelKeys = map[model.ChannelType][]string{
	model.ChannelEmail:    {"email"},
	model.ChannelSlack:    {"webhook_url"},
	model.ChannelTelegram: {"bot_token", "chat_id"},
	model.ChannelDiscord:  {"webhook_url"},
	model.ChannelWebhook:  {"url"},
}

func (h *Handler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var req createChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	keys, ok := requiredChannelKeys[model.ChannelType(req.Type)]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown channel type")
		return
	}
	for _, k := range keys {
		if req.Config[k] == "" {
			writeError(w, http.StatusBadRequest, "channel config missing "+k)
			return
		}
	}

	ch := model.AlertChannel{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Type:      model.ChannelType(req.Type),
		Config:    req.Config,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.db.InsertChannel(r.Context(), &ch); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, ch)
}

func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.db.ListChannels(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if channels == nil {
		channels = []model.AlertChannel{}
	}
	writeJSON(w, channels)
}

// AttachChannel links an alert channel to a monitor.
func (h *Handler) AttachChannel(w http.ResponseWriter, r *http.Request) {
	monitorID := chi.URLParam(r, "id")
	channelID := chi.URLParam(r, "channelId")
	if err := h.db.AttachChannel(r.Context(), monitorID, channelID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]string{"message": "channel attached"})
}
