package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/user/log-console/internal/domain"
)

// Controller is the slice of the hub the control surface needs.
type Controller interface {
	SetPaused(paused bool)
	Paused() bool
	SetStorageEnabled(enabled bool)
	StorageEnabled() bool
	SetCapacity(p domain.Producer, capacity int) error
	ClearAll()
}

// ControlHandler exposes the runtime-mutable subsystem switches: pause,
// storage-enabled, per-producer capacity and clear-all.
type ControlHandler struct {
	controller Controller
	logger     *slog.Logger
}

// NewControlHandler creates a new ControlHandler.
func NewControlHandler(controller Controller, logger *slog.Logger) *ControlHandler {
	return &ControlHandler{controller: controller, logger: logger}
}

// SetPause flips the process-wide pause switch.
func (h *ControlHandler) SetPause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paused bool `json:"paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	h.controller.SetPaused(req.Paused)
	h.writeState(w)
}

// SetStorage flips the process-wide storage switch.
func (h *ControlHandler) SetStorage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	h.controller.SetStorageEnabled(req.Enabled)
	h.writeState(w)
}

// SetCapacity resizes one producer's store.
func (h *ControlHandler) SetCapacity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Producer domain.Producer `json:"producer"`
		Capacity int             `json:"capacity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Capacity <= 0 {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if err := h.controller.SetCapacity(req.Producer, req.Capacity); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.writeState(w)
}

// Clear empties every store.
func (h *ControlHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.controller.ClearAll()
	h.writeState(w)
}

// State reports the current subsystem switches.
func (h *ControlHandler) State(w http.ResponseWriter, r *http.Request) {
	h.writeState(w)
}

func (h *ControlHandler) writeState(w http.ResponseWriter) {
	writeJSON(w, h.logger, map[string]bool{
		"paused":          h.controller.Paused(),
		"storage_enabled": h.controller.StorageEnabled(),
	})
}
