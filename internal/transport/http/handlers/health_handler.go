package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/vedran77/moodboard/internal/repository"
)

const readinessTimeout = 2 * time.Second

type HealthHandler struct {
	store repository.Pinger
	log   *slog.Logger
}

func NewHealthHandler(store repository.Pinger, log *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, log: log}
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
