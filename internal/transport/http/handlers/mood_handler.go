package handlers

import (
	"log/slog"
	"net/http"

	"github.com/vedran77/moodboard/internal/service"
	"github.com/vedran77/moodboard/internal/transport/http/middleware"
)

type MoodHandler struct {
	moodService *service.MoodService
	log         *slog.Logger
}

func NewMoodHandler(moodService *service.MoodService, log *slog.Logger) *MoodHandler {
	return &MoodHandler{moodService: moodService, log: log}
}

func (h *MoodHandler) Submit(w http.ResponseWriter, r *http.Request) {
	// Owner comes from the token only; the body has no owner field.
	userID := middleware.GetUserID(r.Context())

	var input service.SubmitMoodInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	entry, err := h.moodService.Submit(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, h.log, "submit mood", err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// Today responds with the entry or a JSON null.
func (h *MoodHandler) Today(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	entry, err := h.moodService.GetToday(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, "today mood", err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *MoodHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	entries, err := h.moodService.GetHistory(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, "mood history", err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
