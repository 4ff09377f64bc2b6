package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studydeck-backend/internal/middleware"
	"studydeck-backend/internal/repository"
)

type StatsHandler struct {
	statsRepo *repository.StatsRepo
	setRepo   *repository.SetRepo
}

func NewStatsHandler(statsRepo *repository.StatsRepo, setRepo *repository.SetRepo) *StatsHandler {
	return &StatsHandler{statsRepo: statsRepo, setRepo: setRepo}
}

func (h *StatsHandler) SetStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	setID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid set ID", r))
		return
	}

	set, err := h.setRepo.GetByID(r.Context(), setID)
	if err != nil || set.UserID != userID {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Question set not found", r))
		return
	}

	stats, err := h.statsRepo.SetStats(r.Context(), userID, setID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch statistics", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}
