package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studydeck-backend/internal/middleware"
	"studydeck-backend/internal/models"
	"studydeck-backend/internal/repository"
	"studydeck-backend/internal/services"
)

type TimerHandler struct {
	timerService *services.TimerService
	setRepo      *repository.SetRepo
}

func NewTimerHandler(timerService *services.TimerService, setRepo *repository.SetRepo) *TimerHandler {
	return &TimerHandler{timerService: timerService, setRepo: setRepo}
}

func (h *TimerHandler) resolveSet(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID := middleware.GetUserID(r.Context())

	setID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid set ID", r))
		return uuid.Nil, uuid.Nil, false
	}

	set, err := h.setRepo.GetByID(r.Context(), setID)
	if err != nil || set.UserID != userID {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Question set not found", r))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, setID, true
}

// decodeConfig tolerates an empty body; every config field is optional.
func decodeConfig(r *http.Request) (models.TimerConfig, error) {
	var cfg models.TimerConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil && err != io.EOF {
		return cfg, err
	}
	return cfg, nil
}

func (h *TimerHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	cfg, err := decodeConfig(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	timer, err := h.timerService.Start(r.Context(), userID, setID, cfg)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"timer": timer})
}

func (h *TimerHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	status, err := h.timerService.Status(r.Context(), userID, setID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *TimerHandler) Pause(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	timer, err := h.timerService.Pause(r.Context(), userID, setID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"timer": timer})
}

func (h *TimerHandler) Advance(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	auto := r.URL.Query().Get("auto") == "1"
	timer, err := h.timerService.Advance(r.Context(), userID, setID, auto)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"timer": timer})
}

func (h *TimerHandler) Stop(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	timer, err := h.timerService.Stop(r.Context(), userID, setID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"timer": timer})
}

func (h *TimerHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	cfg, err := decodeConfig(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	timer, err := h.timerService.UpdateConfig(r.Context(), userID, setID, cfg)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"timer": timer})
}
