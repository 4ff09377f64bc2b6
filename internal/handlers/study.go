package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studydeck-backend/internal/middleware"
	"studydeck-backend/internal/models"
	"studydeck-backend/internal/repository"
	"studydeck-backend/internal/services"
)

type StudyHandler struct {
	studyService *services.StudyService
	setRepo      *repository.SetRepo
}

func NewStudyHandler(studyService *services.StudyService, setRepo *repository.SetRepo) *StudyHandler {
	return &StudyHandler{studyService: studyService, setRepo: setRepo}
}

// resolveSet parses the {id} route param and enforces set ownership before any
// session operation runs.
func (h *StudyHandler) resolveSet(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
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

func (h *StudyHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.studyService.Start(r.Context(), userID, setID, req.Mode)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}

func (h *StudyHandler) Next(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	next, err := h.studyService.NextQuestion(r.Context(), userID, setID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func (h *StudyHandler) Answer(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	answer, err := h.studyService.SubmitAnswer(r.Context(), userID, setID, req.QuestionID, req.Rating)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"answer": answer})
}

func (h *StudyHandler) Select(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	var req models.SelectQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	next, err := h.studyService.SelectQuestion(r.Context(), userID, setID, req.QuestionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func (h *StudyHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	progress, err := h.studyService.Progress(r.Context(), userID, setID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"progress": progress})
}

func (h *StudyHandler) Probabilities(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	var hypothetical *models.SubmitAnswerRequest
	if q := r.URL.Query().Get("question_id"); q != "" {
		questionID, err := uuid.Parse(q)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid question_id parameter", r))
			return
		}
		rating, err := strconv.Atoi(r.URL.Query().Get("rating"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid rating parameter", r))
			return
		}
		hypothetical = &models.SubmitAnswerRequest{QuestionID: questionID, Rating: rating}
	}

	report, err := h.studyService.Probabilities(r.Context(), userID, setID, hypothetical)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"probabilities": report})
}

func (h *StudyHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	if err := h.studyService.Complete(r.Context(), userID, setID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session completed"})
}

func (h *StudyHandler) Restart(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.studyService.Restart(r.Context(), userID, setID, req.Mode)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}

func (h *StudyHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := h.resolveSet(w, r)
	if !ok {
		return
	}

	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.studyService.Reset(r.Context(), userID, setID, req.Mode)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}
