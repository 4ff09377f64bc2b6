package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studydeck-backend/internal/middleware"
	"studydeck-backend/internal/models"
	"studydeck-backend/internal/repository"
)

type SetHandler struct {
	setRepo      *repository.SetRepo
	questionRepo *repository.QuestionRepo
}

func NewSetHandler(setRepo *repository.SetRepo, questionRepo *repository.QuestionRepo) *SetHandler {
	return &SetHandler{setRepo: setRepo, questionRepo: questionRepo}
}

func (h *SetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CreateSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Title is required", r))
		return
	}

	set := &models.QuestionSet{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := h.setRepo.Create(r.Context(), set); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create question set", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"set": set})
}

func (h *SetHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sets, err := h.setRepo.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch question sets", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sets": sets})
}

func (h *SetHandler) Get(w http.ResponseWriter, r *http.Request) {
	set, ok := h.ownedSet(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"set": set})
}

func (h *SetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	set, ok := h.ownedSet(w, r)
	if !ok {
		return
	}

	if err := h.setRepo.Delete(r.Context(), set.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete question set", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Question set deleted"})
}

func (h *SetHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	set, ok := h.ownedSet(w, r)
	if !ok {
		return
	}

	var req models.CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Prompt is required", r))
		return
	}

	question := &models.Question{
		SetID:  set.ID,
		Prompt: req.Prompt,
		Answer: req.Answer,
	}
	if err := h.questionRepo.Create(r.Context(), question); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create question", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"question": question})
}

func (h *SetHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	set, ok := h.ownedSet(w, r)
	if !ok {
		return
	}

	questions, err := h.questionRepo.ListBySet(r.Context(), set.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch questions", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

func (h *SetHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	questionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid question ID", r))
		return
	}

	question, err := h.questionRepo.GetByID(r.Context(), questionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("QUESTION_NOT_FOUND", "Question not found", r))
		return
	}
	set, err := h.setRepo.GetByID(r.Context(), question.SetID)
	if err != nil || set.UserID != userID {
		writeJSON(w, http.StatusNotFound, errorResp("QUESTION_NOT_FOUND", "Question not found", r))
		return
	}

	if err := h.questionRepo.Delete(r.Context(), questionID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete question", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Question deleted"})
}

// ownedSet resolves the {id} route param and enforces ownership.
func (h *SetHandler) ownedSet(w http.ResponseWriter, r *http.Request) (*models.QuestionSet, bool) {
	userID := middleware.GetUserID(r.Context())

	setID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid set ID", r))
		return nil, false
	}

	set, err := h.setRepo.GetByID(r.Context(), setID)
	if err != nil || set.UserID != userID {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Question set not found", r))
		return nil, false
	}
	return set, true
}
