package models

import (
	"time"

	"github.com/google/uuid"
)

type QuestionSet struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Question is immutable from the study engine's perspective. Position is the
// creation order inside the set and drives front-to-end candidate selection.
type Question struct {
	ID        uuid.UUID `json:"id"`
	SetID     uuid.UUID `json:"set_id"`
	Position  int       `json:"position"`
	Prompt    string    `json:"prompt"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateSetRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type CreateQuestionRequest struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}
