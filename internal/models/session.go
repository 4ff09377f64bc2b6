package models

import (
	"time"

	"github.com/google/uuid"
)

// Selection modes for a study session.
const (
	ModeFrontToEnd = "front-to-end"
	ModeShuffle    = "shuffle"
)

func ValidMode(mode string) bool {
	return mode == ModeFrontToEnd || mode == ModeShuffle
}

// StudySession is one pass through a question set by a user. At most one
// session per (user, set) may have a nil CompletedAt at any time.
type StudySession struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	SetID       uuid.UUID  `json:"set_id"`
	Mode        string     `json:"mode"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// SessionAnswer is an append-only log entry. Multiple answers per question are
// allowed; only the latest by AnsweredAt counts for weighting and progress.
type SessionAnswer struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Rating     int       `json:"rating"`
	AnsweredAt time.Time `json:"answered_at"`
}

type Progress struct {
	TotalQuestions    int  `json:"total_questions"`
	AnsweredQuestions int  `json:"answered_questions"`
	MasteredQuestions int  `json:"mastered_questions"`
	CurrentPoints     int  `json:"current_points"`
	MaxPoints         int  `json:"max_points"`
	Complete          bool `json:"complete"`
}

// NextQuestion is the response for a draw or a manual selection. Question is
// nil when the session is complete.
type NextQuestion struct {
	Question        *Question `json:"question,omitempty"`
	QuestionNumber  int       `json:"question_number,omitempty"`
	PreviousScore   *int      `json:"previous_score"`
	SessionComplete bool      `json:"session_complete"`
	Progress        Progress  `json:"progress"`
}

// QuestionProbability is one row of the read-only probability report.
type QuestionProbability struct {
	QuestionID           uuid.UUID `json:"question_id"`
	QuestionNumber       int       `json:"question_number"`
	LatestRating         *int      `json:"latest_rating"`
	Weight               float64   `json:"weight"`
	SelectionProbability float64   `json:"selection_probability"`
	IsSelectable         bool      `json:"is_selectable"`
}

type StartSessionRequest struct {
	Mode string `json:"mode"`
}

type SubmitAnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id"`
	Rating     int       `json:"rating"`
}

type SelectQuestionRequest struct {
	QuestionID uuid.UUID `json:"question_id"`
}
