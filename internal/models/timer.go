package models

import (
	"time"

	"github.com/google/uuid"
)

// Timer phases.
const (
	PhaseWork      = "work"
	PhaseRest      = "rest"
	PhasePaused    = "paused"
	PhaseCompleted = "completed"
)

// Timer event types.
const (
	TimerEventStart         = "start"
	TimerEventPause         = "pause"
	TimerEventResume        = "resume"
	TimerEventPhaseChange   = "phase_change"
	TimerEventCycleComplete = "cycle_complete"
	TimerEventStop          = "stop"
)

const (
	DefaultWorkDuration = 25 * 60
	DefaultRestDuration = 5 * 60
)

// TimerSession tracks one continuous timing run tied to a study session.
// All durations and banked times are integer seconds. While paused,
// PhaseStartedAt is nil, PreviousPhase holds the phase to resume into and
// ElapsedInPhase holds the seconds already spent in that phase.
type TimerSession struct {
	ID               uuid.UUID  `json:"id"`
	SessionID        uuid.UUID  `json:"session_id"`
	CurrentPhase     string     `json:"current_phase"`
	PhaseStartedAt   *time.Time `json:"phase_started_at"`
	PreviousPhase    *string    `json:"previous_phase,omitempty"`
	ElapsedInPhase   int        `json:"elapsed_in_phase"`
	TotalWorkSeconds int        `json:"total_work_seconds"`
	TotalRestSeconds int        `json:"total_rest_seconds"`
	CyclesCompleted  int        `json:"cycles_completed"`
	WorkDuration     int        `json:"work_duration"`
	RestDuration     int        `json:"rest_duration"`
	IsInfinite       bool       `json:"is_infinite"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// TimerEvent is a write-only audit log entry. The engine never reads it back;
// only the stats layer does.
type TimerEvent struct {
	ID              uuid.UUID `json:"id"`
	TimerID         uuid.UUID `json:"timer_id"`
	EventType       string    `json:"event_type"`
	FromPhase       *string   `json:"from_phase"`
	ToPhase         *string   `json:"to_phase"`
	DurationSeconds int       `json:"duration_seconds"`
	Timestamp       time.Time `json:"timestamp"`
}

// TimerConfig is a partial configuration update. Nil fields are left as-is.
type TimerConfig struct {
	WorkDuration *int  `json:"work_duration"`
	RestDuration *int  `json:"rest_duration"`
	IsInfinite   *bool `json:"is_infinite"`
}

// TimerStatus is the read-only poll response. ShouldAdvance tells the client
// the current phase has expired and an explicit advance call is due.
type TimerStatus struct {
	TimerID          uuid.UUID `json:"timer_id"`
	CurrentPhase     string    `json:"current_phase"`
	ElapsedInPhase   int       `json:"elapsed_in_phase"`
	RemainingInPhase *int      `json:"remaining_in_phase,omitempty"`
	TotalWorkSeconds int       `json:"total_work_seconds"`
	TotalRestSeconds int       `json:"total_rest_seconds"`
	CyclesCompleted  int       `json:"cycles_completed"`
	WorkDuration     int       `json:"work_duration"`
	RestDuration     int       `json:"rest_duration"`
	IsInfinite       bool      `json:"is_infinite"`
	ShouldAdvance    bool      `json:"should_advance"`
}

type SetStats struct {
	SetID            uuid.UUID `json:"set_id"`
	SessionCount     int       `json:"session_count"`
	AnswerCount      int       `json:"answer_count"`
	AverageRating    *float64  `json:"average_rating"`
	TotalWorkSeconds int       `json:"total_work_seconds"`
	TotalRestSeconds int       `json:"total_rest_seconds"`
	CyclesCompleted  int       `json:"cycles_completed"`
	TimerEventCount  int       `json:"timer_event_count"`
}
