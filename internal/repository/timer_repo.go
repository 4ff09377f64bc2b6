package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studydeck-backend/internal/models"
)

type TimerRepo struct {
	pool *pgxpool.Pool
}

func NewTimerRepo(pool *pgxpool.Pool) *TimerRepo {
	return &TimerRepo{pool: pool}
}

const timerColumns = `id, session_id, current_phase, phase_started_at, previous_phase,
	elapsed_in_phase, total_work_seconds, total_rest_seconds, cycles_completed,
	work_duration, rest_duration, is_infinite, completed_at, created_at`

func scanTimer(row pgx.Row) (*models.TimerSession, error) {
	t := &models.TimerSession{}
	err := row.Scan(
		&t.ID, &t.SessionID, &t.CurrentPhase, &t.PhaseStartedAt, &t.PreviousPhase,
		&t.ElapsedInPhase, &t.TotalWorkSeconds, &t.TotalRestSeconds, &t.CyclesCompleted,
		&t.WorkDuration, &t.RestDuration, &t.IsInfinite, &t.CompletedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FindOpenBySession returns the open timer for a study session, or (nil, nil)
// when none exists.
func (r *TimerRepo) FindOpenBySession(ctx context.Context, sessionID uuid.UUID) (*models.TimerSession, error) {
	query := `SELECT ` + timerColumns + `
		FROM timer_sessions
		WHERE session_id = $1 AND completed_at IS NULL
		ORDER BY created_at DESC LIMIT 1`

	t, err := scanTimer(r.pool.QueryRow(ctx, query, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TimerRepo) Create(ctx context.Context, t *models.TimerSession) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO timer_sessions (id, session_id, current_phase, phase_started_at,
			work_duration, rest_duration, is_infinite, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.SessionID, t.CurrentPhase, t.PhaseStartedAt,
		t.WorkDuration, t.RestDuration, t.IsInfinite, t.CreatedAt,
	)
	return err
}

func (r *TimerRepo) Update(ctx context.Context, t *models.TimerSession) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE timer_sessions SET
			current_phase = $2, phase_started_at = $3, previous_phase = $4,
			elapsed_in_phase = $5, total_work_seconds = $6, total_rest_seconds = $7,
			cycles_completed = $8, work_duration = $9, rest_duration = $10,
			is_infinite = $11, completed_at = $12
		WHERE id = $1`,
		t.ID, t.CurrentPhase, t.PhaseStartedAt, t.PreviousPhase,
		t.ElapsedInPhase, t.TotalWorkSeconds, t.TotalRestSeconds,
		t.CyclesCompleted, t.WorkDuration, t.RestDuration,
		t.IsInfinite, t.CompletedAt,
	)
	return err
}

// AppendEvent writes to the audit log. The engine never reads events back.
func (r *TimerRepo) AppendEvent(ctx context.Context, e *models.TimerEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO timer_events (id, timer_id, event_type, from_phase, to_phase, duration_seconds, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.TimerID, e.EventType, e.FromPhase, e.ToPhase, e.DurationSeconds, e.Timestamp,
	)
	return err
}
