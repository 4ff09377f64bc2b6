package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studydeck-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

// FindOpen returns the open session for (user, set), or (nil, nil) when none
// exists. A partial unique index guarantees there is at most one.
func (r *SessionRepo) FindOpen(ctx context.Context, userID, setID uuid.UUID) (*models.StudySession, error) {
	s := &models.StudySession{}
	query := `SELECT id, user_id, set_id, mode, started_at, completed_at
		FROM study_sessions
		WHERE user_id = $1 AND set_id = $2 AND completed_at IS NULL
		ORDER BY started_at DESC LIMIT 1`

	err := r.pool.QueryRow(ctx, query, userID, setID).Scan(
		&s.ID, &s.UserID, &s.SetID, &s.Mode, &s.StartedAt, &s.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) Create(ctx context.Context, s *models.StudySession) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO study_sessions (id, user_id, set_id, mode, started_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.SetID, s.Mode, s.StartedAt,
	)
	return err
}

// MarkCompleted closes every open session for (user, set). More than one open
// session should never exist, but the sweep keeps cleanup defensive.
func (r *SessionRepo) MarkCompleted(ctx context.Context, userID, setID uuid.UUID, at time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE study_sessions SET completed_at = $3
		WHERE user_id = $1 AND set_id = $2 AND completed_at IS NULL`,
		userID, setID, at,
	)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Reset wipes every session for (user, set) and creates a fresh one in a
// single transaction. Answers, timer sessions and timer events cascade with
// their session rows, so a partial reset can never leave a dangling timer.
func (r *SessionRepo) Reset(ctx context.Context, userID, setID uuid.UUID, fresh *models.StudySession) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reset transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"DELETE FROM study_sessions WHERE user_id = $1 AND set_id = $2",
		userID, setID,
	); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO study_sessions (id, user_id, set_id, mode, started_at)
		VALUES ($1, $2, $3, $4, $5)`,
		fresh.ID, fresh.UserID, fresh.SetID, fresh.Mode, fresh.StartedAt,
	); err != nil {
		return fmt.Errorf("failed to create fresh session: %w", err)
	}

	return tx.Commit(ctx)
}
