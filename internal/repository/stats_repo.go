package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studydeck-backend/internal/models"
)

// StatsRepo aggregates answer and timer history for the statistics layer.
// This is the only reader of the timer_events audit log.
type StatsRepo struct {
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

func (r *StatsRepo) SetStats(ctx context.Context, userID, setID uuid.UUID) (*models.SetStats, error) {
	stats := &models.SetStats{SetID: setID}

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM study_sessions
		WHERE user_id = $1 AND set_id = $2`,
		userID, setID,
	).Scan(&stats.SessionCount)
	if err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(a.*), AVG(a.rating)
		FROM session_answers a
		JOIN study_sessions s ON s.id = a.session_id
		WHERE s.user_id = $1 AND s.set_id = $2`,
		userID, setID,
	).Scan(&stats.AnswerCount, &stats.AverageRating)
	if err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(t.total_work_seconds), 0),
			COALESCE(SUM(t.total_rest_seconds), 0),
			COALESCE(SUM(t.cycles_completed), 0)
		FROM timer_sessions t
		JOIN study_sessions s ON s.id = t.session_id
		WHERE s.user_id = $1 AND s.set_id = $2`,
		userID, setID,
	).Scan(&stats.TotalWorkSeconds, &stats.TotalRestSeconds, &stats.CyclesCompleted)
	if err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(e.*)
		FROM timer_events e
		JOIN timer_sessions t ON t.id = e.timer_id
		JOIN study_sessions s ON s.id = t.session_id
		WHERE s.user_id = $1 AND s.set_id = $2`,
		userID, setID,
	).Scan(&stats.TimerEventCount)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
