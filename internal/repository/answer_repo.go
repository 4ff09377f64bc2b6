package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studydeck-backend/internal/models"
)

type AnswerRepo struct {
	pool *pgxpool.Pool
}

func NewAnswerRepo(pool *pgxpool.Pool) *AnswerRepo {
	return &AnswerRepo{pool: pool}
}

// ListBySession returns the append-only answer log, oldest first. Ties on
// answered_at keep insertion order so the latest write wins downstream.
func (r *AnswerRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.SessionAnswer, error) {
	query := `SELECT id, session_id, question_id, rating, answered_at
		FROM session_answers WHERE session_id = $1
		ORDER BY answered_at ASC, inserted_seq ASC`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []models.SessionAnswer
	for rows.Next() {
		a := models.SessionAnswer{}
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.Rating, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, nil
}

func (r *AnswerRepo) Append(ctx context.Context, a *models.SessionAnswer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO session_answers (id, session_id, question_id, rating, answered_at)
		VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.SessionID, a.QuestionID, a.Rating, a.AnsweredAt,
	)
	return err
}
