package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studydeck-backend/internal/models"
)

type SetRepo struct {
	pool *pgxpool.Pool
}

func NewSetRepo(pool *pgxpool.Pool) *SetRepo {
	return &SetRepo{pool: pool}
}

func (r *SetRepo) Create(ctx context.Context, s *models.QuestionSet) error {
	s.ID = uuid.New()
	query := `INSERT INTO question_sets (id, user_id, title, description)
		VALUES ($1, $2, $3, $4) RETURNING created_at`

	return r.pool.QueryRow(ctx, query, s.ID, s.UserID, s.Title, s.Description).Scan(&s.CreatedAt)
}

func (r *SetRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.QuestionSet, error) {
	s := &models.QuestionSet{}
	query := `SELECT s.id, s.user_id, s.title, s.description, s.created_at,
			(SELECT COUNT(*) FROM questions q WHERE q.set_id = s.id)
		FROM question_sets s WHERE s.id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.Title, &s.Description, &s.CreatedAt, &s.QuestionCount,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SetRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.QuestionSet, error) {
	query := `SELECT s.id, s.user_id, s.title, s.description, s.created_at,
			(SELECT COUNT(*) FROM questions q WHERE q.set_id = s.id)
		FROM question_sets s WHERE s.user_id = $1 ORDER BY s.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []*models.QuestionSet
	for rows.Next() {
		s := &models.QuestionSet{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.CreatedAt, &s.QuestionCount); err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, nil
}

func (r *SetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM question_sets WHERE id = $1", id)
	return err
}
