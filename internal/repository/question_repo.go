package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studydeck-backend/internal/models"
)

type QuestionRepo struct {
	pool *pgxpool.Pool
}

func NewQuestionRepo(pool *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{pool: pool}
}

// Create appends a question at the end of the set's creation order.
func (r *QuestionRepo) Create(ctx context.Context, q *models.Question) error {
	q.ID = uuid.New()
	query := `
		INSERT INTO questions (id, set_id, position, prompt, answer)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM questions WHERE set_id = $2), $3, $4)
		RETURNING position, created_at`

	return r.pool.QueryRow(ctx, query, q.ID, q.SetID, q.Prompt, q.Answer).Scan(&q.Position, &q.CreatedAt)
}

// ListBySet returns the set's questions in stable creation order, the
// ordering the selection engine depends on.
func (r *QuestionRepo) ListBySet(ctx context.Context, setID uuid.UUID) ([]models.Question, error) {
	query := `SELECT id, set_id, position, prompt, answer, created_at
		FROM questions WHERE set_id = $1 ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		q := models.Question{}
		if err := rows.Scan(&q.ID, &q.SetID, &q.Position, &q.Prompt, &q.Answer, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (r *QuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	q := &models.Question{}
	query := `SELECT id, set_id, position, prompt, answer, created_at
		FROM questions WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(&q.ID, &q.SetID, &q.Position, &q.Prompt, &q.Answer, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QuestionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM questions WHERE id = $1", id)
	return err
}
