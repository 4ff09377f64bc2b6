package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"studydeck-backend/internal/models"
)

func makeQuestions(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{ID: uuid.New(), Position: i + 1}
	}
	return qs
}

func answerAt(questionID uuid.UUID, rating int, sec int) models.SessionAnswer {
	return models.SessionAnswer{
		ID:         uuid.New(),
		QuestionID: questionID,
		Rating:     rating,
		AnsweredAt: time.Unix(int64(sec), 0),
	}
}

func TestCalculateProgress_EmptySetIsComplete(t *testing.T) {
	p := CalculateProgress(nil, NewHistory(nil))

	if !p.Complete {
		t.Error("Expected empty set to be complete")
	}
	if p.TotalQuestions != 0 || p.MaxPoints != 0 {
		t.Errorf("Expected zero totals, got %+v", p)
	}
}

func TestCalculateProgress_Counts(t *testing.T) {
	qs := makeQuestions(3)
	answers := []models.SessionAnswer{
		answerAt(qs[0].ID, 2, 1),
		answerAt(qs[0].ID, 5, 2), // later write wins
		answerAt(qs[1].ID, 3, 3),
	}

	p := CalculateProgress(qs, NewHistory(answers))

	if p.TotalQuestions != 3 {
		t.Errorf("Expected 3 total questions, got %d", p.TotalQuestions)
	}
	if p.AnsweredQuestions != 2 {
		t.Errorf("Expected 2 answered, got %d", p.AnsweredQuestions)
	}
	if p.MasteredQuestions != 1 {
		t.Errorf("Expected 1 mastered, got %d", p.MasteredQuestions)
	}
	if p.CurrentPoints != 8 {
		t.Errorf("Expected 8 points, got %d", p.CurrentPoints)
	}
	if p.MaxPoints != 15 {
		t.Errorf("Expected max 15 points, got %d", p.MaxPoints)
	}
	if p.Complete {
		t.Error("Session should not be complete")
	}
}

func TestCalculateProgress_CompleteWhenAllMastered(t *testing.T) {
	qs := makeQuestions(2)
	answers := []models.SessionAnswer{
		answerAt(qs[0].ID, 5, 1),
		answerAt(qs[1].ID, 5, 2),
	}

	p := CalculateProgress(qs, NewHistory(answers))

	if !p.Complete {
		t.Error("Expected session to be complete when every question is rated 5")
	}
	if p.AnsweredQuestions > p.TotalQuestions {
		t.Error("Answered must never exceed total")
	}
	if p.CurrentPoints > p.MaxPoints {
		t.Error("Points must never exceed max")
	}
}

func TestCalculateProgress_DowngradedMasteryReopens(t *testing.T) {
	qs := makeQuestions(1)
	answers := []models.SessionAnswer{
		answerAt(qs[0].ID, 5, 1),
		answerAt(qs[0].ID, 2, 2),
	}

	p := CalculateProgress(qs, NewHistory(answers))

	if p.Complete {
		t.Error("Latest rating 2 should reopen the session")
	}
	if p.CurrentPoints != 2 {
		t.Errorf("Expected latest rating to count, got %d points", p.CurrentPoints)
	}
}

func TestNewHistory_TieBrokenByInsertionOrder(t *testing.T) {
	q := uuid.New()
	same := time.Unix(100, 0)
	answers := []models.SessionAnswer{
		{ID: uuid.New(), QuestionID: q, Rating: 1, AnsweredAt: same},
		{ID: uuid.New(), QuestionID: q, Rating: 4, AnsweredAt: same},
	}

	h := NewHistory(answers)

	if r, _ := h.LatestRating(q); r != 4 {
		t.Errorf("Expected later write to win on equal timestamps, got %d", r)
	}
}

func TestHistory_StepsBack(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	answers := []models.SessionAnswer{
		answerAt(a, 1, 1),
		answerAt(b, 2, 2),
		answerAt(a, 3, 3), // a re-answered, only latest position counts
		answerAt(c, 4, 4),
	}

	h := NewHistory(answers)

	tests := []struct {
		name     string
		id       uuid.UUID
		expected int
	}{
		{"most recent", c, 1},
		{"re-answered keeps latest position", a, 2},
		{"oldest", b, 3},
		{"never answered", uuid.New(), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := h.StepsBack(tc.id); got != tc.expected {
				t.Errorf("Expected stepsBack %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestHistory_WithRatingDoesNotMutate(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	h := NewHistory([]models.SessionAnswer{answerAt(a, 2, 1)})

	overlay := h.WithRating(b, 3)

	if _, ok := h.LatestRating(b); ok {
		t.Error("Original history must not see the hypothetical rating")
	}
	if r, ok := overlay.LatestRating(b); !ok || r != 3 {
		t.Errorf("Overlay should carry the hypothetical rating, got %d (%v)", r, ok)
	}
	if overlay.StepsBack(b) != 1 {
		t.Errorf("Hypothetical answer should be the most recent, stepsBack=%d", overlay.StepsBack(b))
	}
	if overlay.StepsBack(a) != 2 {
		t.Errorf("Existing answers shift back one step, stepsBack=%d", overlay.StepsBack(a))
	}
}
