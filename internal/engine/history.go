// Package engine implements the adaptive study core: progress derivation and
// weighted next-question selection. Everything here is pure; persistence,
// clocks and randomness are supplied by the caller.
package engine

import (
	"sort"

	"github.com/google/uuid"

	"studydeck-backend/internal/models"
)

// History is the single shared derivation of an answer log: the latest rating
// per question and the chronological order in which questions were last
// answered (oldest first, deduplicated). Progress, selection and the
// probability report all read from it so the three can never disagree.
type History struct {
	ratings map[uuid.UUID]int
	order   []uuid.UUID
}

// NewHistory folds the answer log by AnsweredAt, later write wins. Ties on
// AnsweredAt are broken by the position in the input stream (stable sort).
func NewHistory(answers []models.SessionAnswer) History {
	sorted := make([]models.SessionAnswer, len(answers))
	copy(sorted, answers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AnsweredAt.Before(sorted[j].AnsweredAt)
	})

	ratings := make(map[uuid.UUID]int, len(sorted))
	for _, a := range sorted {
		ratings[a.QuestionID] = a.Rating
	}

	// Keep only the most recent occurrence of each question, preserving
	// chronological order of those occurrences.
	order := make([]uuid.UUID, 0, len(ratings))
	seen := make(map[uuid.UUID]bool, len(ratings))
	for i := len(sorted) - 1; i >= 0; i-- {
		id := sorted[i].QuestionID
		if seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	return History{ratings: ratings, order: order}
}

// LatestRating returns the authoritative rating for a question, if any.
func (h History) LatestRating(questionID uuid.UUID) (int, bool) {
	r, ok := h.ratings[questionID]
	return r, ok
}

// StepsBack returns the 1-based position of a question counted from the end
// of the answer order, or 0 if the question was never answered.
func (h History) StepsBack(questionID uuid.UUID) int {
	for i := len(h.order) - 1; i >= 0; i-- {
		if h.order[i] == questionID {
			return len(h.order) - i
		}
	}
	return 0
}

// WithRating overlays one not-yet-persisted rating, as if that answer had
// just been recorded. The receiver is not mutated.
func (h History) WithRating(questionID uuid.UUID, rating int) History {
	ratings := make(map[uuid.UUID]int, len(h.ratings)+1)
	for k, v := range h.ratings {
		ratings[k] = v
	}
	ratings[questionID] = rating

	order := make([]uuid.UUID, 0, len(h.order)+1)
	for _, id := range h.order {
		if id != questionID {
			order = append(order, id)
		}
	}
	order = append(order, questionID)

	return History{ratings: ratings, order: order}
}
