package engine

import "studydeck-backend/internal/models"

// MasteredRating is the confidence rating at which a question counts as
// mastered and leaves the selection pool.
const MasteredRating = 5

// CalculateProgress reduces a question list and answer history into aggregate
// counts. A set with zero questions is trivially complete.
func CalculateProgress(questions []models.Question, h History) models.Progress {
	p := models.Progress{
		TotalQuestions: len(questions),
		MaxPoints:      len(questions) * MasteredRating,
	}

	for _, q := range questions {
		rating, ok := h.LatestRating(q.ID)
		if !ok {
			continue
		}
		p.AnsweredQuestions++
		p.CurrentPoints += rating
		if rating == MasteredRating {
			p.MasteredQuestions++
		}
	}

	p.Complete = p.MasteredQuestions == p.TotalQuestions
	return p
}
