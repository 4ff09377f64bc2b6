package engine

import (
	"github.com/google/uuid"

	"studydeck-backend/internal/models"
)

// RNG is the source of randomness for the weighted draw. *rand.Rand satisfies
// it; tests supply a deterministic sequence.
type RNG interface {
	Float64() float64
}

// unratedWeight is the base weight for a question with no rating yet.
const unratedWeight = 80

// Base weight by latest rating. Rating 5 never reaches the weighting step.
var baseWeights = map[int]float64{
	1: 200,
	2: 120,
	3: 60,
	4: 30,
}

// recencyMultiplier damps questions answered on recent draws. A question
// answered on the immediately preceding draw cannot be selected this turn.
func recencyMultiplier(stepsBack int) float64 {
	switch stepsBack {
	case 0:
		return 1.0 // never answered
	case 1:
		return 0.0
	case 2:
		return 0.5
	case 3:
		return 0.7
	case 4:
		return 0.85
	case 5:
		return 0.95
	default:
		return 1.0
	}
}

func eligible(q models.Question, h History) bool {
	rating, ok := h.LatestRating(q.ID)
	return !ok || rating < MasteredRating
}

// candidates applies the mode-specific candidate rule over the eligible
// questions, preserving creation order.
//
// front-to-end: if an unseen question exists, the earliest-created one is the
// only unseen candidate; every already-rated eligible question stays in the
// pool so weak areas keep competing. Otherwise all eligible questions.
// shuffle: all eligible questions.
func candidates(questions []models.Question, h History, mode string) []models.Question {
	var elig []models.Question
	for _, q := range questions {
		if eligible(q, h) {
			elig = append(elig, q)
		}
	}

	if mode != models.ModeFrontToEnd {
		return elig
	}

	var firstUnseen *models.Question
	for i := range elig {
		if _, rated := h.LatestRating(elig[i].ID); !rated {
			firstUnseen = &elig[i]
			break
		}
	}
	if firstUnseen == nil {
		return elig
	}

	cands := make([]models.Question, 0, len(elig))
	for _, q := range elig {
		if _, rated := h.LatestRating(q.ID); rated || q.ID == firstUnseen.ID {
			cands = append(cands, q)
		}
	}
	return cands
}

func weightFor(questionID uuid.UUID, h History) float64 {
	base := float64(unratedWeight)
	if rating, ok := h.LatestRating(questionID); ok {
		base = baseWeights[rating]
	}
	return base * recencyMultiplier(h.StepsBack(questionID))
}

// Pick draws the next question, or nil when no eligible question remains
// (the caller reconciles that against progress completion). When every
// candidate has weight zero the first candidate in creation order is
// returned rather than failing.
func Pick(questions []models.Question, h History, mode string, rng RNG) *models.Question {
	cands := candidates(questions, h, mode)
	if len(cands) == 0 {
		return nil
	}

	weights := make([]float64, len(cands))
	var total float64
	for i, q := range cands {
		weights[i] = weightFor(q.ID, h)
		total += weights[i]
	}

	if total == 0 {
		q := cands[0]
		return &q
	}

	draw := rng.Float64() * total
	var acc float64
	for i, q := range cands {
		acc += weights[i]
		if draw < acc {
			picked := q
			return &picked
		}
	}
	// Float accumulation can land exactly on total; last candidate wins.
	last := cands[len(cands)-1]
	return &last
}

// Report computes weight, selection probability and selectability for every
// question in the set. Questions outside the current candidate pool carry
// weight zero so the reported distribution matches the actual draw. Mastered
// questions stay selectable for manual jumps even though the draw skips them.
func Report(questions []models.Question, h History, mode string) []models.QuestionProbability {
	inPool := make(map[uuid.UUID]bool)
	for _, q := range candidates(questions, h, mode) {
		inPool[q.ID] = true
	}

	rows := make([]models.QuestionProbability, len(questions))
	var total float64
	for i, q := range questions {
		var weight float64
		if inPool[q.ID] {
			weight = weightFor(q.ID, h)
		}
		total += weight

		row := models.QuestionProbability{
			QuestionID:     q.ID,
			QuestionNumber: i + 1,
			Weight:         weight,
		}
		if rating, ok := h.LatestRating(q.ID); ok {
			r := rating
			row.LatestRating = &r
			row.IsSelectable = weight > 0 || rating == MasteredRating
		} else {
			row.IsSelectable = weight > 0
		}
		rows[i] = row
	}

	if total > 0 {
		for i := range rows {
			rows[i].SelectionProbability = rows[i].Weight / total * 100
		}
	}
	return rows
}
