package engine

import (
	"math"
	"testing"

	"studydeck-backend/internal/models"
)

// fixedRNG returns a predetermined sequence of draws.
type fixedRNG struct {
	values []float64
	i      int
}

func (r *fixedRNG) Float64() float64 {
	v := r.values[r.i%len(r.values)]
	r.i++
	return v
}

func TestPick_NoEligibleQuestions(t *testing.T) {
	qs := makeQuestions(2)
	answers := []models.SessionAnswer{
		answerAt(qs[0].ID, 5, 1),
		answerAt(qs[1].ID, 5, 2),
	}

	got := Pick(qs, NewHistory(answers), models.ModeShuffle, &fixedRNG{values: []float64{0.5}})

	if got != nil {
		t.Errorf("Expected no next question, got %v", got.ID)
	}
}

func TestPick_FrontToEndScenario(t *testing.T) {
	// Three questions A, B, C in creation order, mode front-to-end.
	qs := makeQuestions(3)
	a, b, c := qs[0], qs[1], qs[2]
	rng := &fixedRNG{values: []float64{0.0}}

	// Initial draw: A is the firstUnseen and the only candidate.
	first := Pick(qs, NewHistory(nil), models.ModeFrontToEnd, rng)
	if first == nil || first.ID != a.ID {
		t.Fatalf("Expected initial draw to return A")
	}

	// After rating A=1: candidates are B (firstUnseen, 80) and A (200 x 0.0
	// just answered). B must be drawn deterministically.
	answers := []models.SessionAnswer{answerAt(a.ID, 1, 1)}
	second := Pick(qs, NewHistory(answers), models.ModeFrontToEnd, &fixedRNG{values: []float64{0.9999}})
	if second == nil || second.ID != b.ID {
		t.Fatalf("Expected B after rating A, got %v", second)
	}

	// After rating B=3: candidates C (80), A (200 x 0.5 = 100), B (60 x 0 = 0).
	answers = append(answers, answerAt(b.ID, 3, 2))
	h := NewHistory(answers)

	// Weight layout walks candidates in creation order: A then B then C.
	// total = 180; draw < 100 selects A, draw >= 100 selects C.
	gotA := Pick(qs, h, models.ModeFrontToEnd, &fixedRNG{values: []float64{0.0}})
	if gotA == nil || gotA.ID != a.ID {
		t.Errorf("Expected low draw to select A")
	}
	gotC := Pick(qs, h, models.ModeFrontToEnd, &fixedRNG{values: []float64{0.99}})
	if gotC == nil || gotC.ID != c.ID {
		t.Errorf("Expected high draw to select C")
	}
}

func TestPick_JustAnsweredCannotRepeat(t *testing.T) {
	qs := makeQuestions(2)
	answers := []models.SessionAnswer{
		answerAt(qs[0].ID, 1, 1),
		answerAt(qs[1].ID, 1, 2),
	}
	h := NewHistory(answers)

	// qs[1] was the immediately preceding draw; any draw value must avoid it.
	for _, v := range []float64{0.0, 0.25, 0.5, 0.75, 0.9999} {
		got := Pick(qs, h, models.ModeShuffle, &fixedRNG{values: []float64{v}})
		if got == nil || got.ID != qs[0].ID {
			t.Fatalf("Draw %v selected the just-answered question", v)
		}
	}
}

func TestPick_DegenerateFallback(t *testing.T) {
	// Only one eligible question and it was just answered: total weight is 0,
	// the deterministic fallback must still return it.
	qs := makeQuestions(2)
	answers := []models.SessionAnswer{
		answerAt(qs[1].ID, 5, 1),
		answerAt(qs[0].ID, 2, 2),
	}

	got := Pick(qs, NewHistory(answers), models.ModeShuffle, &fixedRNG{values: []float64{0.7}})

	if got == nil || got.ID != qs[0].ID {
		t.Errorf("Expected fallback to first candidate, got %v", got)
	}
}

func TestPick_ShuffleIncludesAllUnrated(t *testing.T) {
	// In shuffle mode every unrated question is a candidate, not just the
	// earliest-created one.
	qs := makeQuestions(3)
	h := NewHistory(nil)

	// Equal weights of 80 each; a draw in the last third lands on C.
	got := Pick(qs, h, models.ModeShuffle, &fixedRNG{values: []float64{0.99}})
	if got == nil || got.ID != qs[2].ID {
		t.Errorf("Expected shuffle mode to reach the last unrated question")
	}
}

func TestBaseWeights(t *testing.T) {
	qs := makeQuestions(5)
	answers := []models.SessionAnswer{
		answerAt(qs[0].ID, 1, 1),
		answerAt(qs[1].ID, 2, 2),
		answerAt(qs[2].ID, 3, 3),
		answerAt(qs[3].ID, 4, 4),
	}
	// Pad the answer order so recency multipliers are all 1.0.
	extra := makeQuestions(6)
	for i, q := range extra {
		answers = append(answers, answerAt(q.ID, 5, 10+i))
	}
	h := NewHistory(answers)

	tests := []struct {
		name     string
		idx      int
		expected float64
	}{
		{"rating 1", 0, 200},
		{"rating 2", 1, 120},
		{"rating 3", 2, 60},
		{"rating 4", 3, 30},
		{"unrated", 4, 80},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := weightFor(qs[tc.idx].ID, h); got != tc.expected {
				t.Errorf("Expected weight %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestRecencyMultiplier(t *testing.T) {
	tests := []struct {
		stepsBack int
		expected  float64
	}{
		{0, 1.0},
		{1, 0.0},
		{2, 0.5},
		{3, 0.7},
		{4, 0.85},
		{5, 0.95},
		{6, 1.0},
		{12, 1.0},
	}

	for _, tc := range tests {
		if got := recencyMultiplier(tc.stepsBack); got != tc.expected {
			t.Errorf("stepsBack %d: expected %v, got %v", tc.stepsBack, tc.expected, got)
		}
	}
}

func TestReport_ProbabilitiesSumTo100(t *testing.T) {
	qs := makeQuestions(4)
	answers := []models.SessionAnswer{
		answerAt(qs[0].ID, 1, 1),
		answerAt(qs[1].ID, 5, 2),
		answerAt(qs[2].ID, 3, 3),
	}

	rows := Report(qs, NewHistory(answers), models.ModeFrontToEnd)

	var sum float64
	for _, row := range rows {
		sum += row.SelectionProbability
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("Expected probabilities to sum to 100, got %v", sum)
	}
}

func TestReport_MasteredIsSelectableWithZeroWeight(t *testing.T) {
	qs := makeQuestions(2)
	answers := []models.SessionAnswer{
		answerAt(qs[0].ID, 5, 1),
		answerAt(qs[1].ID, 2, 2),
	}

	rows := Report(qs, NewHistory(answers), models.ModeShuffle)

	mastered := rows[0]
	if mastered.Weight != 0 {
		t.Errorf("Mastered question must have weight 0, got %v", mastered.Weight)
	}
	if !mastered.IsSelectable {
		t.Error("Mastered question must remain selectable for manual jumps")
	}
	if mastered.SelectionProbability != 0 {
		t.Errorf("Mastered question probability must be 0, got %v", mastered.SelectionProbability)
	}
}

func TestReport_ZeroTotalWeight(t *testing.T) {
	// Single question just answered below 5: weight 0 everywhere.
	qs := makeQuestions(1)
	answers := []models.SessionAnswer{answerAt(qs[0].ID, 3, 1)}

	rows := Report(qs, NewHistory(answers), models.ModeShuffle)

	if rows[0].SelectionProbability != 0 {
		t.Errorf("Expected probability 0 when totalWeight is 0, got %v", rows[0].SelectionProbability)
	}
	if rows[0].IsSelectable {
		t.Error("Zero-weight non-mastered question is not selectable")
	}
}

func TestReport_FrontToEndHidesLaterUnseen(t *testing.T) {
	// With an unseen question ahead of them, later unrated questions are not
	// in the candidate pool and must report weight 0.
	qs := makeQuestions(3)
	answers := []models.SessionAnswer{answerAt(qs[0].ID, 2, 1)}

	rows := Report(qs, NewHistory(answers), models.ModeFrontToEnd)

	if rows[1].Weight == 0 {
		t.Error("firstUnseen must carry weight")
	}
	if rows[2].Weight != 0 {
		t.Errorf("Unrated question behind firstUnseen must have weight 0, got %v", rows[2].Weight)
	}
}

func TestReport_HypotheticalOverlay(t *testing.T) {
	qs := makeQuestions(2)
	answers := []models.SessionAnswer{
		answerAt(qs[0].ID, 1, 1),
		answerAt(qs[1].ID, 2, 2),
	}
	h := NewHistory(answers)

	// Preview rating qs[1] a 5: it becomes mastered, qs[0] moves two steps
	// back and gets its full 200 x 0.5 weight.
	rows := Report(qs, h.WithRating(qs[1].ID, 5), models.ModeShuffle)

	if rows[1].Weight != 0 || !rows[1].IsSelectable {
		t.Errorf("Hypothetically mastered question: weight %v selectable %v", rows[1].Weight, rows[1].IsSelectable)
	}
	if rows[0].Weight != 100 {
		t.Errorf("Expected 200 x 0.5 = 100 for the other question, got %v", rows[0].Weight)
	}
}
