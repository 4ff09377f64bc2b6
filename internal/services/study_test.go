package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"studydeck-backend/internal/models"
)

func newStudyFixture(t *testing.T, questionCount int) (*StudyService, *fakeStore, *fakeClock, uuid.UUID, uuid.UUID) {
	t.Helper()
	store := newFakeStore()
	clock := newFakeClock()
	userID := uuid.New()
	setID := uuid.New()

	qs := make([]models.Question, questionCount)
	for i := range qs {
		qs[i] = models.Question{ID: uuid.New(), SetID: setID, Position: i + 1}
	}
	store.questions[setID] = qs

	svc := NewStudyService(store, store, store, &seqRNG{values: []float64{0.0}}, clock.Now, nil)
	return svc, store, clock, userID, setID
}

func TestStart_Idempotent(t *testing.T) {
	svc, _, _, userID, setID := newStudyFixture(t, 3)
	ctx := context.Background()

	first, err := svc.Start(ctx, userID, setID, models.ModeFrontToEnd)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	second, err := svc.Start(ctx, userID, setID, models.ModeShuffle)
	if err != nil {
		t.Fatalf("Second start failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Expected idempotent start to return the same session, got %s and %s", first.ID, second.ID)
	}
	if second.Mode != models.ModeFrontToEnd {
		t.Errorf("Resume must not change the original mode, got %q", second.Mode)
	}
}

func TestStart_InvalidMode(t *testing.T) {
	svc, _, _, userID, setID := newStudyFixture(t, 1)

	_, err := svc.Start(context.Background(), userID, setID, "random")

	var invalidMode *InvalidModeError
	if !errors.As(err, &invalidMode) {
		t.Errorf("Expected InvalidModeError, got %v", err)
	}
}

func TestNextQuestion_RequiresActiveSession(t *testing.T) {
	svc, _, _, userID, setID := newStudyFixture(t, 1)

	_, err := svc.NextQuestion(context.Background(), userID, setID)

	var noSession *NoActiveSessionError
	if !errors.As(err, &noSession) {
		t.Errorf("Expected NoActiveSessionError, got %v", err)
	}
}

func TestNextQuestion_EmptySetCompletesImmediately(t *testing.T) {
	svc, store, _, userID, setID := newStudyFixture(t, 0)
	ctx := context.Background()

	if _, err := svc.Start(ctx, userID, setID, models.ModeFrontToEnd); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	next, err := svc.NextQuestion(ctx, userID, setID)
	if err != nil {
		t.Fatalf("NextQuestion failed: %v", err)
	}

	if !next.SessionComplete || next.Question != nil {
		t.Errorf("Empty set must be trivially complete with no question, got %+v", next)
	}
	if open, _ := store.FindOpen(ctx, userID, setID); open != nil {
		t.Error("Completion must close the open session")
	}
}

func TestStudyFlow_DrawAnswerDraw(t *testing.T) {
	svc, _, clock, userID, setID := newStudyFixture(t, 3)
	ctx := context.Background()

	if _, err := svc.Start(ctx, userID, setID, models.ModeFrontToEnd); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	first, err := svc.NextQuestion(ctx, userID, setID)
	if err != nil {
		t.Fatalf("First draw failed: %v", err)
	}
	if first.Question == nil || first.QuestionNumber != 1 {
		t.Fatalf("Expected question 1 on first draw, got %+v", first)
	}
	if first.PreviousScore != nil {
		t.Error("Unrated question must report nil previous score")
	}

	if _, err := svc.SubmitAnswer(ctx, userID, setID, first.Question.ID, 1); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	clock.Advance(time.Second)

	second, err := svc.NextQuestion(ctx, userID, setID)
	if err != nil {
		t.Fatalf("Second draw failed: %v", err)
	}
	if second.Question == nil || second.QuestionNumber != 2 {
		t.Errorf("Just-answered question must not repeat; expected question 2, got %+v", second)
	}
	if second.Progress.AnsweredQuestions != 1 || second.Progress.CurrentPoints != 1 {
		t.Errorf("Unexpected progress: %+v", second.Progress)
	}
}

func TestSubmitAnswer_Validation(t *testing.T) {
	svc, _, _, userID, setID := newStudyFixture(t, 1)
	ctx := context.Background()
	if _, err := svc.Start(ctx, userID, setID, models.ModeShuffle); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	_, err := svc.SubmitAnswer(ctx, userID, setID, uuid.New(), 6)
	var invalidRating *InvalidRatingError
	if !errors.As(err, &invalidRating) {
		t.Errorf("Expected InvalidRatingError for rating 6, got %v", err)
	}

	_, err = svc.SubmitAnswer(ctx, userID, setID, uuid.New(), 3)
	var notFound *QuestionNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected QuestionNotFoundError for foreign question, got %v", err)
	}
}

func TestNextQuestion_AllMasteredCloses(t *testing.T) {
	svc, store, clock, userID, setID := newStudyFixture(t, 2)
	ctx := context.Background()

	if _, err := svc.Start(ctx, userID, setID, models.ModeShuffle); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	qs := store.questions[setID]
	for _, q := range qs {
		if _, err := svc.SubmitAnswer(ctx, userID, setID, q.ID, 5); err != nil {
			t.Fatalf("SubmitAnswer failed: %v", err)
		}
		clock.Advance(time.Second)
	}

	next, err := svc.NextQuestion(ctx, userID, setID)
	if err != nil {
		t.Fatalf("NextQuestion failed: %v", err)
	}
	if !next.SessionComplete || next.Question != nil {
		t.Errorf("Expected completion, got %+v", next)
	}
	if next.Progress.MasteredQuestions != 2 {
		t.Errorf("Expected 2 mastered, got %d", next.Progress.MasteredQuestions)
	}
}

func TestSelectQuestion(t *testing.T) {
	svc, store, clock, userID, setID := newStudyFixture(t, 3)
	ctx := context.Background()
	qs := store.questions[setID]

	if _, err := svc.Start(ctx, userID, setID, models.ModeFrontToEnd); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Mastered questions remain manually selectable.
	if _, err := svc.SubmitAnswer(ctx, userID, setID, qs[0].ID, 5); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	clock.Advance(time.Second)

	picked, err := svc.SelectQuestion(ctx, userID, setID, qs[0].ID)
	if err != nil {
		t.Fatalf("Selecting a mastered question must succeed: %v", err)
	}
	if picked.PreviousScore == nil || *picked.PreviousScore != 5 {
		t.Errorf("Expected previous score 5, got %v", picked.PreviousScore)
	}

	// qs[2] is unrated but behind firstUnseen qs[1]: weight 0, not mastered.
	_, err = svc.SelectQuestion(ctx, userID, setID, qs[2].ID)
	var notSelectable *NotSelectableError
	if !errors.As(err, &notSelectable) {
		t.Errorf("Expected NotSelectableError, got %v", err)
	}

	_, err = svc.SelectQuestion(ctx, userID, setID, uuid.New())
	var notFound *QuestionNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected QuestionNotFoundError, got %v", err)
	}
}

func TestProbabilities_Hypothetical(t *testing.T) {
	svc, store, _, userID, setID := newStudyFixture(t, 2)
	ctx := context.Background()
	qs := store.questions[setID]

	if _, err := svc.Start(ctx, userID, setID, models.ModeShuffle); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	rows, err := svc.Probabilities(ctx, userID, setID, &models.SubmitAnswerRequest{QuestionID: qs[0].ID, Rating: 5})
	if err != nil {
		t.Fatalf("Probabilities failed: %v", err)
	}
	if rows[0].Weight != 0 {
		t.Errorf("Hypothetically mastered question should drop to weight 0, got %v", rows[0].Weight)
	}

	// The stored state must be untouched.
	answers, _ := store.ListBySession(ctx, mustOpenSession(t, store, userID, setID).ID)
	if len(answers) != 0 {
		t.Errorf("Hypothetical preview must not persist answers, found %d", len(answers))
	}
}

func TestRestart_ClosesAndRecreates(t *testing.T) {
	svc, store, _, userID, setID := newStudyFixture(t, 2)
	ctx := context.Background()

	first, err := svc.Start(ctx, userID, setID, models.ModeFrontToEnd)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	fresh, err := svc.Restart(ctx, userID, setID, models.ModeShuffle)
	if err != nil {
		t.Fatalf("Restart failed: %v", err)
	}

	if fresh.ID == first.ID {
		t.Error("Restart must create a new session")
	}
	open, _ := store.FindOpen(ctx, userID, setID)
	if open == nil || open.ID != fresh.ID {
		t.Errorf("Expected the fresh session to be the only open one, got %+v", open)
	}
}

func TestReset_WipesAnswersAndTimers(t *testing.T) {
	svc, store, clock, userID, setID := newStudyFixture(t, 2)
	ctx := context.Background()
	qs := store.questions[setID]

	session, err := svc.Start(ctx, userID, setID, models.ModeFrontToEnd)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := svc.SubmitAnswer(ctx, userID, setID, qs[i%2].ID, 3); err != nil {
			t.Fatalf("SubmitAnswer failed: %v", err)
		}
		clock.Advance(time.Second)
	}

	timerSvc := NewTimerService(store, fakeTimerStore{store}, nil, nil, clock.Now)
	if _, err := timerSvc.Start(ctx, userID, setID, models.TimerConfig{}); err != nil {
		t.Fatalf("Timer start failed: %v", err)
	}

	fresh, err := svc.Reset(ctx, userID, setID, models.ModeShuffle)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if fresh.ID == session.ID {
		t.Error("Reset must create a brand-new session")
	}
	store.mu.Lock()
	sessionCount := len(store.sessions)
	answerCount := len(store.answers)
	timerCount := len(store.timers)
	eventCount := len(store.events)
	store.mu.Unlock()

	if sessionCount != 1 {
		t.Errorf("Expected exactly one session after reset, got %d", sessionCount)
	}
	if answerCount != 0 {
		t.Errorf("Expected zero answers after reset, got %d", answerCount)
	}
	if timerCount != 0 || eventCount != 0 {
		t.Errorf("Expected no timer rows after reset, got %d timers and %d events", timerCount, eventCount)
	}
}

func mustOpenSession(t *testing.T, store *fakeStore, userID, setID uuid.UUID) *models.StudySession {
	t.Helper()
	session, err := store.FindOpen(context.Background(), userID, setID)
	if err != nil || session == nil {
		t.Fatalf("Expected an open session: %v", err)
	}
	return session
}
