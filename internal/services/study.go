package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"studydeck-backend/internal/engine"
	"studydeck-backend/internal/models"
)

// Store interfaces consumed by the study and timer services. The pgx-backed
// repositories satisfy them; tests use in-memory fakes.

type QuestionStore interface {
	ListBySet(ctx context.Context, setID uuid.UUID) ([]models.Question, error)
}

type SessionStore interface {
	// FindOpen returns (nil, nil) when no open session exists.
	FindOpen(ctx context.Context, userID, setID uuid.UUID) (*models.StudySession, error)
	Create(ctx context.Context, s *models.StudySession) error
	// MarkCompleted closes every open session for (user, set) and returns how
	// many it closed.
	MarkCompleted(ctx context.Context, userID, setID uuid.UUID, at time.Time) (int, error)
	// Reset atomically deletes every session for (user, set) together with
	// their answers, timer sessions and timer events, then inserts fresh.
	Reset(ctx context.Context, userID, setID uuid.UUID, fresh *models.StudySession) error
}

type AnswerStore interface {
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.SessionAnswer, error)
	Append(ctx context.Context, a *models.SessionAnswer) error
}

// StudyService orchestrates the session lifecycle and ties the progress
// calculator and weighted selector into request/response cycles. It is
// stateless between calls; clock and RNG are injected.
type StudyService struct {
	questions QuestionStore
	sessions  SessionStore
	answers   AnswerStore
	rng       engine.RNG
	now       func() time.Time
	events    Publisher
}

func NewStudyService(questions QuestionStore, sessions SessionStore, answers AnswerStore, rng engine.RNG, now func() time.Time, events Publisher) *StudyService {
	if now == nil {
		now = time.Now
	}
	return &StudyService{
		questions: questions,
		sessions:  sessions,
		answers:   answers,
		rng:       rng,
		now:       now,
		events:    events,
	}
}

// Start returns the open session for (user, set) if one exists, otherwise
// creates one. Calling it twice with no intervening action returns the same
// session both times.
func (s *StudyService) Start(ctx context.Context, userID, setID uuid.UUID, mode string) (*models.StudySession, error) {
	if !models.ValidMode(mode) {
		return nil, &InvalidModeError{Message: fmt.Sprintf("mode must be %q or %q", models.ModeFrontToEnd, models.ModeShuffle)}
	}

	existing, err := s.sessions.FindOpen(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	session := &models.StudySession{
		ID:        uuid.New(),
		UserID:    userID,
		SetID:     setID,
		Mode:      mode,
		StartedAt: s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *StudyService) requireSession(ctx context.Context, userID, setID uuid.UUID) (*models.StudySession, error) {
	session, err := s.sessions.FindOpen(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, &NoActiveSessionError{Message: "no active study session for this question set"}
	}
	return session, nil
}

func (s *StudyService) load(ctx context.Context, session *models.StudySession) ([]models.Question, engine.History, error) {
	questions, err := s.questions.ListBySet(ctx, session.SetID)
	if err != nil {
		return nil, engine.History{}, err
	}
	answers, err := s.answers.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, engine.History{}, err
	}
	return questions, engine.NewHistory(answers), nil
}

// NextQuestion computes progress first; when the session is complete it is
// closed and no question is returned. Otherwise the weighted selector draws
// the next question.
func (s *StudyService) NextQuestion(ctx context.Context, userID, setID uuid.UUID) (*models.NextQuestion, error) {
	session, err := s.requireSession(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	questions, history, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}

	progress := engine.CalculateProgress(questions, history)
	if progress.Complete {
		return s.finishSession(ctx, userID, setID, progress)
	}

	picked := engine.Pick(questions, history, session.Mode, s.rng)
	if picked == nil {
		// The selector found nothing eligible; reconcile as completion.
		return s.finishSession(ctx, userID, setID, progress)
	}

	return buildNext(picked, questions, history, progress), nil
}

func (s *StudyService) finishSession(ctx context.Context, userID, setID uuid.UUID, progress models.Progress) (*models.NextQuestion, error) {
	closed, err := s.sessions.MarkCompleted(ctx, userID, setID, s.now())
	if err != nil {
		return nil, err
	}
	if closed > 0 {
		s.publish(ctx, userID, "session_completed", map[string]interface{}{"set_id": setID})
	}
	return &models.NextQuestion{SessionComplete: true, Progress: progress}, nil
}

// SubmitAnswer appends to the answer log. It does not advance the session;
// the caller re-queries the next question.
func (s *StudyService) SubmitAnswer(ctx context.Context, userID, setID, questionID uuid.UUID, rating int) (*models.SessionAnswer, error) {
	if rating < 1 || rating > engine.MasteredRating {
		return nil, &InvalidRatingError{Message: "rating must be between 1 and 5"}
	}

	session, err := s.requireSession(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListBySet(ctx, setID)
	if err != nil {
		return nil, err
	}
	if findQuestion(questions, questionID) == nil {
		return nil, &QuestionNotFoundError{Message: "question does not belong to this set"}
	}

	answer := &models.SessionAnswer{
		ID:         uuid.New(),
		SessionID:  session.ID,
		QuestionID: questionID,
		Rating:     rating,
		AnsweredAt: s.now(),
	}
	if err := s.answers.Append(ctx, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// SelectQuestion is the manual override letting the user jump to a specific
// question. Selectability is recomputed exactly as in the probability report.
func (s *StudyService) SelectQuestion(ctx context.Context, userID, setID, questionID uuid.UUID) (*models.NextQuestion, error) {
	session, err := s.requireSession(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	questions, history, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}

	target := findQuestion(questions, questionID)
	if target == nil {
		return nil, &QuestionNotFoundError{Message: "question does not belong to this set"}
	}

	for _, row := range engine.Report(questions, history, session.Mode) {
		if row.QuestionID != questionID {
			continue
		}
		if !row.IsSelectable {
			return nil, &NotSelectableError{Message: "question is not selectable right now"}
		}
		break
	}

	progress := engine.CalculateProgress(questions, history)
	return buildNext(target, questions, history, progress), nil
}

// Progress reports the aggregate counts for the active session.
func (s *StudyService) Progress(ctx context.Context, userID, setID uuid.UUID) (models.Progress, error) {
	session, err := s.requireSession(ctx, userID, setID)
	if err != nil {
		return models.Progress{}, err
	}
	questions, history, err := s.load(ctx, session)
	if err != nil {
		return models.Progress{}, err
	}
	return engine.CalculateProgress(questions, history), nil
}

// Probabilities exposes the selector's read-only report. When hypothetical is
// non-nil the report is recomputed as if that rating had been recorded,
// without touching stored state.
func (s *StudyService) Probabilities(ctx context.Context, userID, setID uuid.UUID, hypothetical *models.SubmitAnswerRequest) ([]models.QuestionProbability, error) {
	session, err := s.requireSession(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	questions, history, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}

	if hypothetical != nil {
		if hypothetical.Rating < 1 || hypothetical.Rating > engine.MasteredRating {
			return nil, &InvalidRatingError{Message: "rating must be between 1 and 5"}
		}
		if findQuestion(questions, hypothetical.QuestionID) == nil {
			return nil, &QuestionNotFoundError{Message: "question does not belong to this set"}
		}
		history = history.WithRating(hypothetical.QuestionID, hypothetical.Rating)
	}

	return engine.Report(questions, history, session.Mode), nil
}

// Complete marks every open session for (user, set) as completed.
func (s *StudyService) Complete(ctx context.Context, userID, setID uuid.UUID) error {
	closed, err := s.sessions.MarkCompleted(ctx, userID, setID, s.now())
	if err != nil {
		return err
	}
	if closed == 0 {
		return &NoActiveSessionError{Message: "no active study session for this question set"}
	}
	s.publish(ctx, userID, "session_completed", map[string]interface{}{"set_id": setID})
	return nil
}

// Restart closes every open session and immediately starts a fresh one.
func (s *StudyService) Restart(ctx context.Context, userID, setID uuid.UUID, mode string) (*models.StudySession, error) {
	if !models.ValidMode(mode) {
		return nil, &InvalidModeError{Message: fmt.Sprintf("mode must be %q or %q", models.ModeFrontToEnd, models.ModeShuffle)}
	}
	if _, err := s.sessions.MarkCompleted(ctx, userID, setID, s.now()); err != nil {
		return nil, err
	}
	session := &models.StudySession{
		ID:        uuid.New(),
		UserID:    userID,
		SetID:     setID,
		Mode:      mode,
		StartedAt: s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Reset hard-deletes every session for (user, set) with all answers and timer
// state, then creates a brand-new session. The store applies the wipe and the
// insert in one transaction.
func (s *StudyService) Reset(ctx context.Context, userID, setID uuid.UUID, mode string) (*models.StudySession, error) {
	if !models.ValidMode(mode) {
		return nil, &InvalidModeError{Message: fmt.Sprintf("mode must be %q or %q", models.ModeFrontToEnd, models.ModeShuffle)}
	}
	fresh := &models.StudySession{
		ID:        uuid.New(),
		UserID:    userID,
		SetID:     setID,
		Mode:      mode,
		StartedAt: s.now(),
	}
	if err := s.sessions.Reset(ctx, userID, setID, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (s *StudyService) publish(ctx context.Context, userID uuid.UUID, eventType string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, userID, eventType, payload)
}

func findQuestion(questions []models.Question, id uuid.UUID) *models.Question {
	for i := range questions {
		if questions[i].ID == id {
			return &questions[i]
		}
	}
	return nil
}

func buildNext(q *models.Question, questions []models.Question, h engine.History, progress models.Progress) *models.NextQuestion {
	next := &models.NextQuestion{
		Question: q,
		Progress: progress,
	}
	for i := range questions {
		if questions[i].ID == q.ID {
			next.QuestionNumber = i + 1
			break
		}
	}
	if rating, ok := h.LatestRating(q.ID); ok {
		r := rating
		next.PreviousScore = &r
	}
	return next
}
