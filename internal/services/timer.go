package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"studydeck-backend/internal/models"
)

type TimerStore interface {
	// FindOpenBySession returns (nil, nil) when no open timer exists.
	FindOpenBySession(ctx context.Context, sessionID uuid.UUID) (*models.TimerSession, error)
	Create(ctx context.Context, t *models.TimerSession) error
	Update(ctx context.Context, t *models.TimerSession) error
	AppendEvent(ctx context.Context, e *models.TimerEvent) error
}

// advanceDebounceWindow rejects a duplicate automatic advance arriving within
// this interval of the first one.
const advanceDebounceWindow = 3 * time.Second

// TimerService drives the work/rest/paused/completed phase state machine.
// There is no in-process ticking; every transition is an explicit call that
// reads persisted state, applies integer-second arithmetic against the
// injected clock, and writes the new state back.
type TimerService struct {
	sessions    SessionStore
	timers      TimerStore
	debounce    Debouncer
	events      Publisher
	now         func() time.Time
	defaultWork int
	defaultRest int
}

func NewTimerService(sessions SessionStore, timers TimerStore, debounce Debouncer, events Publisher, now func() time.Time) *TimerService {
	if now == nil {
		now = time.Now
	}
	return &TimerService{
		sessions:    sessions,
		timers:      timers,
		debounce:    debounce,
		events:      events,
		now:         now,
		defaultWork: models.DefaultWorkDuration,
		defaultRest: models.DefaultRestDuration,
	}
}

// SetDefaultDurations overrides the durations applied when a start request
// carries no configuration.
func (s *TimerService) SetDefaultDurations(work, rest int) {
	if work > 0 {
		s.defaultWork = work
	}
	if rest > 0 {
		s.defaultRest = rest
	}
}

// elapsedSeconds floors a wall-clock delta to whole seconds, never negative.
func elapsedSeconds(now time.Time, start *time.Time) int {
	if start == nil {
		return 0
	}
	d := int(now.Sub(*start).Seconds())
	if d < 0 {
		return 0
	}
	return d
}

func (s *TimerService) requireStudySession(ctx context.Context, userID, setID uuid.UUID) (*models.StudySession, error) {
	session, err := s.sessions.FindOpen(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, &NoActiveSessionError{Message: "no active study session for this question set"}
	}
	return session, nil
}

func (s *TimerService) requireTimer(ctx context.Context, userID, setID uuid.UUID) (*models.TimerSession, error) {
	session, err := s.requireStudySession(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	timer, err := s.timers.FindOpenBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if timer == nil {
		return nil, &NoActiveTimerError{Message: "no active timer for this study session"}
	}
	return timer, nil
}

// Start creates a timer in the work phase, resumes a paused one, or applies a
// configuration update to an already-running one without restarting the
// clock.
func (s *TimerService) Start(ctx context.Context, userID, setID uuid.UUID, cfg models.TimerConfig) (*models.TimerSession, error) {
	session, err := s.requireStudySession(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	timer, err := s.timers.FindOpenBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if timer == nil {
		timer = &models.TimerSession{
			ID:             uuid.New(),
			SessionID:      session.ID,
			CurrentPhase:   models.PhaseWork,
			PhaseStartedAt: &now,
			WorkDuration:   s.defaultWork,
			RestDuration:   s.defaultRest,
			CreatedAt:      now,
		}
		if cfg.WorkDuration != nil && *cfg.WorkDuration > 0 {
			timer.WorkDuration = *cfg.WorkDuration
		}
		if cfg.RestDuration != nil && *cfg.RestDuration > 0 {
			timer.RestDuration = *cfg.RestDuration
		}
		if cfg.IsInfinite != nil {
			timer.IsInfinite = *cfg.IsInfinite
		}
		if err := s.timers.Create(ctx, timer); err != nil {
			return nil, err
		}
		s.logEvent(ctx, timer.ID, models.TimerEventStart, nil, &timer.CurrentPhase, 0, now)
		s.publishTimer(ctx, userID, "timer_started", timer)
		return timer, nil
	}

	if timer.CurrentPhase == models.PhasePaused {
		phase := models.PhaseWork
		if timer.PreviousPhase != nil {
			phase = *timer.PreviousPhase
		}
		// Backdate the phase start so elapsed-time accounting carries through
		// the pause transparently.
		virtualStart := now.Add(-time.Duration(timer.ElapsedInPhase) * time.Second)
		from := timer.CurrentPhase
		timer.CurrentPhase = phase
		timer.PhaseStartedAt = &virtualStart
		timer.PreviousPhase = nil
		timer.ElapsedInPhase = 0
		applyTimerConfig(timer, cfg, now)
		if err := s.timers.Update(ctx, timer); err != nil {
			return nil, err
		}
		s.logEvent(ctx, timer.ID, models.TimerEventResume, &from, &phase, 0, now)
		s.publishTimer(ctx, userID, "timer_resumed", timer)
		return timer, nil
	}

	// Already running: configuration update only, clock untouched unless the
	// infinite flag flips.
	applyTimerConfig(timer, cfg, now)
	if err := s.timers.Update(ctx, timer); err != nil {
		return nil, err
	}
	return timer, nil
}

// applyTimerConfig mutates the open timer in place. Flipping IsInfinite while
// the timer is running resets the phase clock so the next automatic-advance
// check does not see an instantly expired phase.
func applyTimerConfig(t *models.TimerSession, cfg models.TimerConfig, now time.Time) {
	if cfg.WorkDuration != nil && *cfg.WorkDuration > 0 {
		t.WorkDuration = *cfg.WorkDuration
	}
	if cfg.RestDuration != nil && *cfg.RestDuration > 0 {
		t.RestDuration = *cfg.RestDuration
	}
	if cfg.IsInfinite != nil && *cfg.IsInfinite != t.IsInfinite {
		t.IsInfinite = *cfg.IsInfinite
		if t.CurrentPhase == models.PhaseWork || t.CurrentPhase == models.PhaseRest {
			start := now
			t.PhaseStartedAt = &start
		}
	}
}

// Pause banks the time spent in the current phase and parks the timer.
// Pausing an already-paused timer is a no-op returning the current state.
func (s *TimerService) Pause(ctx context.Context, userID, setID uuid.UUID) (*models.TimerSession, error) {
	timer, err := s.requireTimer(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	if timer.CurrentPhase == models.PhasePaused {
		return timer, nil
	}

	now := s.now()
	spent := elapsedSeconds(now, timer.PhaseStartedAt)
	s.bank(timer, spent)

	from := timer.CurrentPhase
	timer.PreviousPhase = &from
	timer.ElapsedInPhase = spent
	timer.CurrentPhase = models.PhasePaused
	timer.PhaseStartedAt = nil
	if err := s.timers.Update(ctx, timer); err != nil {
		return nil, err
	}

	to := models.PhasePaused
	s.logEvent(ctx, timer.ID, models.TimerEventPause, &from, &to, spent, now)
	s.publishTimer(ctx, userID, "timer_paused", timer)
	return timer, nil
}

// Advance moves work→rest or rest→work, counting a completed cycle on every
// rest→work transition. It is illegal from the paused state; the caller must
// resume first. Automatic advances are debounced and verified against the
// configured duration so duplicate poll-triggered calls collapse into one.
func (s *TimerService) Advance(ctx context.Context, userID, setID uuid.UUID, auto bool) (*models.TimerSession, error) {
	timer, err := s.requireTimer(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	if timer.CurrentPhase == models.PhasePaused {
		return nil, &ConflictError{Message: "timer is paused; resume before advancing"}
	}

	now := s.now()

	if auto {
		if timer.IsInfinite {
			return timer, nil
		}
		if elapsedSeconds(now, timer.PhaseStartedAt) < s.phaseDuration(timer) {
			// Stale poll; the phase has not expired.
			return timer, nil
		}
		if s.debounce != nil {
			ok, err := s.debounce.Acquire(ctx, "timer:advance:"+timer.ID.String(), advanceDebounceWindow)
			if err != nil {
				return nil, err
			}
			if !ok {
				return timer, nil
			}
		}
	}

	spent := elapsedSeconds(now, timer.PhaseStartedAt)
	s.bank(timer, spent)

	from := timer.CurrentPhase
	to := models.PhaseRest
	if from == models.PhaseRest {
		to = models.PhaseWork
		timer.CyclesCompleted++
	}
	timer.CurrentPhase = to
	timer.PhaseStartedAt = &now
	if err := s.timers.Update(ctx, timer); err != nil {
		return nil, err
	}

	s.logEvent(ctx, timer.ID, models.TimerEventPhaseChange, &from, &to, spent, now)
	if from == models.PhaseRest {
		s.logEvent(ctx, timer.ID, models.TimerEventCycleComplete, &from, &to, spent, now)
	}
	s.publishTimer(ctx, userID, "timer_phase_changed", timer)
	return timer, nil
}

// Stop banks the current phase and closes the timer. The next Start call will
// create a fresh one.
func (s *TimerService) Stop(ctx context.Context, userID, setID uuid.UUID) (*models.TimerSession, error) {
	timer, err := s.requireTimer(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	spent := elapsedSeconds(now, timer.PhaseStartedAt)
	s.bank(timer, spent)

	from := timer.CurrentPhase
	timer.CurrentPhase = models.PhaseCompleted
	timer.PhaseStartedAt = nil
	timer.PreviousPhase = nil
	timer.ElapsedInPhase = 0
	timer.CompletedAt = &now
	if err := s.timers.Update(ctx, timer); err != nil {
		return nil, err
	}

	to := models.PhaseCompleted
	s.logEvent(ctx, timer.ID, models.TimerEventStop, &from, &to, spent, now)
	s.publishTimer(ctx, userID, "timer_stopped", timer)
	return timer, nil
}

// UpdateConfig applies a configuration change to the open timer.
func (s *TimerService) UpdateConfig(ctx context.Context, userID, setID uuid.UUID, cfg models.TimerConfig) (*models.TimerSession, error) {
	timer, err := s.requireTimer(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	applyTimerConfig(timer, cfg, s.now())
	if err := s.timers.Update(ctx, timer); err != nil {
		return nil, err
	}
	return timer, nil
}

// Status is the read-only poll. It never mutates the timer; the client issues
// an explicit advance when ShouldAdvance is set.
func (s *TimerService) Status(ctx context.Context, userID, setID uuid.UUID) (*models.TimerStatus, error) {
	timer, err := s.requireTimer(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	elapsed := timer.ElapsedInPhase
	if timer.CurrentPhase != models.PhasePaused {
		elapsed = elapsedSeconds(now, timer.PhaseStartedAt)
	}

	status := &models.TimerStatus{
		TimerID:          timer.ID,
		CurrentPhase:     timer.CurrentPhase,
		ElapsedInPhase:   elapsed,
		TotalWorkSeconds: timer.TotalWorkSeconds,
		TotalRestSeconds: timer.TotalRestSeconds,
		CyclesCompleted:  timer.CyclesCompleted,
		WorkDuration:     timer.WorkDuration,
		RestDuration:     timer.RestDuration,
		IsInfinite:       timer.IsInfinite,
	}

	if !timer.IsInfinite && (timer.CurrentPhase == models.PhaseWork || timer.CurrentPhase == models.PhaseRest) {
		remaining := s.phaseDuration(timer) - elapsed
		if remaining < 0 {
			remaining = 0
		}
		status.RemainingInPhase = &remaining
		status.ShouldAdvance = elapsed >= s.phaseDuration(timer)
	}
	return status, nil
}

func (s *TimerService) phaseDuration(t *models.TimerSession) int {
	if t.CurrentPhase == models.PhaseRest {
		return t.RestDuration
	}
	return t.WorkDuration
}

// bank credits seconds to the total of the phase being left.
func (s *TimerService) bank(t *models.TimerSession, seconds int) {
	switch t.CurrentPhase {
	case models.PhaseWork:
		t.TotalWorkSeconds += seconds
	case models.PhaseRest:
		t.TotalRestSeconds += seconds
	}
}

func (s *TimerService) logEvent(ctx context.Context, timerID uuid.UUID, eventType string, from, to *string, duration int, at time.Time) {
	event := &models.TimerEvent{
		ID:              uuid.New(),
		TimerID:         timerID,
		EventType:       eventType,
		FromPhase:       from,
		ToPhase:         to,
		DurationSeconds: duration,
		Timestamp:       at,
	}
	if err := s.timers.AppendEvent(ctx, event); err != nil {
		// The event log is a write-only audit trail; losing an entry must not
		// fail the transition itself.
		return
	}
}

func (s *TimerService) publishTimer(ctx context.Context, userID uuid.UUID, eventType string, t *models.TimerSession) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, userID, eventType, map[string]interface{}{
		"timer_id":         t.ID,
		"current_phase":    t.CurrentPhase,
		"cycles_completed": t.CyclesCompleted,
	})
}
