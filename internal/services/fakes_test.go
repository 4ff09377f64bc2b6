package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"studydeck-backend/internal/models"
)

// In-memory stores backing the service tests.

type fakeStore struct {
	mu        sync.Mutex
	questions map[uuid.UUID][]models.Question
	sessions  []*models.StudySession
	answers   []models.SessionAnswer
	timers    []*models.TimerSession
	events    []models.TimerEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{questions: make(map[uuid.UUID][]models.Question)}
}

func (f *fakeStore) ListBySet(_ context.Context, setID uuid.UUID) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.questions[setID], nil
}

func (f *fakeStore) FindOpen(_ context.Context, userID, setID uuid.UUID) (*models.StudySession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.UserID == userID && s.SetID == setID && s.CompletedAt == nil {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Create(_ context.Context, s *models.StudySession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *s
	f.sessions = append(f.sessions, &copied)
	return nil
}

func (f *fakeStore) MarkCompleted(_ context.Context, userID, setID uuid.UUID, at time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	closed := 0
	for _, s := range f.sessions {
		if s.UserID == userID && s.SetID == setID && s.CompletedAt == nil {
			completedAt := at
			s.CompletedAt = &completedAt
			closed++
		}
	}
	return closed, nil
}

func (f *fakeStore) Reset(_ context.Context, userID, setID uuid.UUID, fresh *models.StudySession) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doomed := make(map[uuid.UUID]bool)
	kept := f.sessions[:0]
	for _, s := range f.sessions {
		if s.UserID == userID && s.SetID == setID {
			doomed[s.ID] = true
			continue
		}
		kept = append(kept, s)
	}
	f.sessions = kept

	answers := f.answers[:0]
	for _, a := range f.answers {
		if !doomed[a.SessionID] {
			answers = append(answers, a)
		}
	}
	f.answers = answers

	doomedTimers := make(map[uuid.UUID]bool)
	timers := f.timers[:0]
	for _, t := range f.timers {
		if doomed[t.SessionID] {
			doomedTimers[t.ID] = true
			continue
		}
		timers = append(timers, t)
	}
	f.timers = timers

	events := f.events[:0]
	for _, e := range f.events {
		if !doomedTimers[e.TimerID] {
			events = append(events, e)
		}
	}
	f.events = events

	copied := *fresh
	f.sessions = append(f.sessions, &copied)
	return nil
}

func (f *fakeStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]models.SessionAnswer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SessionAnswer
	for _, a := range f.answers {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) Append(_ context.Context, a *models.SessionAnswer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, *a)
	return nil
}

func (f *fakeStore) FindOpenBySession(_ context.Context, sessionID uuid.UUID) (*models.TimerSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.timers {
		if t.SessionID == sessionID && t.CompletedAt == nil {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateTimer(t *models.TimerSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *t
	f.timers = append(f.timers, &copied)
	return nil
}

func (f *fakeStore) Update(_ context.Context, t *models.TimerSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.timers {
		if existing.ID == t.ID {
			copied := *t
			f.timers[i] = &copied
			return nil
		}
	}
	return nil
}

func (f *fakeStore) AppendEvent(_ context.Context, e *models.TimerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *e)
	return nil
}

// fakeTimerStore adapts fakeStore to the TimerStore Create signature.
type fakeTimerStore struct{ *fakeStore }

func (f fakeTimerStore) Create(_ context.Context, t *models.TimerSession) error {
	return f.CreateTimer(t)
}

func (f *fakeStore) eventsOfType(eventType string) []models.TimerEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TimerEvent
	for _, e := range f.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fakeClock hands out a controllable frozen time.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// seqRNG yields a fixed sequence of draws.
type seqRNG struct {
	values []float64
	i      int
}

func (r *seqRNG) Float64() float64 {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.i%len(r.values)]
	r.i++
	return v
}

// memoryDebouncer mirrors the Redis SETNX behavior for tests.
type memoryDebouncer struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func newMemoryDebouncer(now func() time.Time) *memoryDebouncer {
	return &memoryDebouncer{held: make(map[string]time.Time), now: now}
}

func (d *memoryDebouncer) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if expiry, ok := d.held[key]; ok && d.now().Before(expiry) {
		return false, nil
	}
	d.held[key] = d.now().Add(ttl)
	return true, nil
}
