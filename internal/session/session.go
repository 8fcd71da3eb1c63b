package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/recurrence-scheduler/scheduler-web/pkg/calendar"
	"github.com/recurrence-scheduler/scheduler-web/pkg/event"
	log "github.com/sirupsen/logrus"
)

type Tab string

const (
	TabCalendars Tab = "calendars"
	TabEvents    Tab = "events"
	TabCreate    Tab = "create"
	TabMonth     Tab = "month"
)

func ParseTab(s string) (Tab, bool) {
	switch Tab(s) {
	case TabCalendars, TabEvents, TabCreate, TabMonth:
		return Tab(s), true
	}
	return "", false
}

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

type Toast struct {
	Text      string
	Kind      ToastKind
	ExpiresAt time.Time
}

// State is the UI state of one browser session.
type State struct {
	Tab                Tab
	SelectedCalendarID string
	// StartDate and EndDate are YYYY-MM-DD in the display location.
	StartDate    string
	EndDate      string
	EventsLoaded bool
	CalendarForm calendar.Form
	EventForm    event.Form
	Toast        Toast
}

type Session struct {
	ID        string
	Calendars *calendar.Store
	Events    *event.Store

	mu       sync.Mutex
	state    State
	lastSeen time.Time
}

func New(id string, calendars *calendar.Store, events *event.Store, initial State) *Session {
	return &Session{
		ID:        id,
		Calendars: calendars,
		Events:    events,
		state:     initial,
	}
}

// State returns a copy of the session state as of now; an expired toast is dropped.
func (s *Session) State(now time.Time) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Toast.Text != "" && !now.Before(s.state.Toast.ExpiresAt) {
		s.state.Toast = Toast{}
	}
	return s.state
}

func (s *Session) Update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// ShowToast replaces the current toast; it disappears once ttl has elapsed.
func (s *Session) ShowToast(text string, kind ToastKind, now time.Time, ttl time.Duration) {
	log.Debugf("session %s toast (%s): %s", s.ID, kind, text)
	s.Update(func(st *State) {
		st.Toast = Toast{Text: text, Kind: kind, ExpiresAt: now.Add(ttl)}
	})
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

type contextKey string

const sessionKey contextKey = "session"

var ErrNoSession = errors.New("session not found")

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// Current returns the session stored in ctx, or ErrNoSession.
func Current(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(sessionKey).(*Session)
	if !ok || s == nil {
		log.Trace("session not found in context")
		return nil, ErrNoSession
	}
	return s, nil
}
