package session

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/recurrence-scheduler/scheduler-web/internal/config"
	"github.com/recurrence-scheduler/scheduler-web/internal/utils"
	log "github.com/sirupsen/logrus"
)

// Factory builds a fresh session for a new browser.
type Factory func(id string) *Session

// Manager keeps sessions in memory, keyed by the id stored in a cookie.
type Manager struct {
	cfg     config.Session
	clock   utils.Clock
	factory Factory

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(cfg config.Session, clock utils.Clock, factory Factory) *Manager {
	return &Manager{
		cfg:      cfg,
		clock:    clock,
		factory:  factory,
		sessions: make(map[string]*Session),
	}
}

// Middleware attaches the caller's session to the request context, starting one when the
// cookie is missing or refers to a swept session.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.lookup(r)
		if s == nil {
			s = m.start()
			http.SetCookie(w, &http.Cookie{
				Name:     m.cfg.CookieName,
				Value:    s.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		s.touch(m.clock.Now())
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func (m *Manager) lookup(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return nil
	}
	s, ok := m.Get(cookie.Value)
	if !ok {
		log.Debugf("unknown session %s, starting a new one", cookie.Value)
		return nil
	}
	return s
}

func (m *Manager) start() *Session {
	s := m.factory(uuid.NewString())
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	log.Debugf("started session %s", s.ID)
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Sweep drops sessions idle for longer than the configured timeout and returns how many went.
func (m *Manager) Sweep() int {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince(now) > m.cfg.IdleTimeout {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Infof("swept %d idle sessions, %d left", removed, len(m.sessions))
	}
	return removed
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
