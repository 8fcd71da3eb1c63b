package calendar

import (
	"context"
	"sync"

	"github.com/recurrence-scheduler/scheduler-web/internal/event_bus"
	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	log "github.com/sirupsen/logrus"
)

// Store holds the calendars shown to one UI session together with loading and error state.
// Calls are not serialized: two overlapping loads both write their result and the last one wins.
type Store struct {
	client   api.Client
	bus      *event_bus.EventBus
	pageSize int

	mu        sync.RWMutex
	calendars []api.Calendar
	loading   bool
	err       string
}

func NewStore(client api.Client, bus *event_bus.EventBus, pageSize int) *Store {
	return &Store{
		client:    client,
		bus:       bus,
		pageSize:  pageSize,
		calendars: []api.Calendar{},
	}
}

func (s *Store) Load(ctx context.Context) error {
	s.begin()
	defer s.finish()

	resp, err := s.client.ListCalendars(ctx, s.pageSize)
	if err != nil {
		log.Errorf("failed to load calendars: %v", err)
		s.fail(err)
		s.bus.PublishLogged(ctx, event_bus.CalendarsLoadFailedType, event_bus.OperationFailed{Message: err.Error()})
		return err
	}

	calendars := resp.Calendars
	if calendars == nil {
		calendars = []api.Calendar{}
	}
	s.mu.Lock()
	s.calendars = calendars
	s.mu.Unlock()

	log.Debugf("loaded %d calendars", len(calendars))
	s.bus.PublishLogged(ctx, event_bus.CalendarsLoadedType, event_bus.CalendarsLoaded{Count: len(calendars)})
	return nil
}

// Create stores a new calendar and reloads the list. A failed reload leaves its error in the
// store but does not fail the creation.
func (s *Store) Create(ctx context.Context, req api.CreateCalendarRequest) (*api.Calendar, error) {
	s.begin()
	defer s.finish()

	created, err := s.client.CreateCalendar(ctx, req)
	if err != nil {
		log.Errorf("failed to create calendar %q: %v", req.Name, err)
		s.fail(err)
		s.bus.PublishLogged(ctx, event_bus.CalendarCreateFailedType, event_bus.OperationFailed{Message: err.Error()})
		return nil, err
	}
	log.Infof("created calendar %s (%s)", created.ID, created.Name)

	_ = s.Load(ctx)

	s.bus.PublishLogged(ctx, event_bus.CalendarCreatedType, event_bus.CalendarCreated{Id: created.ID, Name: created.Name})
	return created, nil
}

func (s *Store) GetByID(id string) (api.Calendar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.calendars {
		if c.ID == id {
			return c, true
		}
	}
	return api.Calendar{}, false
}

func (s *Store) Calendars() []api.Calendar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]api.Calendar, len(s.calendars))
	copy(result, s.calendars)
	return result
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error returns the message of the last failed call, or "" when the last call succeeded.
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) finish() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.err = err.Error()
	s.calendars = []api.Calendar{}
	s.mu.Unlock()
}
