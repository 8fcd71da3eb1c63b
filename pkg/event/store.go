package event

import (
	"context"
	"sync"
	"time"

	"github.com/recurrence-scheduler/scheduler-web/internal/event_bus"
	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	log "github.com/sirupsen/logrus"
)

// Store holds the events loaded for one UI session. Like calendar.Store it does not order
// overlapping calls.
type Store struct {
	client   api.Client
	bus      *event_bus.EventBus
	pageSize int

	mu      sync.RWMutex
	events  []api.Event
	loaded  loadedRange
	loading bool
	err     string
}

// loadedRange is the calendar and window the held events were loaded for.
type loadedRange struct {
	calendarId string
	start      string
	end        string
}

// covers reports whether an event of calendarId starting at dtstart belongs to the window.
func (l loadedRange) covers(calendarId, dtstart string) bool {
	if l.calendarId == "" || calendarId != l.calendarId {
		return false
	}
	at, err := time.Parse(time.RFC3339, dtstart)
	if err != nil {
		return false
	}
	start, err := time.Parse(time.RFC3339, l.start)
	if err != nil {
		return false
	}
	end, err := time.Parse(time.RFC3339, l.end)
	if err != nil {
		return false
	}
	return !at.Before(start) && !at.After(end)
}

func NewStore(client api.Client, bus *event_bus.EventBus, pageSize int) *Store {
	return &Store{
		client:   client,
		bus:      bus,
		pageSize: pageSize,
		events:   []api.Event{},
	}
}

// Load replaces the held events with those of calendarId between start and end (RFC3339).
func (s *Store) Load(ctx context.Context, calendarId, start, end string) error {
	s.begin()
	defer s.finish()

	resp, err := s.client.ListEvents(ctx, calendarId, start, end, s.pageSize)
	if err != nil {
		log.Errorf("failed to load events of calendar %s: %v", calendarId, err)
		s.fail(err)
		s.bus.PublishLogged(ctx, event_bus.EventsLoadFailedType, event_bus.OperationFailed{Message: err.Error()})
		return err
	}

	events := resp.Events
	if events == nil {
		events = []api.Event{}
	}
	s.mu.Lock()
	s.events = events
	s.loaded = loadedRange{calendarId: calendarId, start: start, end: end}
	s.mu.Unlock()

	log.Debugf("loaded %d events of calendar %s", len(events), calendarId)
	s.bus.PublishLogged(ctx, event_bus.EventsLoadedType, event_bus.EventsLoaded{
		CalendarId: calendarId,
		Start:      start,
		End:        end,
		Count:      len(events),
	})
	return nil
}

// Create stores a new event. It joins the held list only when it belongs to the calendar and
// window of the last Load.
func (s *Store) Create(ctx context.Context, req api.CreateEventRequest) (*api.Event, error) {
	s.begin()
	defer s.finish()

	created, err := s.client.CreateEvent(ctx, req)
	if err != nil {
		log.Errorf("failed to create event %q: %v", req.Title, err)
		s.fail(err)
		s.bus.PublishLogged(ctx, event_bus.EventCreateFailedType, event_bus.OperationFailed{Message: err.Error()})
		return nil, err
	}
	log.Infof("created event %s in calendar %s", created.ID, req.CalendarID)

	calendarId := created.CalendarID
	if calendarId == "" {
		calendarId = req.CalendarID
	}
	dtstart := created.DTStart
	if dtstart == "" {
		dtstart = req.DTStart
	}

	s.mu.Lock()
	if s.loaded.covers(calendarId, dtstart) {
		s.events = append(s.events, *created)
	} else {
		log.Debugf("created event %s is outside the loaded range, list unchanged", created.ID)
	}
	s.mu.Unlock()
	s.bus.PublishLogged(ctx, event_bus.EventCreatedType, event_bus.EventCreated{
		Id:         created.ID,
		CalendarId: calendarId,
		Title:      created.Title,
		Recurring:  created.RRule != nil,
	})
	return created, nil
}

// Occurrences asks the backend to expand eventId's recurrence between start and end.
// The held list is left untouched.
func (s *Store) Occurrences(ctx context.Context, eventId, start, end string) ([]api.Event, error) {
	instances, err := s.client.ExpandRecurrence(ctx, eventId, start, end)
	if err != nil {
		log.Errorf("failed to expand event %s: %v", eventId, err)
		return nil, err
	}
	return instances, nil
}

// GetByCalendarID filters the held events on calendar_id.
func (s *Store) GetByCalendarID(calendarId string) []api.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]api.Event, 0)
	for _, e := range s.events {
		if e.CalendarID == calendarId {
			result = append(result, e)
		}
	}
	return result
}

func (s *Store) Events() []api.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]api.Event, len(s.events))
	copy(result, s.events)
	return result
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

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
	s.events = []api.Event{}
	s.loaded = loadedRange{}
	s.mu.Unlock()
}
