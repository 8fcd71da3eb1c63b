package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ClientStub is an in-memory Client used by tests and by the UI package's tests.
type ClientStub struct {
	mu        sync.RWMutex
	calendars []Calendar
	events    []Event
	instances map[string][]Event // eventId -> expanded instances

	ListCalendarsErr    error
	GetCalendarErr      error
	CreateCalendarErr   error
	ListEventsErr       error
	GetEventErr         error
	CreateEventErr      error
	ExpandRecurrenceErr error

	// LastListEvents records the arguments of the most recent ListEvents call.
	LastListEvents ListEventsCall
}

type ListEventsCall struct {
	CalendarId string
	Start      string
	End        string
	PageSize   int
}

func NewClientStub() *ClientStub {
	return &ClientStub{
		instances: make(map[string][]Event),
	}
}

func (c *ClientStub) AddCalendar(calendar Calendar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calendars = append(c.calendars, calendar)
}

func (c *ClientStub) AddEvent(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *ClientStub) SetInstances(eventId string, instances []Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances[eventId] = instances
}

func (c *ClientStub) ListCalendars(ctx context.Context, pageSize int) (*ListCalendarsResponse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.ListCalendarsErr != nil {
		return nil, c.ListCalendarsErr
	}
	result := make([]Calendar, 0, len(c.calendars))
	for i, cal := range c.calendars {
		if pageSize > 0 && i >= pageSize {
			break
		}
		result = append(result, cal)
	}
	return &ListCalendarsResponse{Calendars: result}, nil
}

func (c *ClientStub) GetCalendar(ctx context.Context, id string) (*Calendar, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.GetCalendarErr != nil {
		return nil, c.GetCalendarErr
	}
	for _, cal := range c.calendars {
		if cal.ID == id {
			found := cal
			return &found, nil
		}
	}
	return nil, &Error{Status: 404, Message: fmt.Sprintf("calendar %s not found", id)}
}

func (c *ClientStub) CreateCalendar(ctx context.Context, req CreateCalendarRequest) (*Calendar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.CreateCalendarErr != nil {
		return nil, c.CreateCalendarErr
	}
	now := time.Now().UTC().Format(time.RFC3339)
	cal := Calendar{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Timezone:    req.Timezone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if cal.Timezone == "" {
		cal.Timezone = "UTC"
	}
	c.calendars = append(c.calendars, cal)
	return &cal, nil
}

// ListEvents returns the stored events of calendarId; the time window is recorded but not applied.
func (c *ClientStub) ListEvents(ctx context.Context, calendarId, start, end string, pageSize int) (*ListEventsResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.LastListEvents = ListEventsCall{CalendarId: calendarId, Start: start, End: end, PageSize: pageSize}
	if c.ListEventsErr != nil {
		return nil, c.ListEventsErr
	}
	result := make([]Event, 0)
	for _, e := range c.events {
		if e.CalendarID != calendarId {
			continue
		}
		if pageSize > 0 && len(result) >= pageSize {
			break
		}
		result = append(result, e)
	}
	return &ListEventsResponse{Events: result}, nil
}

func (c *ClientStub) GetEvent(ctx context.Context, id string) (*Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.GetEventErr != nil {
		return nil, c.GetEventErr
	}
	for _, e := range c.events {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, &Error{Status: 404, Message: fmt.Sprintf("event %s not found", id)}
}

func (c *ClientStub) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.CreateEventErr != nil {
		return nil, c.CreateEventErr
	}
	now := time.Now().UTC().Format(time.RFC3339)
	e := Event{
		ID:          uuid.NewString(),
		CalendarID:  req.CalendarID,
		Title:       req.Title,
		Description: req.Description,
		DTStart:     req.DTStart,
		DTEnd:       req.DTEnd,
		RRule:       req.RRule,
		Timezone:    req.Timezone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.events = append(c.events, e)
	return &e, nil
}

func (c *ClientStub) ExpandRecurrence(ctx context.Context, eventId, start, end string) ([]Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.ExpandRecurrenceErr != nil {
		return nil, c.ExpandRecurrenceErr
	}
	instances, ok := c.instances[eventId]
	if !ok {
		return nil, &Error{Status: 404, Message: fmt.Sprintf("event %s not found", eventId)}
	}
	result := make([]Event, len(instances))
	copy(result, instances)
	return result, nil
}
