package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultCalendarPageSize = 100
	DefaultEventPageSize    = 50
)

// Error is returned for every non-2xx answer from the scheduler backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

type Client interface {
	ListCalendars(ctx context.Context, pageSize int) (*ListCalendarsResponse, error)
	GetCalendar(ctx context.Context, id string) (*Calendar, error)
	CreateCalendar(ctx context.Context, req CreateCalendarRequest) (*Calendar, error)
	ListEvents(ctx context.Context, calendarId, start, end string, pageSize int) (*ListEventsResponse, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error)
	ExpandRecurrence(ctx context.Context, eventId, start, end string) ([]Event, error)
}

type ClientImpl struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the REST root baseURL (e.g. http://host/api/v1).
// A nil httpClient means http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *ClientImpl {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ClientImpl{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *ClientImpl) ListCalendars(ctx context.Context, pageSize int) (*ListCalendarsResponse, error) {
	if pageSize <= 0 {
		pageSize = DefaultCalendarPageSize
	}
	q := url.Values{}
	q.Set("page_size", strconv.Itoa(pageSize))

	var response ListCalendarsResponse
	if err := c.call(ctx, http.MethodGet, "/calendars?"+q.Encode(), nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *ClientImpl) GetCalendar(ctx context.Context, id string) (*Calendar, error) {
	var response calendarEnvelope
	if err := c.call(ctx, http.MethodGet, "/calendars/"+url.PathEscape(id), nil, &response); err != nil {
		return nil, err
	}
	return &response.Calendar, nil
}

func (c *ClientImpl) CreateCalendar(ctx context.Context, req CreateCalendarRequest) (*Calendar, error) {
	var response calendarEnvelope
	if err := c.call(ctx, http.MethodPost, "/calendars", req, &response); err != nil {
		return nil, err
	}
	return &response.Calendar, nil
}

func (c *ClientImpl) ListEvents(ctx context.Context, calendarId, start, end string, pageSize int) (*ListEventsResponse, error) {
	if pageSize <= 0 {
		pageSize = DefaultEventPageSize
	}
	q := url.Values{}
	q.Set("calendar_id", calendarId)
	q.Set("start", start)
	q.Set("end", end)
	q.Set("page_size", strconv.Itoa(pageSize))

	var response ListEventsResponse
	if err := c.call(ctx, http.MethodGet, "/events?"+q.Encode(), nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *ClientImpl) GetEvent(ctx context.Context, id string) (*Event, error) {
	var response eventEnvelope
	if err := c.call(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, &response); err != nil {
		return nil, err
	}
	return &response.Event, nil
}

func (c *ClientImpl) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	var response eventEnvelope
	if err := c.call(ctx, http.MethodPost, "/events", req, &response); err != nil {
		return nil, err
	}
	return &response.Event, nil
}

func (c *ClientImpl) ExpandRecurrence(ctx context.Context, eventId, start, end string) ([]Event, error) {
	var response instancesEnvelope
	body := ExpandRecurrenceRequest{Start: start, End: end}
	if err := c.call(ctx, http.MethodPost, "/events/"+url.PathEscape(eventId)+"/expand", body, &response); err != nil {
		return nil, err
	}
	return response.Instances, nil
}

// call performs one JSON round trip. Non-2xx answers become *Error.
func (c *ClientImpl) call(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		log.Errorf("failed to create request: %v", err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.Tracef("API %s %s", method, endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorf("failed to execute request: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		log.Debugf("API %s %s returned %d: %s", method, endpoint, apiErr.Status, apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Errorf("failed to decode response: %v", err)
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) *Error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return &Error{Status: resp.StatusCode, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	if payload.Message == "" {
		return &Error{Status: resp.StatusCode, Message: fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)}
	}
	return &Error{Status: resp.StatusCode, Message: payload.Message}
}
