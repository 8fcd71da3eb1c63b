package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/recurrence-scheduler/scheduler-web/internal/utils"
	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendStub struct {
	mu          sync.Mutex
	lastQuery   url.Values
	createdBody api.CreateEventRequest
}

func (b *backendStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/calendars":
		_, _ = io.WriteString(w, `{"calendars":[{"id":"c1","name":"Work","description":"Office","timezone":"Asia/Tokyo"}]}`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/events":
		b.lastQuery = r.URL.Query()
		_, _ = io.WriteString(w, `{"events":[{"id":"e1","calendar_id":"c1","title":"Retro","dtstart":"2026-10-22T10:00:00Z","dtend":"2026-10-22T11:00:00Z","timezone":"UTC"}]}`)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/events":
		_ = json.NewDecoder(r.Body).Decode(&b.createdBody)
		_, _ = io.WriteString(w, `{"event":{"id":"e-new","title":"Standup"}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"not found"}`)
	}
}

func runCtl(t *testing.T, args ...string) (string, *backendStub, error) {
	backend := &backendStub{}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	clock := &utils.MockClock{FixedNow: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	app := newApp(clock)
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard

	base := []string{"schedulerctl", "--config", "testdata/missing.yaml", "--api", srv.URL + "/api/v1", "--locale", "en", "--timezone", "UTC"}
	err := app.Run(append(base, args...))
	return out.String(), backend, err
}

func TestCalendarsList(t *testing.T) {
	out, _, err := runCtl(t, "calendars", "list")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"ID", "NAME", "TIMEZONE", "DESCRIPTION"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"c1", "Work", "Asia/Tokyo", "Office"}, strings.Fields(lines[1]))
}

func TestEventsList(t *testing.T) {
	// when
	out, backend, err := runCtl(t, "events", "list", "--calendar", "c1", "--start", "2026-10-01", "--end", "2026-10-31")

	// then
	require.NoError(t, err)
	assert.Equal(t, "c1", backend.lastQuery.Get("calendar_id"))
	assert.Equal(t, "2026-10-01T00:00:00Z", backend.lastQuery.Get("start"))
	assert.Equal(t, "2026-10-31T23:59:59Z", backend.lastQuery.Get("end"))
	assert.Contains(t, out, "Retro")
	assert.Contains(t, out, "10/22/2026, 10:00 AM")
}

func TestEventsCreate(t *testing.T) {
	// when
	out, backend, err := runCtl(t, "events", "create",
		"--calendar", "c1",
		"--title", "Standup",
		"--start", "2026-10-19T09:00",
		"--end", "2026-10-19T09:15",
		"--freq", "weekly",
		"--byday", "MO", "--byday", "we",
		"--until", "2026-12-31",
	)

	// then
	require.NoError(t, err)
	assert.Equal(t, "e-new", strings.TrimSpace(out))
	req := backend.createdBody
	assert.Equal(t, "c1", req.CalendarID)
	assert.Equal(t, "2026-10-19T09:00:00Z", req.DTStart)
	assert.Equal(t, "2026-10-19T09:15:00Z", req.DTEnd)
	assert.Equal(t, "UTC", req.Timezone)
	require.NotNil(t, req.RRule)
	assert.Equal(t, "WEEKLY", req.RRule.Freq)
	assert.Equal(t, 1, req.RRule.Interval)
	assert.Equal(t, []string{"MO", "WE"}, req.RRule.ByDay)
	assert.Equal(t, "2026-12-31T23:59:59Z", req.RRule.Until)
}

func TestEventsCreate_InvalidForm(t *testing.T) {
	_, backend, err := runCtl(t, "events", "create",
		"--calendar", "c1", "--title", "Broken", "--start", "2026-10-19T10:00", "--end", "2026-10-19T09:00")

	assert.Error(t, err)
	assert.Empty(t, backend.createdBody.Title)
}

func TestEventsGet_NotFound(t *testing.T) {
	_, _, err := runCtl(t, "events", "get", "missing")

	require.Error(t, err)
	assert.Equal(t, "not found", err.Error())
}

func TestEventsExpand_RequiresId(t *testing.T) {
	_, _, err := runCtl(t, "events", "expand")

	assert.ErrorIs(t, err, errIdRequired)
}

func TestMonth(t *testing.T) {
	// when
	out, backend, err := runCtl(t, "month", "--calendar", "c1", "--year", "2026", "--month", "10")

	// then
	require.NoError(t, err)
	assert.Equal(t, "2026-10-01T00:00:00Z", backend.lastQuery.Get("start"))
	assert.Equal(t, "2026-10-31T23:59:59Z", backend.lastQuery.Get("end"))

	lines := strings.Split(out, "\n")
	assert.Equal(t, "October 2026", lines[0])
	assert.Equal(t, []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}, strings.Fields(lines[1]))
	assert.Contains(t, out, "[19] ")
	assert.Contains(t, out, " 22 *")
	assert.Contains(t, out, "22  10/22/2026, 10:00 AM  Retro")
	// 6 week rows follow the header
	assert.Equal(t, " 25   26   27   28   29   30   31  ", lines[6])
}
