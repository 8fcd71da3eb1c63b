package event

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	"github.com/recurrence-scheduler/scheduler-web/pkg/format"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokyo(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	return loc
}

func TestCard(t *testing.T) {
	e := api.Event{
		ID:      "e1",
		Title:   "Standup",
		DTStart: "2026-10-05T00:30:00Z",
		DTEnd:   "2026-10-05T00:45:00Z",
		RRule:   &api.RecurrenceRule{Freq: "WEEKLY", ByDay: []string{"MO", "WE"}},
	}

	card := NewCard(e, tokyo(t), format.Japanese)

	assert.Equal(t, "2026/10/05 09:30", card.FormattedStart())
	assert.Equal(t, "2026/10/05 09:45", card.FormattedEnd())
	assert.True(t, card.HasRecurrence())
	assert.Equal(t, "頻度: WEEKLY, 曜日: 月, 水", card.RecurrenceText())
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO,WE", card.RRuleString())
	assert.Equal(t, "説明なし", card.DescriptionOr("説明なし"))

	plain := NewCard(api.Event{ID: "e2", DTStart: "garbage"}, time.UTC, format.English)
	assert.False(t, plain.HasRecurrence())
	assert.Empty(t, plain.RecurrenceText())
	assert.Empty(t, plain.RRuleString())
	assert.Equal(t, "garbage", plain.FormattedStart())
}

func TestFormFromValues(t *testing.T) {
	t.Run("keeps weekdays only for weekly rules", func(t *testing.T) {
		form := FormFromValues(url.Values{
			"freq":     {"daily"},
			"byday":    {"MO", "WE"},
			"interval": {"0"},
		})

		assert.Equal(t, "DAILY", form.Freq)
		assert.Empty(t, form.ByDay)
		assert.Equal(t, 1, form.Interval)
	})

	t.Run("deduplicates and filters weekday codes", func(t *testing.T) {
		form := FormFromValues(url.Values{
			"freq":  {"WEEKLY"},
			"byday": {"mo", "MO", "XX", "fr"},
		})

		assert.Equal(t, []string{"MO", "FR"}, form.ByDay)
		assert.True(t, form.HasDay("FR"))
		assert.False(t, form.HasDay("TU"))
	})
}

func TestForm_ToggleByDay(t *testing.T) {
	form := NewForm()
	form.Freq = Weekly
	form.ByDay = []string{"TU"}

	form.ToggleByDay()
	assert.Equal(t, []string{"TU"}, form.ByDay)

	form.Freq = "MONTHLY"
	form.ToggleByDay()
	assert.Nil(t, form.ByDay)
}

func TestForm_ToRequest(t *testing.T) {
	valid := func() Form {
		f := NewForm()
		f.CalendarID = "c1"
		f.Title = "Standup"
		f.DTStart = "2026-10-05T09:30"
		f.DTEnd = "2026-10-05T09:45"
		return f
	}

	t.Run("converts local times to utc and omits rule without frequency", func(t *testing.T) {
		req, err := valid().ToRequest(tokyo(t))

		require.NoError(t, err)
		assert.Equal(t, api.CreateEventRequest{
			CalendarID: "c1",
			Title:      "Standup",
			DTStart:    "2026-10-05T00:30:00Z",
			DTEnd:      "2026-10-05T00:45:00Z",
			Timezone:   "UTC",
		}, req)
	})

	t.Run("builds weekly rule", func(t *testing.T) {
		f := valid()
		f.Freq = Weekly
		f.Interval = 2
		f.ByDay = []string{"MO", "WE"}
		f.Count = 5
		f.Timezone = "Asia/Tokyo"

		req, err := f.ToRequest(time.UTC)

		require.NoError(t, err)
		assert.Equal(t, &api.RecurrenceRule{Freq: Weekly, Interval: 2, Count: 5, ByDay: []string{"MO", "WE"}}, req.RRule)
		assert.Equal(t, "Asia/Tokyo", req.Timezone)
	})

	t.Run("until covers the whole local day", func(t *testing.T) {
		f := valid()
		f.Freq = "DAILY"
		f.Interval = 0
		f.Until = "2026-10-31"

		req, err := f.ToRequest(tokyo(t))

		require.NoError(t, err)
		assert.Equal(t, 1, req.RRule.Interval)
		assert.Equal(t, "2026-10-31T14:59:59Z", req.RRule.Until)
	})

	t.Run("until ends at 23:59:59 local time on daylight saving days", func(t *testing.T) {
		newYork, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		tests := []struct {
			until    string
			expected string
		}{
			{"2026-11-01", "2026-11-02T04:59:59Z"},
			{"2026-03-08", "2026-03-09T03:59:59Z"},
		}
		for _, tt := range tests {
			t.Run(tt.until, func(t *testing.T) {
				f := valid()
				f.DTStart = "2026-03-02T09:30"
				f.DTEnd = "2026-03-02T09:45"
				f.Freq = "DAILY"
				f.Until = tt.until

				req, err := f.ToRequest(newYork)

				require.NoError(t, err)
				assert.Equal(t, tt.expected, req.RRule.Until)
				until, _ := time.Parse(time.RFC3339, req.RRule.Until)
				assert.Equal(t, "23:59:59", until.In(newYork).Format("15:04:05"))
			})
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		noCalendar := valid()
		noCalendar.CalendarID = ""
		noTitle := valid()
		noTitle.Title = ""
		badStart := valid()
		badStart.DTStart = "tomorrow"
		badEnd := valid()
		badEnd.DTEnd = ""
		reversed := valid()
		reversed.DTEnd = "2026-10-05T08:00"
		badFreq := valid()
		badFreq.Freq = "HOURLYISH"

		for form, want := range map[*Form]error{
			&noCalendar: ErrCalendarRequired,
			&noTitle:    ErrTitleRequired,
			&badStart:   ErrInvalidStart,
			&badEnd:     ErrInvalidEnd,
			&reversed:   ErrEndBeforeStart,
			&badFreq:    ErrInvalidFrequency,
		} {
			_, err := form.ToRequest(time.UTC)
			assert.ErrorIs(t, err, want)
		}
	})
}

func TestExportICS(t *testing.T) {
	// given
	events := []api.Event{
		{
			ID:          "e1",
			Title:       "Standup",
			Description: "daily sync",
			DTStart:     "2026-10-05T09:00:00Z",
			DTEnd:       "2026-10-05T09:15:00Z",
			RRule:       &api.RecurrenceRule{Freq: "WEEKLY", ByDay: []string{"MO"}},
			CreatedAt:   "2026-09-01T00:00:00Z",
		},
		{ID: "e2", Title: "Broken", DTStart: "never"},
	}
	var buf bytes.Buffer

	// when
	err := ExportICS(&buf, "Work", events, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))

	// then
	require.NoError(t, err)
	cal, err := ics.ParseCalendar(strings.NewReader(buf.String()))
	require.NoError(t, err)
	parsed := cal.Events()
	require.Len(t, parsed, 1)
	assert.Equal(t, "e1", parsed[0].Id())
	assert.Equal(t, "Standup", parsed[0].GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO", parsed[0].GetProperty(ics.ComponentPropertyRrule).Value)
	start, err := parsed[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)))
	assert.Contains(t, buf.String(), "X-WR-CALNAME:Work")
}

func TestExportCSV(t *testing.T) {
	// given
	events := []api.Event{
		{ID: "e1", CalendarID: "c1", Title: "Lunch, team", DTStart: "2026-10-05T03:00:00Z", DTEnd: "2026-10-05T04:00:00Z", Timezone: "UTC"},
		{ID: "e2", CalendarID: "c1", Title: "Gym", DTStart: "2026-10-06T10:00:00Z", DTEnd: "2026-10-06T11:00:00Z",
			RRule: &api.RecurrenceRule{Freq: "WEEKLY", Interval: 2, ByDay: []string{"TU"}}},
	}
	var buf bytes.Buffer

	// when
	err := ExportCSV(&buf, events, tokyo(t), format.English)

	// then
	require.NoError(t, err)
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"e1", "c1", "Lunch, team", "", "10/05/2026, 12:00 PM", "10/05/2026, 01:00 PM", "UTC", "", ""}, rows[1])
	assert.Equal(t, "Frequency: WEEKLY, Interval: 2, Days: Tue", rows[2][7])
	assert.Equal(t, "FREQ=WEEKLY;INTERVAL=2;BYDAY=TU", rows[2][8])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestExportCSV_WriteError(t *testing.T) {
	// given
	hook := logtest.NewGlobal()
	t.Cleanup(hook.Reset)
	events := []api.Event{{ID: "e1", CalendarID: "c1", Title: "Lunch", DTStart: "2026-10-05T03:00:00Z"}}

	// when
	err := ExportCSV(failingWriter{}, events, time.UTC, format.English)

	// then
	require.Error(t, err)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.ErrorLevel, entry.Level)
	assert.Equal(t, "failed to write csv: disk full", entry.Message)
}
