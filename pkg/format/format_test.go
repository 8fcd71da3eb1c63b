package format

import (
	"testing"
	"time"

	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDateTime(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	tests := []struct {
		name   string
		iso    string
		loc    *time.Location
		locale Locale
		want   string
	}{
		{"japanese in utc", "2026-10-05T09:07:00Z", time.UTC, Japanese, "2026/10/05 09:07"},
		{"japanese converted to tokyo", "2026-10-05T20:30:00Z", tokyo, Japanese, "2026/10/06 05:30"},
		{"english afternoon", "2026-10-05T14:05:00Z", time.UTC, English, "10/05/2026, 02:05 PM"},
		{"fractional seconds", "2026-10-05T09:07:00.123Z", time.UTC, Japanese, "2026/10/05 09:07"},
		{"invalid input unchanged", "not a date", time.UTC, Japanese, "not a date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDateTime(tt.iso, tt.loc, tt.locale))
		})
	}
}

func TestFormatRRule(t *testing.T) {
	t.Run("nil rule yields empty string", func(t *testing.T) {
		assert.Equal(t, "", FormatRRule(nil, Japanese))
	})

	t.Run("weekly with days in japanese", func(t *testing.T) {
		rule := &api.RecurrenceRule{Freq: "WEEKLY", ByDay: []string{"MO", "WE"}}

		text := FormatRRule(rule, Japanese)

		assert.Equal(t, "頻度: WEEKLY, 曜日: 月, 水", text)
		assert.Contains(t, text, "月")
		assert.Contains(t, text, "水")
	})

	t.Run("interval shown only above one", func(t *testing.T) {
		assert.Equal(t, "頻度: DAILY", FormatRRule(&api.RecurrenceRule{Freq: "DAILY", Interval: 1}, Japanese))
		assert.Equal(t, "Frequency: DAILY, Interval: 3", FormatRRule(&api.RecurrenceRule{Freq: "DAILY", Interval: 3}, English))
	})

	t.Run("empty rule falls back to repeats label", func(t *testing.T) {
		assert.Equal(t, "繰り返しあり", FormatRRule(&api.RecurrenceRule{}, Japanese))
		assert.Equal(t, "Repeats", FormatRRule(&api.RecurrenceRule{}, English))
	})

	t.Run("unknown day codes pass through", func(t *testing.T) {
		assert.Equal(t, "Days: Fri, XX", FormatRRule(&api.RecurrenceRule{ByDay: []string{"FR", "XX"}}, English))
	})
}

func TestDayLabel(t *testing.T) {
	assert.Equal(t, "日", DayLabel("SU", Japanese))
	assert.Equal(t, "Sun", DayLabel("SU", English))
	assert.Equal(t, "月", DayLabel("MO", Locale("fr")))
	assert.Equal(t, "1MO", DayLabel("1MO", Japanese))
	assert.Equal(t, "土", WeekdayLabel(time.Saturday, Japanese))
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "2026年10月", MonthName(2026, time.October, Japanese))
	assert.Equal(t, "October 2026", MonthName(2026, time.October, English))
	assert.Equal(t, "2027年1月", MonthName(2027, time.January, Japanese))
}

func TestDefaultDateRange(t *testing.T) {
	tests := []struct {
		now        time.Time
		start, end string
	}{
		{time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC), "2026-10-01", "2026-10-31"},
		{time.Date(2028, 2, 10, 0, 0, 0, 0, time.UTC), "2028-02-01", "2028-02-29"},
		{time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC), "2026-12-01", "2026-12-31"},
	}
	for _, tt := range tests {
		start, end := DefaultDateRange(tt.now)
		assert.Equal(t, tt.start, start)
		assert.Equal(t, tt.end, end)
	}
}

func TestDayRange(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	start, end, err := DayRange("2026-10-01", "2026-10-31", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-01T00:00:00Z", start)
	assert.Equal(t, "2026-10-31T23:59:59Z", end)

	start, end, err = DayRange("2026-10-19", "2026-10-19", tokyo)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18T15:00:00Z", start)
	assert.Equal(t, "2026-10-19T14:59:59Z", end)

	_, _, err = DayRange("2026-10-20", "2026-10-19", time.UTC)
	assert.Error(t, err)
	_, _, err = DayRange("19/10/2026", "2026-10-19", time.UTC)
	assert.Error(t, err)
	_, _, err = DayRange("2026-10-19", "", time.UTC)
	assert.Error(t, err)
}

func TestRRuleString(t *testing.T) {
	t.Run("nil or frequency-less rule renders nothing", func(t *testing.T) {
		s, err := RRuleString(nil)
		require.NoError(t, err)
		assert.Empty(t, s)

		s, err = RRuleString(&api.RecurrenceRule{Interval: 2})
		require.NoError(t, err)
		assert.Empty(t, s)
	})

	t.Run("full rule", func(t *testing.T) {
		rule := &api.RecurrenceRule{
			Freq:     "weekly",
			Interval: 2,
			Count:    10,
			ByDay:    []string{"MO", "FR"},
			Wkst:     "MO",
		}

		s, err := RRuleString(rule)

		require.NoError(t, err)
		assert.Equal(t, "FREQ=WEEKLY;INTERVAL=2;COUNT=10;BYDAY=MO,FR;WKST=MO", s)
	})

	t.Run("until is normalized to utc", func(t *testing.T) {
		rule := &api.RecurrenceRule{Freq: "MONTHLY", Until: "2027-01-31T09:00:00+09:00", ByMonthDay: []int{1, 15}}

		s, err := RRuleString(rule)

		require.NoError(t, err)
		assert.Equal(t, "FREQ=MONTHLY;UNTIL=20270131T000000Z;BYMONTHDAY=1,15", s)
	})

	t.Run("invalid frequency is rejected", func(t *testing.T) {
		_, err := RRuleString(&api.RecurrenceRule{Freq: "FORTNIGHTLY"})
		assert.Error(t, err)
	})

	t.Run("invalid until is rejected", func(t *testing.T) {
		_, err := RRuleString(&api.RecurrenceRule{Freq: "DAILY", Until: "tomorrow"})
		assert.Error(t, err)
	})
}
