package calendar_view

import (
	"time"

	"github.com/recurrence-scheduler/scheduler-web/internal/utils"
	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	"github.com/recurrence-scheduler/scheduler-web/pkg/format"
	log "github.com/sirupsen/logrus"
)

const (
	DaysPerWeek = 7
	Weeks       = 6
	GridSize    = DaysPerWeek * Weeks
)

type Day struct {
	Date           time.Time
	Day            int
	IsCurrentMonth bool
	IsToday        bool
	Events         []api.Event
}

type MonthView struct {
	Days      []Day
	Year      int
	Month     time.Month
	MonthName string
	WeekStart time.Weekday
}

type Options struct {
	// Location is used both to place events on days and to decide "today". Defaults to time.Local.
	Location  *time.Location
	WeekStart time.Weekday
	Clock     utils.Clock
	Locale    format.Locale
}

// BuildMonth lays out a six-week grid around year/month. Events land on the day their dtstart
// falls on in opts.Location; multi-day events appear only on their first day.
func BuildMonth(events []api.Event, year int, month time.Month, opts Options) MonthView {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	clock := opts.Clock
	if clock == nil {
		clock = utils.SystemClock{}
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	// normalizes out-of-range months, e.g. month 13
	year, month = first.Year(), first.Month()
	daysInMonth := first.AddDate(0, 1, -1).Day()
	leading := (int(first.Weekday()) - int(opts.WeekStart) + DaysPerWeek) % DaysPerWeek

	byDay := bucketByDay(events, year, month, loc)
	today := utils.Today(clock, loc)

	days := make([]Day, 0, GridSize)
	for i := leading; i > 0; i-- {
		date := first.AddDate(0, 0, -i)
		days = append(days, Day{Date: date, Day: date.Day(), Events: []api.Event{}})
	}
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, loc)
		dayEvents := byDay[d]
		if dayEvents == nil {
			dayEvents = []api.Event{}
		}
		days = append(days, Day{
			Date:           date,
			Day:            d,
			IsCurrentMonth: true,
			IsToday:        date.Equal(today),
			Events:         dayEvents,
		})
	}
	nextMonth := first.AddDate(0, 1, 0)
	for d := 1; len(days) < GridSize; d++ {
		date := nextMonth.AddDate(0, 0, d-1)
		days = append(days, Day{Date: date, Day: date.Day(), Events: []api.Event{}})
	}

	return MonthView{
		Days:      days,
		Year:      year,
		Month:     month,
		MonthName: format.MonthName(year, month, opts.Locale),
		WeekStart: opts.WeekStart,
	}
}

func bucketByDay(events []api.Event, year int, month time.Month, loc *time.Location) map[int][]api.Event {
	byDay := make(map[int][]api.Event)
	for _, e := range events {
		start, err := format.ParseTimestamp(e.DTStart)
		if err != nil {
			log.Debugf("skipping event %s with unparsable dtstart: %v", e.ID, err)
			continue
		}
		y, m, d := start.In(loc).Date()
		if y != year || m != month {
			continue
		}
		byDay[d] = append(byDay[d], e)
	}
	return byDay
}

// Weeks splits the grid into rows of seven days.
func (v MonthView) Weeks() [][]Day {
	weeks := make([][]Day, 0, Weeks)
	for i := 0; i+DaysPerWeek <= len(v.Days); i += DaysPerWeek {
		weeks = append(weeks, v.Days[i:i+DaysPerWeek])
	}
	return weeks
}

// WeekdayHeaders returns the column weekdays starting at the view's week start.
func (v MonthView) WeekdayHeaders() []time.Weekday {
	headers := make([]time.Weekday, DaysPerWeek)
	for i := range headers {
		headers[i] = time.Weekday((int(v.WeekStart) + i) % DaysPerWeek)
	}
	return headers
}

func (v MonthView) Next() (int, time.Month) {
	if v.Month == time.December {
		return v.Year + 1, time.January
	}
	return v.Year, v.Month + 1
}

func (v MonthView) Prev() (int, time.Month) {
	if v.Month == time.January {
		return v.Year - 1, time.December
	}
	return v.Year, v.Month - 1
}

func (v MonthView) EventCount() int {
	n := 0
	for _, d := range v.Days {
		n += len(d.Events)
	}
	return n
}
