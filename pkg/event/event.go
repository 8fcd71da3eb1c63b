package event

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	"github.com/recurrence-scheduler/scheduler-web/pkg/format"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTimezone = "UTC"
	Weekly          = "WEEKLY"
)

// Frequencies offered by the event form.
var Frequencies = []string{"DAILY", Weekly, "MONTHLY", "YEARLY"}

var (
	ErrCalendarRequired = errors.New("calendar is required")
	ErrTitleRequired    = errors.New("title is required")
	ErrInvalidStart     = errors.New("invalid start time")
	ErrInvalidEnd       = errors.New("invalid end time")
	ErrEndBeforeStart   = errors.New("end time is before start time")
	ErrInvalidFrequency = errors.New("invalid frequency")
)

// Card is the view model of one event.
type Card struct {
	Event  api.Event
	loc    *time.Location
	locale format.Locale
}

func NewCard(e api.Event, loc *time.Location, locale format.Locale) Card {
	return Card{Event: e, loc: loc, locale: locale}
}

func NewCards(events []api.Event, loc *time.Location, locale format.Locale) []Card {
	cards := make([]Card, len(events))
	for i, e := range events {
		cards[i] = NewCard(e, loc, locale)
	}
	return cards
}

func (c Card) FormattedStart() string {
	return format.FormatDateTime(c.Event.DTStart, c.loc, c.locale)
}

func (c Card) FormattedEnd() string {
	return format.FormatDateTime(c.Event.DTEnd, c.loc, c.locale)
}

func (c Card) RecurrenceText() string {
	if c.Event.RRule == nil {
		return ""
	}
	return format.FormatRRule(c.Event.RRule, c.locale)
}

func (c Card) HasRecurrence() bool {
	return c.Event.RRule != nil
}

// RRuleString is the RFC 5545 form of the rule, or "" when there is none or it is invalid.
func (c Card) RRuleString() string {
	s, err := format.RRuleString(c.Event.RRule)
	if err != nil {
		log.Debugf("event %s carries an invalid rule: %v", c.Event.ID, err)
		return ""
	}
	return s
}

func (c Card) DescriptionOr(fallback string) string {
	if c.Event.Description == "" {
		return fallback
	}
	return c.Event.Description
}

// Form is the new-event form. DTStart and DTEnd hold datetime-local values ("2006-01-02T15:04")
// and Until a date ("2006-01-02"), all read in the display location.
type Form struct {
	CalendarID  string
	Title       string
	Description string
	DTStart     string
	DTEnd       string
	Timezone    string
	Freq        string
	Interval    int
	Count       int
	Until       string
	ByDay       []string
}

func NewForm() Form {
	return Form{Interval: 1, Timezone: DefaultTimezone}
}

func FormFromValues(values url.Values) Form {
	f := Form{
		CalendarID:  strings.TrimSpace(values.Get("calendar_id")),
		Title:       strings.TrimSpace(values.Get("title")),
		Description: strings.TrimSpace(values.Get("description")),
		DTStart:     strings.TrimSpace(values.Get("dtstart")),
		DTEnd:       strings.TrimSpace(values.Get("dtend")),
		Timezone:    strings.TrimSpace(values.Get("timezone")),
		Freq:        strings.ToUpper(strings.TrimSpace(values.Get("freq"))),
		Until:       strings.TrimSpace(values.Get("until")),
		Interval:    1,
	}
	if n, err := strconv.Atoi(values.Get("interval")); err == nil && n > 0 {
		f.Interval = n
	}
	if n, err := strconv.Atoi(values.Get("count")); err == nil && n > 0 {
		f.Count = n
	}
	for _, d := range values["byday"] {
		d = strings.ToUpper(strings.TrimSpace(d))
		if slices.Contains(format.Weekdays, d) && !slices.Contains(f.ByDay, d) {
			f.ByDay = append(f.ByDay, d)
		}
	}
	f.ToggleByDay()
	return f
}

// ToggleByDay drops the selected weekdays unless the frequency is weekly.
func (f *Form) ToggleByDay() {
	if f.Freq != Weekly {
		f.ByDay = nil
	}
}

// HasDay reports whether the weekday code is selected; used by the form template.
func (f Form) HasDay(code string) bool {
	return slices.Contains(f.ByDay, code)
}

// ToRequest validates the form and converts it, reading local times in loc.
func (f Form) ToRequest(loc *time.Location) (api.CreateEventRequest, error) {
	if loc == nil {
		loc = time.UTC
	}
	if f.CalendarID == "" {
		return api.CreateEventRequest{}, ErrCalendarRequired
	}
	if f.Title == "" {
		return api.CreateEventRequest{}, ErrTitleRequired
	}
	start, err := time.ParseInLocation(format.DateTimeLocalLayout, f.DTStart, loc)
	if err != nil {
		return api.CreateEventRequest{}, fmt.Errorf("%w: %q", ErrInvalidStart, f.DTStart)
	}
	end, err := time.ParseInLocation(format.DateTimeLocalLayout, f.DTEnd, loc)
	if err != nil {
		return api.CreateEventRequest{}, fmt.Errorf("%w: %q", ErrInvalidEnd, f.DTEnd)
	}
	if end.Before(start) {
		return api.CreateEventRequest{}, ErrEndBeforeStart
	}

	rule, err := f.rule(loc)
	if err != nil {
		return api.CreateEventRequest{}, err
	}

	tz := f.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	return api.CreateEventRequest{
		CalendarID:  f.CalendarID,
		Title:       f.Title,
		Description: f.Description,
		DTStart:     start.UTC().Format(time.RFC3339),
		DTEnd:       end.UTC().Format(time.RFC3339),
		RRule:       rule,
		Timezone:    tz,
	}, nil
}

func (f Form) rule(loc *time.Location) (*api.RecurrenceRule, error) {
	if f.Freq == "" {
		return nil, nil
	}
	if !slices.Contains(Frequencies, f.Freq) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFrequency, f.Freq)
	}
	rule := &api.RecurrenceRule{
		Freq:     f.Freq,
		Interval: max(f.Interval, 1),
		Count:    f.Count,
	}
	if f.Freq == Weekly && len(f.ByDay) > 0 {
		rule.ByDay = slices.Clone(f.ByDay)
	}
	if f.Until != "" {
		day, err := time.ParseInLocation(format.DateLayout, f.Until, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid until date %q: %w", f.Until, err)
		}
		endOfDay := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, loc)
		rule.Until = endOfDay.UTC().Format(time.RFC3339)
	}
	if _, err := format.RRuleString(rule); err != nil {
		return nil, err
	}
	return rule, nil
}
