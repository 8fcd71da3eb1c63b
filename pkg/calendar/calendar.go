package calendar

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
)

const DefaultTimezone = "UTC"

var (
	ErrNameRequired    = errors.New("calendar name is required")
	ErrInvalidTimezone = errors.New("unknown timezone")
)

// Card is the view model of one calendar in the list.
type Card struct {
	Calendar api.Calendar
}

func NewCard(c api.Calendar) Card {
	return Card{Calendar: c}
}

func NewCards(calendars []api.Calendar) []Card {
	cards := make([]Card, len(calendars))
	for i, c := range calendars {
		cards[i] = NewCard(c)
	}
	return cards
}

// ShortID is the first eight characters of the id followed by "...".
func (c Card) ShortID() string {
	id := []rune(c.Calendar.ID)
	if len(id) > 8 {
		id = id[:8]
	}
	return string(id) + "..."
}

func (c Card) DescriptionOr(fallback string) string {
	if c.Calendar.Description == "" {
		return fallback
	}
	return c.Calendar.Description
}

// Form is the new-calendar form.
type Form struct {
	Name        string
	Description string
	Timezone    string
}

func NewForm() Form {
	return Form{Timezone: DefaultTimezone}
}

func FormFromValues(values url.Values) Form {
	return Form{
		Name:        strings.TrimSpace(values.Get("name")),
		Description: strings.TrimSpace(values.Get("description")),
		Timezone:    strings.TrimSpace(values.Get("timezone")),
	}
}

func (f Form) Validate() error {
	if f.Name == "" {
		return ErrNameRequired
	}
	if f.Timezone != "" {
		if _, err := time.LoadLocation(f.Timezone); err != nil {
			return ErrInvalidTimezone
		}
	}
	return nil
}

// ToRequest builds the creation request; an empty timezone becomes UTC.
func (f Form) ToRequest() api.CreateCalendarRequest {
	tz := f.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	return api.CreateCalendarRequest{
		Name:        f.Name,
		Description: f.Description,
		Timezone:    tz,
	}
}
