package event

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	"github.com/recurrence-scheduler/scheduler-web/pkg/format"
	log "github.com/sirupsen/logrus"
)

const productId = "-//scheduler-web//EN"

// ExportICS writes events as an iCalendar feed. Events with an unparsable start are skipped.
func ExportICS(w io.Writer, calendarName string, events []api.Event, now time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productId)
	if calendarName != "" {
		cal.SetXWRCalName(calendarName)
	}

	for _, e := range events {
		start, err := format.ParseTimestamp(e.DTStart)
		if err != nil {
			log.Warnf("skipping event %s in ICS export: %v", e.ID, err)
			continue
		}
		vevent := cal.AddEvent(e.ID)
		vevent.SetDtStampTime(now.UTC())
		vevent.SetStartAt(start.UTC())
		if end, err := format.ParseTimestamp(e.DTEnd); err == nil {
			vevent.SetEndAt(end.UTC())
		}
		if created, err := format.ParseTimestamp(e.CreatedAt); err == nil {
			vevent.SetCreatedTime(created.UTC())
		}
		if updated, err := format.ParseTimestamp(e.UpdatedAt); err == nil {
			vevent.SetModifiedAt(updated.UTC())
		}
		vevent.SetSummary(e.Title)
		if e.Description != "" {
			vevent.SetDescription(e.Description)
		}
		rrule, err := format.RRuleString(e.RRule)
		if err != nil {
			log.Warnf("dropping invalid rule of event %s in ICS export: %v", e.ID, err)
		} else if rrule != "" {
			vevent.SetProperty(ics.ComponentPropertyRrule, rrule)
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

var csvHeader = []string{"id", "calendar_id", "title", "description", "start", "end", "timezone", "recurrence", "rrule"}

// ExportCSV writes one row per event with times formatted for loc.
func ExportCSV(w io.Writer, events []api.Event, loc *time.Location, locale format.Locale) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		log.Errorf("failed to write csv: %v", err)
		return err
	}
	for _, e := range events {
		card := NewCard(e, loc, locale)
		row := []string{
			e.ID,
			e.CalendarID,
			e.Title,
			e.Description,
			card.FormattedStart(),
			card.FormattedEnd(),
			e.Timezone,
			card.RecurrenceText(),
			card.RRuleString(),
		}
		if err := writer.Write(row); err != nil {
			log.Errorf("failed to write csv: %v", err)
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("failed to write csv: %v", err)
		return err
	}
	return nil
}
