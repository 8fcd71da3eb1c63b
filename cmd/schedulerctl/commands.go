package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/recurrence-scheduler/scheduler-web/internal/config"
	"github.com/recurrence-scheduler/scheduler-web/internal/utils"
	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	"github.com/recurrence-scheduler/scheduler-web/pkg/calendar"
	"github.com/recurrence-scheduler/scheduler-web/pkg/calendar_view"
	"github.com/recurrence-scheduler/scheduler-web/pkg/event"
	"github.com/recurrence-scheduler/scheduler-web/pkg/format"
	"github.com/urfave/cli/v2"
)

var errIdRequired = errors.New("an id argument is required")

// ctl is the state shared by the commands once the global flags are parsed.
type ctl struct {
	clock  utils.Clock
	cfg    config.Application
	client api.Client
	loc    *time.Location
	locale format.Locale
}

func newApp(clock utils.Clock) *cli.App {
	c := &ctl{clock: clock}
	return &cli.App{
		Name:  "schedulerctl",
		Usage: "manage calendars and recurring events of a scheduler backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: config.Path(), Usage: "configuration file"},
			&cli.StringFlag{Name: "api", EnvVars: []string{"SCHEDULER_API_BASEURL"}, Usage: "backend REST root, e.g. http://localhost:8080/api/v1"},
			&cli.StringFlag{Name: "locale", Usage: "ja or en"},
			&cli.StringFlag{Name: "timezone", Usage: "IANA zone used to read and print times"},
		},
		Before: c.setup,
		Commands: []*cli.Command{
			{
				Name:  "calendars",
				Usage: "list, show or create calendars",
				Subcommands: []*cli.Command{
					{Name: "list", Usage: "list calendars", Action: c.listCalendars},
					{Name: "get", Usage: "show one calendar", ArgsUsage: "<id>", Action: c.getCalendar},
					{
						Name:  "create",
						Usage: "create a calendar",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Required: true},
							&cli.StringFlag{Name: "description"},
							&cli.StringFlag{Name: "timezone", Value: calendar.DefaultTimezone},
						},
						Action: c.createCalendar,
					},
				},
			},
			{
				Name:  "events",
				Usage: "list, show, create or expand events",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "list the events of a calendar between two dates",
						Flags:  append([]cli.Flag{&cli.StringFlag{Name: "calendar", Required: true}}, rangeFlags()...),
						Action: c.listEvents,
					},
					{Name: "get", Usage: "show one event", ArgsUsage: "<id>", Action: c.getEvent},
					{
						Name:  "create",
						Usage: "create an event, optionally recurring",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "calendar", Required: true},
							&cli.StringFlag{Name: "title", Required: true},
							&cli.StringFlag{Name: "description"},
							&cli.StringFlag{Name: "start", Required: true, Usage: "local start, 2006-01-02T15:04"},
							&cli.StringFlag{Name: "end", Required: true, Usage: "local end, 2006-01-02T15:04"},
							&cli.StringFlag{Name: "timezone", Value: event.DefaultTimezone},
							&cli.StringFlag{Name: "freq", Usage: strings.Join(event.Frequencies, ", ")},
							&cli.IntFlag{Name: "interval", Value: 1},
							&cli.IntFlag{Name: "count"},
							&cli.StringFlag{Name: "until", Usage: "last day, 2006-01-02"},
							&cli.StringSliceFlag{Name: "byday", Usage: "MO..SU, weekly rules only"},
						},
						Action: c.createEvent,
					},
					{
						Name:      "expand",
						Usage:     "list the occurrences of an event between two dates",
						ArgsUsage: "<id>",
						Flags:     rangeFlags(),
						Action:    c.expandEvent,
					},
				},
			},
			{
				Name:  "month",
				Usage: "print the month grid of a calendar",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "calendar", Required: true},
					&cli.IntFlag{Name: "year"},
					&cli.IntFlag{Name: "month"},
					&cli.BoolFlag{Name: "monday", Usage: "start weeks on Monday"},
				},
				Action: c.month,
			},
		},
	}
}

func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "start", Usage: "first day, 2006-01-02 (default: first day of this month)"},
		&cli.StringFlag{Name: "end", Usage: "last day, 2006-01-02 (default: last day of this month)"},
	}
}

func (c *ctl) setup(cCtx *cli.Context) error {
	cfg, err := config.Load(cCtx.String("config"))
	if err != nil {
		return err
	}
	if cCtx.IsSet("api") {
		cfg.API.BaseURL = strings.TrimRight(cCtx.String("api"), "/")
	}
	if cCtx.IsSet("locale") {
		cfg.UI.Locale = cCtx.String("locale")
	}
	if cCtx.IsSet("timezone") {
		cfg.UI.Timezone = cCtx.String("timezone")
	}
	c.cfg = cfg
	c.loc = cfg.UI.Location()
	c.locale = format.ParseLocale(cfg.UI.Locale)
	c.client = api.NewClient(cfg.API.BaseURL, nil)
	return nil
}

func (c *ctl) listCalendars(cCtx *cli.Context) error {
	resp, err := c.client.ListCalendars(cCtx.Context, c.cfg.UI.CalendarPageSize)
	if err != nil {
		return err
	}
	tw := newTable(cCtx.App.Writer)
	fmt.Fprintln(tw, "ID\tNAME\tTIMEZONE\tDESCRIPTION")
	for _, card := range calendar.NewCards(resp.Calendars) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", card.Calendar.ID, card.Calendar.Name, card.Calendar.Timezone, card.Calendar.Description)
	}
	return tw.Flush()
}

func (c *ctl) getCalendar(cCtx *cli.Context) error {
	id := cCtx.Args().First()
	if id == "" {
		return errIdRequired
	}
	cal, err := c.client.GetCalendar(cCtx.Context, id)
	if err != nil {
		return err
	}
	tw := newTable(cCtx.App.Writer)
	fmt.Fprintf(tw, "ID:\t%s\n", cal.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", cal.Name)
	fmt.Fprintf(tw, "Description:\t%s\n", cal.Description)
	fmt.Fprintf(tw, "Timezone:\t%s\n", cal.Timezone)
	fmt.Fprintf(tw, "Created:\t%s\n", format.FormatDateTime(cal.CreatedAt, c.loc, c.locale))
	return tw.Flush()
}

func (c *ctl) createCalendar(cCtx *cli.Context) error {
	form := calendar.Form{
		Name:        strings.TrimSpace(cCtx.String("name")),
		Description: strings.TrimSpace(cCtx.String("description")),
		Timezone:    strings.TrimSpace(cCtx.String("timezone")),
	}
	if err := form.Validate(); err != nil {
		return err
	}
	created, err := c.client.CreateCalendar(cCtx.Context, form.ToRequest())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cCtx.App.Writer, created.ID)
	return err
}

func (c *ctl) listEvents(cCtx *cli.Context) error {
	start, end, err := c.dayRange(cCtx)
	if err != nil {
		return err
	}
	resp, err := c.client.ListEvents(cCtx.Context, cCtx.String("calendar"), start, end, c.cfg.UI.EventPageSize)
	if err != nil {
		return err
	}
	tw := newTable(cCtx.App.Writer)
	fmt.Fprintln(tw, "ID\tTITLE\tSTART\tEND\tRECURRENCE")
	for _, card := range event.NewCards(resp.Events, c.loc, c.locale) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", card.Event.ID, card.Event.Title, card.FormattedStart(), card.FormattedEnd(), card.RecurrenceText())
	}
	return tw.Flush()
}

func (c *ctl) getEvent(cCtx *cli.Context) error {
	id := cCtx.Args().First()
	if id == "" {
		return errIdRequired
	}
	e, err := c.client.GetEvent(cCtx.Context, id)
	if err != nil {
		return err
	}
	card := event.NewCard(*e, c.loc, c.locale)
	tw := newTable(cCtx.App.Writer)
	fmt.Fprintf(tw, "ID:\t%s\n", e.ID)
	fmt.Fprintf(tw, "Calendar:\t%s\n", e.CalendarID)
	fmt.Fprintf(tw, "Title:\t%s\n", e.Title)
	fmt.Fprintf(tw, "Description:\t%s\n", e.Description)
	fmt.Fprintf(tw, "Start:\t%s\n", card.FormattedStart())
	fmt.Fprintf(tw, "End:\t%s\n", card.FormattedEnd())
	fmt.Fprintf(tw, "Timezone:\t%s\n", e.Timezone)
	if card.HasRecurrence() {
		fmt.Fprintf(tw, "Recurrence:\t%s\n", card.RecurrenceText())
		fmt.Fprintf(tw, "RRULE:\t%s\n", card.RRuleString())
	}
	return tw.Flush()
}

func (c *ctl) createEvent(cCtx *cli.Context) error {
	values := url.Values{
		"calendar_id": {cCtx.String("calendar")},
		"title":       {cCtx.String("title")},
		"description": {cCtx.String("description")},
		"dtstart":     {cCtx.String("start")},
		"dtend":       {cCtx.String("end")},
		"timezone":    {cCtx.String("timezone")},
		"freq":        {cCtx.String("freq")},
		"interval":    {strconv.Itoa(cCtx.Int("interval"))},
		"count":       {strconv.Itoa(cCtx.Int("count"))},
		"until":       {cCtx.String("until")},
		"byday":       cCtx.StringSlice("byday"),
	}
	req, err := event.FormFromValues(values).ToRequest(c.loc)
	if err != nil {
		return err
	}
	created, err := c.client.CreateEvent(cCtx.Context, req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cCtx.App.Writer, created.ID)
	return err
}

func (c *ctl) expandEvent(cCtx *cli.Context) error {
	id := cCtx.Args().First()
	if id == "" {
		return errIdRequired
	}
	start, end, err := c.dayRange(cCtx)
	if err != nil {
		return err
	}
	instances, err := c.client.ExpandRecurrence(cCtx.Context, id, start, end)
	if err != nil {
		return err
	}
	tw := newTable(cCtx.App.Writer)
	fmt.Fprintln(tw, "START\tEND")
	for _, card := range event.NewCards(instances, c.loc, c.locale) {
		fmt.Fprintf(tw, "%s\t%s\n", card.FormattedStart(), card.FormattedEnd())
	}
	return tw.Flush()
}

func (c *ctl) month(cCtx *cli.Context) error {
	now := c.clock.Now().In(c.loc)
	year, month := now.Year(), now.Month()
	if y := cCtx.Int("year"); y > 0 {
		year = y
	}
	if m := cCtx.Int("month"); m >= 1 && m <= 12 {
		month = time.Month(m)
	}
	weekStart := c.cfg.UI.FirstWeekday()
	if cCtx.Bool("monday") {
		weekStart = time.Monday
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, c.loc)
	start, end, err := format.DayRange(first.Format(format.DateLayout), first.AddDate(0, 1, -1).Format(format.DateLayout), c.loc)
	if err != nil {
		return err
	}
	resp, err := c.client.ListEvents(cCtx.Context, cCtx.String("calendar"), start, end, c.cfg.UI.EventPageSize)
	if err != nil {
		return err
	}

	view := calendar_view.BuildMonth(resp.Events, year, month, calendar_view.Options{
		Location:  c.loc,
		WeekStart: weekStart,
		Clock:     c.clock,
		Locale:    c.locale,
	})
	return printMonth(cCtx.App.Writer, view, c.loc, c.locale)
}

// printMonth writes the grid with today in brackets and a "*" on days with events, followed by
// the events of each day.
func printMonth(w io.Writer, view calendar_view.MonthView, loc *time.Location, locale format.Locale) error {
	var b strings.Builder
	b.WriteString(view.MonthName + "\n")
	for _, d := range view.WeekdayHeaders() {
		fmt.Fprintf(&b, "%5s", format.WeekdayLabel(d, locale))
	}
	b.WriteString("\n")
	for _, week := range view.Weeks() {
		for _, day := range week {
			b.WriteString(dayCell(day))
		}
		b.WriteString("\n")
	}
	for _, day := range view.Days {
		if !day.IsCurrentMonth {
			continue
		}
		for _, e := range day.Events {
			fmt.Fprintf(&b, "%2d  %s  %s\n", day.Day, format.FormatDateTime(e.DTStart, loc, locale), e.Title)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func dayCell(day calendar_view.Day) string {
	if !day.IsCurrentMonth {
		return "     "
	}
	mark := " "
	if len(day.Events) > 0 {
		mark = "*"
	}
	if day.IsToday {
		return fmt.Sprintf("[%2d]%s", day.Day, mark)
	}
	return fmt.Sprintf(" %2d %s", day.Day, mark)
}

func (c *ctl) dayRange(cCtx *cli.Context) (string, string, error) {
	defStart, defEnd := format.DefaultDateRange(c.clock.Now().In(c.loc))
	startDate, endDate := cCtx.String("start"), cCtx.String("end")
	if startDate == "" {
		startDate = defStart
	}
	if endDate == "" {
		endDate = defEnd
	}
	return format.DayRange(startDate, endDate, c.loc)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
