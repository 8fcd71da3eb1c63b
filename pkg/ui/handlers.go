package ui

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/recurrence-scheduler/scheduler-web/internal/rest"
	"github.com/recurrence-scheduler/scheduler-web/internal/session"
	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	"github.com/recurrence-scheduler/scheduler-web/pkg/calendar"
	"github.com/recurrence-scheduler/scheduler-web/pkg/calendar_view"
	"github.com/recurrence-scheduler/scheduler-web/pkg/event"
	"github.com/recurrence-scheduler/scheduler-web/pkg/format"
	log "github.com/sirupsen/logrus"
)

type pageData struct {
	Title       string
	Tab         session.Tab
	Tabs        []session.Tab
	State       session.State
	CSRFField   template.HTML
	Calendars   []calendar.Card
	CalendarErr string
	Events      []event.Card
	EventsErr   string
	Month       *monthData
	Weekdays    []string
	Frequencies []string
}

type monthData struct {
	View      calendar_view.MonthView
	Weeks     [][]calendar_view.Day
	Headers   []time.Weekday
	PrevYear  int
	PrevMonth int
	NextYear  int
	NextMonth int
}

type occurrencesData struct {
	Title       string
	Event       event.Card
	Occurrences []event.Card
	StartDate   string
	EndDate     string
}

var tabs = []session.Tab{session.TabCalendars, session.TabEvents, session.TabCreate, session.TabMonth}

// Index renders the active tab; ?tab= switches it. Calendars are reloaded on every render.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	s, ok := a.currentSession(w, r)
	if !ok {
		return
	}
	if tab, valid := session.ParseTab(r.URL.Query().Get("tab")); valid {
		s.Update(func(st *session.State) { st.Tab = tab })
	}

	var month *monthData
	if s.State(a.clock.Now()).Tab == session.TabMonth {
		year, m := a.monthFromQuery(r.URL.Query())
		month = a.buildMonth(s, year, m)
	}
	a.renderIndex(w, r, s, month)
}

// Month renders the month grid of the loaded events; year and month default to the current month.
func (a *App) Month(w http.ResponseWriter, r *http.Request) {
	s, ok := a.currentSession(w, r)
	if !ok {
		return
	}
	s.Update(func(st *session.State) { st.Tab = session.TabMonth })
	year, m := a.monthFromQuery(r.URL.Query())
	a.renderIndex(w, r, s, a.buildMonth(s, year, m))
}

func (a *App) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	s, ok := a.currentSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := calendar.FormFromValues(r.PostForm)
	s.Update(func(st *session.State) {
		st.Tab = session.TabCreate
		st.CalendarForm = form
	})
	if err := form.Validate(); err != nil {
		a.toast(r.Context(), a.t("toast.calendar_create_failed")+err.Error(), session.ToastError)
		redirect(w, r, session.TabCreate)
		return
	}

	if _, err := s.Calendars.Create(r.Context(), form.ToRequest()); err == nil {
		s.Update(func(st *session.State) { st.CalendarForm = calendar.NewForm() })
	}
	redirect(w, r, session.TabCreate)
}

// LoadEvents loads the selected calendar's events between the start date 00:00 and the end
// date 23:59:59 in the display location.
func (a *App) LoadEvents(w http.ResponseWriter, r *http.Request) {
	s, ok := a.currentSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	calendarId := strings.TrimSpace(r.PostForm.Get("calendar_id"))
	startDate := strings.TrimSpace(r.PostForm.Get("start"))
	endDate := strings.TrimSpace(r.PostForm.Get("end"))
	s.Update(func(st *session.State) {
		st.Tab = session.TabEvents
		st.SelectedCalendarID = calendarId
		if startDate != "" {
			st.StartDate = startDate
		}
		if endDate != "" {
			st.EndDate = endDate
		}
	})

	if calendarId == "" {
		a.toast(r.Context(), a.t("toast.select_calendar"), session.ToastError)
		redirect(w, r, session.TabEvents)
		return
	}
	state := s.State(a.clock.Now())
	start, end, err := format.DayRange(state.StartDate, state.EndDate, a.loc)
	if err != nil {
		log.Debugf("invalid event range: %v", err)
		a.toast(r.Context(), a.t("toast.invalid_range"), session.ToastError)
		redirect(w, r, session.TabEvents)
		return
	}

	_ = s.Events.Load(r.Context(), calendarId, start, end)
	s.Update(func(st *session.State) { st.EventsLoaded = true })
	redirect(w, r, session.TabEvents)
}

func (a *App) CreateEvent(w http.ResponseWriter, r *http.Request) {
	s, ok := a.currentSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := event.FormFromValues(r.PostForm)
	s.Update(func(st *session.State) {
		st.Tab = session.TabCreate
		st.EventForm = form
	})
	req, err := form.ToRequest(a.loc)
	if err != nil {
		a.toast(r.Context(), a.t("toast.event_create_failed")+err.Error(), session.ToastError)
		redirect(w, r, session.TabCreate)
		return
	}

	if _, err := s.Events.Create(r.Context(), req); err == nil {
		s.Update(func(st *session.State) { st.EventForm = event.NewForm() })
	}
	redirect(w, r, session.TabCreate)
}

// Occurrences lists the instances of one event over the session's date range. JSON is returned
// when the client asks for it.
func (a *App) Occurrences(w http.ResponseWriter, r *http.Request) {
	s, ok := a.currentSession(w, r)
	if !ok {
		return
	}
	eventId := mux.Vars(r)["id"]
	state := s.State(a.clock.Now())
	start, end, err := format.DayRange(state.StartDate, state.EndDate, a.loc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	instances, err := s.Events.Occurrences(r.Context(), eventId, start, end)
	wantsJSON := strings.Contains(r.Header.Get("Accept"), "application/json")
	if err != nil {
		if wantsJSON {
			rest.WriteError(w, statusOf(err), "failed to expand recurrence", err.Error())
			return
		}
		a.toast(r.Context(), a.t("toast.occurrences_failed")+err.Error(), session.ToastError)
		redirect(w, r, session.TabEvents)
		return
	}
	if wantsJSON {
		rest.WriteJSON(w, http.StatusOK, map[string][]api.Event{"instances": instances})
		return
	}

	source := api.Event{ID: eventId}
	for _, e := range s.Events.Events() {
		if e.ID == eventId {
			source = e
			break
		}
	}
	a.render(w, "occurrences", occurrencesData{
		Title:       a.t("heading.occurrences"),
		Event:       event.NewCard(source, a.loc, a.locale),
		Occurrences: event.NewCards(instances, a.loc, a.locale),
		StartDate:   state.StartDate,
		EndDate:     state.EndDate,
	})
}

// ExportEvents downloads the loaded events as iCalendar or CSV, chosen by ?format= or Accept.
func (a *App) ExportEvents(w http.ResponseWriter, r *http.Request) {
	s, ok := a.currentSession(w, r)
	if !ok {
		return
	}
	events := s.Events.Events()
	if len(events) == 0 {
		a.toast(r.Context(), a.t("toast.export_empty"), session.ToastError)
		redirect(w, r, session.TabEvents)
		return
	}
	state := s.State(a.clock.Now())
	name := "events"
	if c, found := s.Calendars.GetByID(state.SelectedCalendarID); found {
		name = c.Name
	}

	var buf bytes.Buffer
	switch exportFormat(r) {
	case "csv":
		if err := event.ExportCSV(&buf, events, a.loc, a.locale); err != nil {
			http.Error(w, "failed to export events", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "events.csv"))
	default:
		if err := event.ExportICS(&buf, name, events, a.clock.Now()); err != nil {
			http.Error(w, "failed to export events", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "events.ics"))
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Errorf("failed to write export: %v", err)
	}
}

func exportFormat(r *http.Request) string {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "csv":
		return "csv"
	case "ics":
		return "ics"
	}
	if r.Header.Get("Accept") == "text/csv" {
		return "csv"
	}
	return "ics"
}

func (a *App) renderIndex(w http.ResponseWriter, r *http.Request, s *session.Session, month *monthData) {
	state := s.State(a.clock.Now())
	if refreshCalendars(state) {
		_ = s.Calendars.Load(r.Context())
		state = s.State(a.clock.Now())
	}

	a.render(w, "index", pageData{
		Title:       a.t("title"),
		Tab:         state.Tab,
		Tabs:        tabs,
		State:       state,
		CSRFField:   csrf.TemplateField(r),
		Calendars:   calendar.NewCards(s.Calendars.Calendars()),
		CalendarErr: s.Calendars.Error(),
		Events:      event.NewCards(s.Events.Events(), a.loc, a.locale),
		EventsErr:   s.Events.Error(),
		Month:       month,
		Weekdays:    format.Weekdays,
		Frequencies: event.Frequencies,
	})
}

// refreshCalendars reports whether a render reloads the calendar list: only tabs showing calendars
// do, and not while a toast from the previous post is pending so its outcome stays visible.
func refreshCalendars(state session.State) bool {
	if state.Toast.Text != "" {
		return false
	}
	switch state.Tab {
	case session.TabCalendars, session.TabEvents, session.TabCreate:
		return true
	}
	return false
}

func (a *App) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Errorf("failed to render %s: %v", name, err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Errorf("failed to write %s: %v", name, err)
	}
}

func (a *App) buildMonth(s *session.Session, year int, month time.Month) *monthData {
	view := calendar_view.BuildMonth(s.Events.Events(), year, month, calendar_view.Options{
		Location:  a.loc,
		WeekStart: a.weekStart,
		Clock:     a.clock,
		Locale:    a.locale,
	})
	prevYear, prevMonth := view.Prev()
	nextYear, nextMonth := view.Next()
	return &monthData{
		View:      view,
		Weeks:     view.Weeks(),
		Headers:   view.WeekdayHeaders(),
		PrevYear:  prevYear,
		PrevMonth: int(prevMonth),
		NextYear:  nextYear,
		NextMonth: int(nextMonth),
	}
}

func (a *App) monthFromQuery(q url.Values) (int, time.Month) {
	now := a.clock.Now().In(a.loc)
	year, month := now.Year(), now.Month()
	if y, err := strconv.Atoi(q.Get("year")); err == nil && y > 0 {
		year = y
	}
	if m, err := strconv.Atoi(q.Get("month")); err == nil && m >= 1 && m <= 12 {
		month = time.Month(m)
	}
	return year, month
}

func (a *App) currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := session.Current(r.Context())
	if err != nil {
		log.Errorf("request %s %s without session", r.Method, r.URL.Path)
		http.Error(w, "session required", http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}

// redirect answers a form post with 303 so that reloading the page does not resubmit it.
func redirect(w http.ResponseWriter, r *http.Request, tab session.Tab) {
	http.Redirect(w, r, "/?tab="+string(tab), http.StatusSeeOther)
}

func statusOf(err error) int {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}
