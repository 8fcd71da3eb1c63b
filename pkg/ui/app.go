package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/recurrence-scheduler/scheduler-web/internal/config"
	"github.com/recurrence-scheduler/scheduler-web/internal/event_bus"
	"github.com/recurrence-scheduler/scheduler-web/internal/session"
	"github.com/recurrence-scheduler/scheduler-web/internal/utils"
	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	"github.com/recurrence-scheduler/scheduler-web/pkg/calendar"
	"github.com/recurrence-scheduler/scheduler-web/pkg/event"
	"github.com/recurrence-scheduler/scheduler-web/pkg/format"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

// App is the root UI object: it owns rendering, builds per-session state and turns store
// outcomes into toasts.
type App struct {
	cfg       config.UI
	client    api.Client
	bus       *event_bus.EventBus
	clock     utils.Clock
	loc       *time.Location
	weekStart time.Weekday
	locale    format.Locale
	templates *template.Template
	unsub     []func()
}

func NewApp(cfg config.UI, client api.Client, bus *event_bus.EventBus, clock utils.Clock) (*App, error) {
	a := &App{
		cfg:       cfg,
		client:    client,
		bus:       bus,
		clock:     clock,
		loc:       cfg.Location(),
		weekStart: cfg.FirstWeekday(),
		locale:    format.ParseLocale(cfg.Locale),
	}

	tmpl, err := template.New("ui").Funcs(a.funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	a.templates = tmpl
	a.subscribe()
	return a, nil
}

// NewSession is the session.Factory of the UI: empty stores, calendars tab, the current month
// as the event range.
func (a *App) NewSession(id string) *session.Session {
	start, end := format.DefaultDateRange(a.clock.Now().In(a.loc))
	return session.New(id,
		calendar.NewStore(a.client, a.bus, a.cfg.CalendarPageSize),
		event.NewStore(a.client, a.bus, a.cfg.EventPageSize),
		session.State{
			Tab:          session.TabCalendars,
			StartDate:    start,
			EndDate:      end,
			CalendarForm: calendar.NewForm(),
			EventForm:    event.NewForm(),
		})
}

// Close drops the bus subscriptions.
func (a *App) Close() {
	for _, unsub := range a.unsub {
		unsub()
	}
	a.unsub = nil
}

func (a *App) t(key string) string {
	return message(a.locale, key)
}

func (a *App) funcs() template.FuncMap {
	return template.FuncMap{
		"t": a.t,
		"dayLabel": func(code string) string {
			return format.DayLabel(code, a.locale)
		},
		"weekdayLabel": func(d time.Weekday) string {
			return format.WeekdayLabel(d, a.locale)
		},
		"formatDateTime": func(iso string) string {
			return format.FormatDateTime(iso, a.loc, a.locale)
		},
	}
}

func (a *App) subscribe() {
	toastOnSuccess := func(eventType event_bus.EventType, key string) {
		a.unsub = append(a.unsub, a.bus.Subscribe(eventType, func(e event_bus.Event) error {
			a.toast(e.Context(), a.t(key), session.ToastSuccess)
			return nil
		}))
	}
	toastOnFailure := func(eventType event_bus.EventType, key string, withMessage bool) {
		a.unsub = append(a.unsub, event_bus.SubscribeTyped(a.bus, eventType,
			func(e event_bus.EventT[event_bus.OperationFailed]) error {
				text := a.t(key)
				if withMessage {
					text += e.Data.Message
				}
				a.toast(e.Context(), text, session.ToastError)
				return nil
			}))
	}

	toastOnSuccess(event_bus.CalendarCreatedType, "toast.calendar_created")
	toastOnSuccess(event_bus.EventCreatedType, "toast.event_created")
	toastOnFailure(event_bus.CalendarsLoadFailedType, "toast.calendars_load_failed", false)
	toastOnFailure(event_bus.CalendarCreateFailedType, "toast.calendar_create_failed", true)
	toastOnFailure(event_bus.EventsLoadFailedType, "toast.events_load_failed", false)
	toastOnFailure(event_bus.EventCreateFailedType, "toast.event_create_failed", true)
}

func (a *App) toast(ctx context.Context, text string, kind session.ToastKind) {
	s, err := session.Current(ctx)
	if err != nil {
		log.Tracef("no session in context, toast %q dropped", text)
		return
	}
	s.ShowToast(text, kind, a.clock.Now(), a.cfg.ToastDuration)
}
