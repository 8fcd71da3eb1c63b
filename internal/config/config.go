package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const DefaultPath = "./config/application.yaml"

type Application struct {
	Listen  string  `koanf:"listen"`
	API     API     `koanf:"api"`
	UI      UI      `koanf:"ui"`
	Proxy   Proxy   `koanf:"proxy"`
	Session Session `koanf:"session"`
	CSRF    CSRF    `koanf:"csrf"`
}

// API points at the scheduler backend REST root, e.g. http://localhost:8080/api/v1.
type API struct {
	BaseURL string `koanf:"baseurl"`
}

type UI struct {
	// Locale selects labels and date formats: "ja" or "en".
	Locale string `koanf:"locale"`
	// Timezone is the IANA zone used to display times and to interpret form input.
	Timezone string `koanf:"timezone"`
	// WeekStart is "sunday" or "monday".
	WeekStart        string        `koanf:"weekstart"`
	ToastDuration    time.Duration `koanf:"toastduration"`
	CalendarPageSize int           `koanf:"calendarpagesize"`
	EventPageSize    int           `koanf:"eventpagesize"`
}

type Proxy struct {
	Enabled bool `koanf:"enabled"`
}

type Session struct {
	CookieName    string        `koanf:"cookiename"`
	IdleTimeout   time.Duration `koanf:"idletimeout"`
	SweepSchedule string        `koanf:"sweepschedule"`
}

type CSRF struct {
	// AuthKey must be 32 bytes; a random key is generated at startup when empty.
	AuthKey string `koanf:"authkey"`
	Secure  bool   `koanf:"secure"`
}

func Defaults() Application {
	return Application{
		Listen: ":3000",
		API: API{
			BaseURL: "http://localhost:8080/api/v1",
		},
		UI: UI{
			Locale:           "ja",
			Timezone:         "UTC",
			WeekStart:        "sunday",
			ToastDuration:    3 * time.Second,
			CalendarPageSize: 100,
			EventPageSize:    50,
		},
		Proxy: Proxy{
			Enabled: true,
		},
		Session: Session{
			CookieName:    "scheduler_session",
			IdleTimeout:   2 * time.Hour,
			SweepSchedule: "@every 10m",
		},
	}
}

// Path returns the config file location, honouring SCHEDULER_CONFIG.
func Path() string {
	if p := os.Getenv("SCHEDULER_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "SCHEDULER_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "SCHEDULER_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}
	app.normalize()

	return app, nil
}

func (a *Application) normalize() {
	d := Defaults()
	if a.Listen == "" {
		a.Listen = d.Listen
	}
	a.API.BaseURL = strings.TrimRight(a.API.BaseURL, "/")
	if a.API.BaseURL == "" {
		a.API.BaseURL = d.API.BaseURL
	}
	switch a.UI.Locale {
	case "ja", "en":
	default:
		log.Warnf("unknown ui.locale %q, falling back to %s", a.UI.Locale, d.UI.Locale)
		a.UI.Locale = d.UI.Locale
	}
	switch strings.ToLower(a.UI.WeekStart) {
	case "sunday", "monday":
		a.UI.WeekStart = strings.ToLower(a.UI.WeekStart)
	default:
		a.UI.WeekStart = d.UI.WeekStart
	}
	if a.UI.Timezone == "" {
		a.UI.Timezone = d.UI.Timezone
	}
	if a.UI.ToastDuration <= 0 {
		a.UI.ToastDuration = d.UI.ToastDuration
	}
	if a.UI.CalendarPageSize <= 0 {
		a.UI.CalendarPageSize = d.UI.CalendarPageSize
	}
	if a.UI.EventPageSize <= 0 {
		a.UI.EventPageSize = d.UI.EventPageSize
	}
	if a.Session.CookieName == "" {
		a.Session.CookieName = d.Session.CookieName
	}
	if a.Session.IdleTimeout <= 0 {
		a.Session.IdleTimeout = d.Session.IdleTimeout
	}
	if a.Session.SweepSchedule == "" {
		a.Session.SweepSchedule = d.Session.SweepSchedule
	}
}

// Location resolves UI.Timezone, falling back to UTC.
func (u UI) Location() *time.Location {
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		log.Errorf("failed to load timezone %q, using UTC: %v", u.Timezone, err)
		return time.UTC
	}
	return loc
}

func (u UI) FirstWeekday() time.Weekday {
	if u.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}
