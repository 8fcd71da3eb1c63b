package app

import (
	"crypto/rand"
	"fmt"

	"github.com/recurrence-scheduler/scheduler-web/internal/config"
	"github.com/recurrence-scheduler/scheduler-web/internal/event_bus"
	"github.com/recurrence-scheduler/scheduler-web/internal/session"
	"github.com/recurrence-scheduler/scheduler-web/internal/utils"
	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	"github.com/recurrence-scheduler/scheduler-web/pkg/ui"
	log "github.com/sirupsen/logrus"
)

const csrfKeyLength = 32

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	Client api.Client
	UI     *ui.App

	Sessions *session.Manager
	Sweeper  *session.Sweeper

	CSRFKey []byte
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(cfg config.Application) (*Dependencies, error) {
	return buildDependencies(cfg, api.NewClient(cfg.API.BaseURL, nil))
}

func buildDependencies(cfg config.Application, client api.Client) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()
	deps.Client = client

	uiApp, err := ui.NewApp(cfg.UI, deps.Client, deps.EventBus, deps.Clock)
	if err != nil {
		return nil, err
	}
	deps.UI = uiApp

	deps.Sessions = session.NewManager(cfg.Session, deps.Clock, deps.UI.NewSession)
	deps.Sweeper, err = session.NewSweeper(deps.Sessions, cfg.Session.SweepSchedule)
	if err != nil {
		return nil, err
	}

	deps.CSRFKey, err = csrfKey(cfg.CSRF)
	if err != nil {
		return nil, err
	}
	return deps, nil
}

// Close stops the background jobs and drops the UI's bus subscriptions.
func (d *Dependencies) Close() {
	d.Sweeper.Stop()
	d.UI.Close()
}

func csrfKey(cfg config.CSRF) ([]byte, error) {
	if cfg.AuthKey == "" {
		key := make([]byte, csrfKeyLength)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate csrf key: %w", err)
		}
		log.Warn("csrf.authkey is not set, generated a random key; forms will not survive a restart")
		return key, nil
	}
	if len(cfg.AuthKey) != csrfKeyLength {
		return nil, fmt.Errorf("csrf.authkey must be %d bytes, got %d", csrfKeyLength, len(cfg.AuthKey))
	}
	return []byte(cfg.AuthKey), nil
}
