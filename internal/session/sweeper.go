package session

import (
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Sweeper runs Manager.Sweep on a cron schedule such as "@every 10m".
type Sweeper struct {
	cron    *cron.Cron
	manager *Manager
}

func NewSweeper(manager *Manager, schedule string) (*Sweeper, error) {
	c := cron.New()
	s := &Sweeper{cron: c, manager: manager}
	if _, err := c.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("add session sweep %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) sweep() {
	s.manager.Sweep()
}

func (s *Sweeper) Start() {
	s.cron.Start()
	log.Infof("Session sweeper started")
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Infof("Session sweeper stopped")
}
