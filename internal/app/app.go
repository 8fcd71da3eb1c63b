package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/recurrence-scheduler/scheduler-web/internal/config"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, dependencies, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	deps   *Dependencies
	router *mux.Router
	srv    *http.Server
}

// NewApplication loads the configuration and constructs the HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return nil, err
	}
	return newApplication(cfg)
}

func newApplication(cfg config.Application) (*Application, error) {
	deps, err := BuildDependencies(cfg)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Middleware chain
	SetupMiddleware(r)

	// Routes
	RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, router: r, srv: srv}, nil
}

// Run starts the session sweeper and the HTTP server and blocks until ctx is cancelled or the
// server fails.
func (a *Application) Run(ctx context.Context) error {
	a.deps.Sweeper.Start()
	defer a.deps.Close()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s (backend %s)", a.srv.Addr, a.cfg.API.BaseURL)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.srv.Shutdown(shutdownCtx)
}
