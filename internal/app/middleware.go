package app

import (
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/recurrence-scheduler/scheduler-web/internal/config"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires the middlewares shared by every route.
func SetupMiddleware(r *mux.Router) {
	r.Use(requestLogger)
}

// SetupUIMiddleware protects the form posts of the UI and attaches the browser session.
func SetupUIMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {
	if !cfg.CSRF.Secure {
		// Without TLS there is no Referer to check against.
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, csrf.PlaintextHTTPRequest(req))
			})
		})
	}
	r.Use(csrf.Protect(deps.CSRFKey,
		csrf.Secure(cfg.CSRF.Secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailed)),
	))
	r.Use(deps.Sessions.Middleware)
}

func csrfFailed(w http.ResponseWriter, r *http.Request) {
	log.Warnf("csrf check failed for %s %s: %v", r.Method, r.URL.Path, csrf.FailureReason(r))
	http.Error(w, "invalid or missing form token, reload the page and try again", http.StatusForbidden)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		log.WithFields(log.Fields{
			"method":   req.Method,
			"path":     req.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Debug("request served")
	})
}
