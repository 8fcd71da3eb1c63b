package app

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/recurrence-scheduler/scheduler-web/internal/config"
	"github.com/recurrence-scheduler/scheduler-web/internal/rest"
	log "github.com/sirupsen/logrus"
)

// RegisterRoutes registers all endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Health
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// Backend API
	if cfg.Proxy.Enabled {
		proxy, err := backendProxy(cfg.API.BaseURL)
		if err != nil {
			log.Errorf("backend proxy disabled: %v", err)
		} else {
			r.PathPrefix("/api/v1/").Handler(withCORS(proxy))
		}
	}

	// UI
	ui := r.PathPrefix("/").Subrouter()
	SetupUIMiddleware(ui, deps, cfg)
	ui.HandleFunc("/", deps.UI.Index).Methods("GET")
	ui.HandleFunc("/month", deps.UI.Month).Methods("GET")
	ui.HandleFunc("/calendars", deps.UI.CreateCalendar).Methods("POST")
	ui.HandleFunc("/events/load", deps.UI.LoadEvents).Methods("POST")
	ui.HandleFunc("/events", deps.UI.CreateEvent).Methods("POST")
	ui.HandleFunc("/events/export", deps.UI.ExportEvents).Methods("GET")
	ui.HandleFunc("/events/{id}/occurrences", deps.UI.Occurrences).Methods("GET")
}

// backendProxy forwards requests unchanged to the host of baseURL.
func backendProxy(baseURL string) (http.Handler, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	target := &url.URL{Scheme: u.Scheme, Host: u.Host}
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Errorf("backend request %s %s failed: %v", r.Method, r.URL.Path, err)
			rest.WriteError(w, http.StatusBadGateway, "backend unavailable", err.Error())
		},
	}, nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
