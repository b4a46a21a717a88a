package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/staffup/internal/httpapi/middleware"
	"github.com/hamed0406/staffup/internal/repo"
	"github.com/hamed0406/staffup/internal/scheduler"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 256

	// per client IP
	rateLimitPerMin = 120
	rateLimitBurst  = 30
)

// StatusSource is implemented by *scheduler.Poller.
type StatusSource interface {
	Status() scheduler.Status
}

type Server struct {
	Logger   *zap.Logger
	Status   StatusSource
	Alerts   repo.AlertLog
	Gatherer prometheus.Gatherer
	Keys     []string
}

func NewServer(l *zap.Logger, st StatusSource, alerts repo.AlertLog, g prometheus.Gatherer, keys []string) *Server {
	return &Server{Logger: l, Status: st, Alerts: alerts, Gatherer: g, Keys: keys}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-API-Key"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(apimw.RateLimit(rateLimitPerMin, rateLimitBurst))
		r.Use(apimw.RequireKey(s.Keys))
		r.Get("/status", s.handleStatus)
		r.Get("/alerts", s.handleAlerts)
	})
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Status.Status())
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxAlertLimit)
	}

	events, err := s.Alerts.Recent(r.Context(), limit)
	if err != nil {
		s.Logger.Warn("api_alerts_error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read alerts"})
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
