// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/bookpop/internal/adapters/repository"
	"github.com/okian/bookpop/internal/domain/scoring"
	"github.com/okian/bookpop/internal/domain/types"
	"github.com/okian/bookpop/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TopDependencies
	RecommendDependencies
	BookDependencies
	StatsProvider
	Reloader
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = types.Entry

// Stats mirrors the shape returned by GET /api/stats.
type Stats = types.Stats

// Limits bounds the number of rows a request may ask for.
type Limits struct {
	Default int
	Min     int
	Max     int
}

// Server wires HTTP routes for the business API.
type Server struct {
	limits Limits
	logger logger.Logger

	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	topHandler       *TopHandler
	recommendHandler *RecommendHandler
	bookHandler      *BookHandler
	reloadHandler    *ReloadHandler
	dashboardHandler *dashboardHandler
}

// Option configures a Server.
type Option func(*Server)

// WithLimits sets the default, minimum and maximum row counts.
func WithLimits(l Limits) Option {
	return func(s *Server) {
		if l.Min >= 1 && l.Max >= l.Min && l.Default >= l.Min && l.Default <= l.Max {
			s.limits = l
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		limits: Limits{Default: 20, Min: 5, Max: 50},
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.topHandler = NewTopHandler(deps, s.limits)
	s.recommendHandler = NewRecommendHandler(deps, s.limits)
	s.bookHandler = NewBookHandler(deps)
	s.reloadHandler = NewReloadHandler(deps, s.logger)
	s.dashboardHandler = newDashboardHandler(s.limits)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/api/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/top", MetricsMiddleware(s.topHandler.HandleGetTop, "top"))
	mux.HandleFunc("/api/recommend", MetricsMiddleware(s.recommendHandler.HandleGetRecommend, "recommend"))
	mux.HandleFunc("/api/books/", MetricsMiddleware(s.bookHandler.HandleGetBook, "books"))
	mux.HandleFunc("/api/reload", MetricsMiddleware(s.reloadHandler.HandleReload, "reload"))
	mux.HandleFunc("/", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeQueryError translates errors from the ranking layer to a status code.
func writeQueryError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "not_ready", WrapKind(op, ErrNotReady, err))
	case errors.Is(err, scoring.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, scoring.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

// parseLimit reads ?limit=N. A missing value yields the default; anything
// outside 1..Max is a bad request.
func parseLimit(r *http.Request, l Limits) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return l.Default, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	if n < 1 || n > l.Max {
		return 0, errors.New("limit must be between 1 and " + strconv.Itoa(l.Max))
	}
	return n, nil
}
