package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/hsn-lookup/internal/hsn"
	"github.com/JakeFAU/hsn-lookup/internal/metrics"
)

// Searcher answers a single lookup.
type Searcher interface {
	Lookup(code string) (hsn.Result, error)
}

// Options toggles optional routes.
type Options struct {
	MetricsEnabled bool
}

// Server wires HTTP handlers to the loaded code table.
type Server struct {
	router   chi.Router
	searcher Searcher
	rows     int
	ready    bool
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes. A nil table is
// allowed; lookups then fail with a server error and /readyz reports 503.
func NewServer(table *hsn.Table, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()

	s := &Server{
		searcher: hsn.NewSearcher(table),
		rows:     table.Len(),
		ready:    table != nil,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	if opts.MetricsEnabled {
		r.Use(metrics.Middleware)
		r.Handle("/metrics", metrics.Handler())
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)

	lookup := corsMiddleware(http.HandlerFunc(s.lookup))
	r.Handle("/", lookup)
	r.Handle("/lookup", lookup)
	// Any other path is served by the lookup handler.
	r.NotFound(lookup.ServeHTTP)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	if !s.ready {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "rows": s.rows})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(s.logger, w, status, payload)
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}
