// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/nameprop/internal/domain/dedupe"
	"github.com/okian/nameprop/internal/domain/model"
	"github.com/okian/nameprop/internal/domain/types"
)

const defaultMaxLimit = 100

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Submit stores a session and queues its evaluation. It fails with
	// queue.ErrFull on backpressure.
	Submit(ctx context.Context, sess model.Session) (model.Job, error)

	// Read operations expose accumulated results.
	Result(ctx context.Context, condition, pipeline string) (Result, error)
	Results(ctx context.Context, condition string, limit int) ([]Result, error)
}

// Result mirrors the read shape returned by result queries.
type Result = types.Result

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionsHandler *SessionsHandler
	resultsHandler  *ResultsHandler
}

// NewServer creates a new API server with all handlers. maxLimit bounds the
// limit query parameter of result listings.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	if maxLimit < 1 {
		maxLimit = defaultMaxLimit
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sessionsHandler: NewSessionsHandler(deps),
		resultsHandler:  NewResultsHandler(deps, maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionsHandler.HandlePostSession, "sessions"))
	mux.HandleFunc("GET /results", MetricsMiddleware(s.resultsHandler.HandleListResults, "results"))
	mux.HandleFunc("GET /results/{condition}/{pipeline}", MetricsMiddleware(s.resultsHandler.HandleGetResult, "result"))
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
