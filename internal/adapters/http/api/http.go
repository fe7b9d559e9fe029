// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/lotus-ledger/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	GameDependencies
	ReadinessChecker
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	gamesHandler  *GamesHandler
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		gamesHandler:  NewGamesHandler(deps),
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /games", MetricsMiddleware(s.gamesHandler.HandleList, "games"))
	mux.HandleFunc("POST /games", MetricsMiddleware(s.gamesHandler.HandleCreate, "games"))
	mux.HandleFunc("GET /games/{id}", MetricsMiddleware(s.gamesHandler.HandleGet, "game"))
	mux.HandleFunc("PUT /games/{id}", MetricsMiddleware(s.gamesHandler.HandleUpdate, "game"))
	mux.HandleFunc("DELETE /games/{id}", MetricsMiddleware(s.gamesHandler.HandleDelete, "game"))

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
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
