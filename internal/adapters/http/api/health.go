package api

import (
	"context"
	"net/http"
	"time"
)

// readinessTimeout bounds the store ping behind /healthz.
const readinessTimeout = 2 * time.Second

// ReadinessChecker reports whether the backing store is reachable.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checker ReadinessChecker
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(checker ReadinessChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// HandleHealth handles GET /healthz requests. It answers 503 while the store
// does not respond to a ping.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.checker.Ready(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Store: "down"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Store: "up"})
}
