// Package site serves the service landing route.
package site

import (
	"context"
	"net/http"
)

// Greeting is the body of GET /.
const Greeting = "Hello from lotus-ledger! Games live under /games.\n"

// Register attaches the root route to mux. Only the exact path "/" matches;
// any other unknown path falls through to the mux's 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /{$}", NewRootHandler().HandleRoot)
}

// RootHandler handles root path requests
type RootHandler struct{}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / requests with a static greeting.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(Greeting))
}
