// Package handlers contains the plain HTTP handlers.
package handlers

import "net/http"

// HealthHandler answers liveness probes on the root path.
type HealthHandler struct{}

// NewHealthHandler is the constructor, wired in main.go.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Handle writes a trivial textual response.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("bubchat server running"))
}
