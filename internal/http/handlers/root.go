package handlers

import (
	"net/http"
	"time"

	"github.com/nattawatz/blog-api/internal/http/respond"
)

// RootHandler serves the API liveness banner at the version root.
type RootHandler struct {
	startedAt time.Time
	version   string
}

// NewRootHandler creates the root endpoint handler.
func NewRootHandler(startedAt time.Time, version string) *RootHandler {
	return &RootHandler{startedAt: startedAt, version: version}
}

// Handle responds with basic status information.
func (h *RootHandler) Handle(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{
		"message":   "API is live",
		"status":    "ok",
		"version":   h.version,
		"uptime":    time.Since(h.startedAt).Truncate(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
