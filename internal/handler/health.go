package handler

import (
	"net/http"

	"github.com/capitalize-ai/assistant-gateway/internal/model"
)

// ReadinessChecker reports whether an optional dependency is usable.
type ReadinessChecker interface {
	IsConnected() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	assistantID string
	events      ReadinessChecker
}

// NewHealthHandler creates a new health handler. events may be nil when
// event publishing is disabled.
func NewHealthHandler(assistantID string, events ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		assistantID: assistantID,
		events:      events,
	}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:      "healthy",
		AssistantID: h.assistantID,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.events != nil && !h.events.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
