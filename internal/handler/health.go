package handler

import (
	"net/http"

	"github.com/pairchat/dm-core/internal/notify"
	"github.com/pairchat/dm-core/internal/store"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store     *store.Store
	transport *notify.NATSTransport
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(s *store.Store, transport *notify.NATSTransport) *HealthHandler {
	return &HealthHandler{
		store:     s,
		transport: transport,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.store == nil || h.store.Ping(r.Context()) != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "store not reachable",
		})
		return
	}

	if h.transport == nil || !h.transport.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "transport not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
