package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/common"
	"github.com/ternarybob/atlasdash/internal/interfaces"
	"github.com/ternarybob/atlasdash/internal/services/status"
)

// StatusHandler exposes application health and version endpoints.
type StatusHandler struct {
	backend interfaces.BackendClient
	checker *status.Service
	logger  arbor.ILogger
}

// NewStatusHandler creates a status handler. checker may be nil when
// scheduled validation is disabled.
func NewStatusHandler(backend interfaces.BackendClient, checker *status.Service, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		backend: backend,
		checker: checker,
		logger:  logger,
	}
}

// HealthHandler handles GET /api/health: local version plus backend
// reachability.
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	result := map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
	}

	if _, err := h.backend.Health(r.Context()); err != nil {
		result["backend"] = "unreachable"
		h.logger.Debug().Err(err).Msg("Backend health check failed")
	} else {
		result["backend"] = "ok"
	}

	WriteJSON(w, http.StatusOK, result)
}

// VersionHandler handles GET /api/version.
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetFullVersion(),
	})
}

// ConnectionsHandler handles GET /api/connections: the last observed
// connection status per service.
func (h *StatusHandler) ConnectionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if h.checker == nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"connections": []status.ServiceStatus{},
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"connections": h.checker.Statuses(),
	})
}
