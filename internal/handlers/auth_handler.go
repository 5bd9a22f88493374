package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/interfaces"
	"github.com/ternarybob/atlasdash/internal/models"
	"github.com/ternarybob/atlasdash/internal/services/oauth"
)

// DatasetResetter clears a service's fetched data.
type DatasetResetter interface {
	Reset()
}

// AuthHandler exposes the per-service authentication operations.
type AuthHandler struct {
	credentials interfaces.CredentialService
	coordinator *oauth.Coordinator
	datasets    map[models.ServiceType]DatasetResetter
	logger      arbor.ILogger
}

// NewAuthHandler creates an auth handler. datasets maps each service to the
// dataset that is cleared on logout; missing entries are skipped.
func NewAuthHandler(credentials interfaces.CredentialService, coordinator *oauth.Coordinator, datasets map[models.ServiceType]DatasetResetter, logger arbor.ILogger) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		coordinator: coordinator,
		datasets:    datasets,
		logger:      logger,
	}
}

// ServeAuthRoutes dispatches /api/auth/{service}/{action} requests.
func (h *AuthHandler) ServeAuthRoutes(w http.ResponseWriter, r *http.Request) {
	// Path shapes: /api/auth/{service}/{action} and /api/auth/{service}/oauth/start
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 4 || len(parts) > 5 {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	service := models.ServiceType(parts[2])
	if !service.Valid() {
		WriteError(w, http.StatusNotFound, "Unknown service: "+parts[2])
		return
	}

	if len(parts) == 5 {
		if parts[3] == "oauth" && parts[4] == "start" {
			h.startOAuth(w, r, service)
			return
		}
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	switch parts[3] {
	case "login":
		h.loginWithToken(w, r, service)
	case "logout":
		h.logout(w, r, service)
	case "clear-error":
		h.clearError(w, r, service)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// loginWithToken handles POST /api/auth/{service}/login with api-token
// credentials in the body.
func (h *AuthHandler) loginWithToken(w http.ResponseWriter, r *http.Request, service models.ServiceType) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.APITokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.credentials.LoginWithToken(r.Context(), service, req); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, h.credentials.Credential(service))
}

// startOAuth handles POST /api/auth/{service}/oauth/start and returns the
// authorization URL to navigate to.
func (h *AuthHandler) startOAuth(w http.ResponseWriter, r *http.Request, service models.ServiceType) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	authURL, err := h.coordinator.Begin(r.Context(), service)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"auth_url": authURL,
	})
}

// logout handles POST /api/auth/{service}/logout.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request, service models.ServiceType) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := h.credentials.Logout(r.Context(), service); err != nil {
		WriteServiceError(w, err)
		return
	}

	if dataset := h.datasets[service]; dataset != nil {
		dataset.Reset()
	}

	WriteJSON(w, http.StatusOK, h.credentials.Credential(service))
}

// clearError handles POST /api/auth/{service}/clear-error.
func (h *AuthHandler) clearError(w http.ResponseWriter, r *http.Request, service models.ServiceType) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	h.credentials.ClearError(service)
	WriteJSON(w, http.StatusOK, h.credentials.Credential(service))
}

// HandleOAuthCallback handles GET /auth/callback, the browser redirect from
// the authorization server. The owning service is identified by state token
// match; unmatched callbacks are ignored and the browser is sent back to the
// dashboard either way, with the OAuth parameters stripped.
func (h *AuthHandler) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	params := r.URL.Query()
	if errParam := params.Get("error"); errParam != "" {
		h.logger.Warn().
			Str("error", errParam).
			Str("description", params.Get("error_description")).
			Msg("OAuth callback returned an error")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	service, matched, err := h.coordinator.HandleCallback(r.Context(), params)
	if err != nil {
		h.logger.Warn().Err(err).Str("service", service.String()).Msg("OAuth callback failed")
	} else if matched {
		h.logger.Info().Str("service", service.String()).Msg("OAuth callback completed")
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// GetAuthStatusHandler handles GET /api/status and returns the credential
// snapshot for every service.
func (h *AuthHandler) GetAuthStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	credentials := make([]models.Credential, 0, len(models.KnownServices()))
	for _, service := range models.KnownServices() {
		credentials = append(credentials, h.credentials.Credential(service))
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"credentials": credentials,
	})
}
