package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/atlasdash/internal/models"
)

// ErrStateMismatch is returned when an OAuth callback carries a state token
// that does not match the token stored for the service. The authorization
// code must not be exchanged in that case.
var ErrStateMismatch = errors.New("oauth state mismatch")

// CredentialService manages per-service authentication state.
type CredentialService interface {
	// LoginWithOAuth requests an authorization URL and state token from the
	// backend, persists the token locally, and returns the URL the caller
	// should navigate the browser to.
	LoginWithOAuth(ctx context.Context, service models.ServiceType) (string, error)

	// LoginWithToken validates the credentials client-side and submits them
	// to the backend. Validation failures are returned as field-scoped
	// errors and never reach the network.
	LoginWithToken(ctx context.Context, service models.ServiceType, req models.APITokenRequest) error

	// CompleteOAuthCallback exchanges the authorization code, but only after
	// the returned state matches the stored handshake token for the service.
	// The stored token is deleted after any outcome.
	CompleteOAuthCallback(ctx context.Context, service models.ServiceType, req models.OAuthCallbackRequest) error

	// Logout calls the backend best-effort and resets the credential to its
	// initial unauthenticated shape.
	Logout(ctx context.Context, service models.ServiceType) error

	// SetError records an error message on the credential without dropping
	// the session.
	SetError(service models.ServiceType, message string)

	// ClearError clears the error field without touching other state.
	ClearError(service models.ServiceType)

	// Credential returns a copy of the current credential for a service.
	Credential(service models.ServiceType) models.Credential

	// IsAuthenticated reports whether the service has a live session.
	IsAuthenticated(service models.ServiceType) bool
}

// NotificationService manages the ordered queue of ephemeral user-facing
// messages.
type NotificationService interface {
	Push(n models.Notification) models.Notification
	Remove(id string)
	Clear()
	List() []models.Notification
	Subscribe() chan models.Notification
	Unsubscribe(ch chan models.Notification)
}
