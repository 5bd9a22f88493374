package oauth

import (
	"context"
	"net/url"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/interfaces"
	"github.com/ternarybob/atlasdash/internal/models"
)

// Coordinator routes OAuth redirect callbacks to the credential service.
// Atlassian redirects all services to a single callback URL, so the owning
// service is identified by matching the returned state token against the
// stored handshake tokens.
type Coordinator struct {
	credentials interfaces.CredentialService
	handshakes  interfaces.HandshakeStorage
	logger      arbor.ILogger
}

// NewCoordinator creates the callback coordinator.
func NewCoordinator(credentials interfaces.CredentialService, handshakes interfaces.HandshakeStorage, logger arbor.ILogger) *Coordinator {
	return &Coordinator{
		credentials: credentials,
		handshakes:  handshakes,
		logger:      logger,
	}
}

// Begin starts the OAuth flow for a service and returns the authorization
// URL to open in the browser.
func (c *Coordinator) Begin(ctx context.Context, service models.ServiceType) (string, error) {
	return c.credentials.LoginWithOAuth(ctx, service)
}

// HandleCallback inspects redirect query parameters and, when they carry an
// authorization code whose state matches a stored handshake, dispatches the
// exchange exactly once. Callbacks that match no stored token are ignored;
// a stale redirect for one service must never disturb another.
func (c *Coordinator) HandleCallback(ctx context.Context, params url.Values) (models.ServiceType, bool, error) {
	code := params.Get("code")
	state := params.Get("state")
	if code == "" || state == "" {
		return "", false, nil
	}

	for _, service := range models.KnownServices() {
		handshake, err := c.handshakes.Get(ctx, service)
		if err == interfaces.ErrHandshakeNotFound {
			continue
		}
		if err != nil {
			return "", false, err
		}
		if handshake.StateToken != state {
			continue
		}

		c.logger.Info().Str("service", service.String()).Msg("OAuth callback matched")
		err = c.credentials.CompleteOAuthCallback(ctx, service, models.OAuthCallbackRequest{
			Code:  code,
			State: state,
		})
		return service, true, err
	}

	c.logger.Warn().Msg("OAuth callback matched no pending sign-in, ignoring")
	return "", false, nil
}

// CleanRedirectURL strips OAuth parameters from a redirect URL so handled
// callbacks are not replayed. Other query parameters are preserved.
func CleanRedirectURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	for _, param := range []string{"code", "state", "error", "error_description"} {
		q.Del(param)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
