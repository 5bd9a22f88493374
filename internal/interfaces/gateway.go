package interfaces

import (
	"context"

	"github.com/ternarybob/atlasdash/internal/models"
)

// BackendClient is the sole module performing outbound HTTP calls to the
// connector backend. Every method returns either a decoded response or one
// of the gateway's two error kinds (status error or transport error), never
// a raw transport exception.
type BackendClient interface {
	// Authentication
	StartOAuth(ctx context.Context, service models.ServiceType) (*models.OAuthStartResponse, error)
	CompleteOAuth(ctx context.Context, service models.ServiceType, req models.OAuthCallbackRequest) (*models.AuthResponse, error)
	LoginWithToken(ctx context.Context, service models.ServiceType, req models.APITokenRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, sessionID string) (*models.AuthResponse, error)

	// Jira
	JiraProjects(ctx context.Context) ([]models.JiraProject, error)
	JiraProject(ctx context.Context, projectKey string) (*models.JiraProject, error)

	// Confluence
	ConfluenceSpaces(ctx context.Context) ([]models.ConfluenceSpace, error)
	ConfluenceSpace(ctx context.Context, spaceKey string) (*models.ConfluenceSpace, error)
	ConfluenceSpaceContent(ctx context.Context, spaceKey string, limit int) ([]models.ConfluenceContent, error)

	// ValidateConnection returns nil iff the backend reports the service
	// connection as healthy.
	ValidateConnection(ctx context.Context, service models.ServiceType) error

	// Health fetches the backend health payload.
	Health(ctx context.Context) (map[string]interface{}, error)
}
