package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ternarybob/atlasdash/internal/models"
)

// StartOAuth requests an authorization URL and one-time state token.
func (c *Client) StartOAuth(ctx context.Context, service models.ServiceType) (*models.OAuthStartResponse, error) {
	var result models.OAuthStartResponse
	path := fmt.Sprintf("/auth/%s/oauth/start", service)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CompleteOAuth exchanges an authorization code for a session.
func (c *Client) CompleteOAuth(ctx context.Context, service models.ServiceType, req models.OAuthCallbackRequest) (*models.AuthResponse, error) {
	var result models.AuthResponse
	path := fmt.Sprintf("/auth/%s/oauth/callback", service)
	if err := c.doRequest(ctx, http.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LoginWithToken authenticates with domain/email/API-token credentials.
func (c *Client) LoginWithToken(ctx context.Context, service models.ServiceType, req models.APITokenRequest) (*models.AuthResponse, error) {
	var result models.AuthResponse
	path := fmt.Sprintf("/auth/%s/api-token", service)
	if err := c.doRequest(ctx, http.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout terminates the backend session. The session ID is optional.
func (c *Client) Logout(ctx context.Context, sessionID string) (*models.AuthResponse, error) {
	path := "/auth/logout"
	if sessionID != "" {
		path += "?session_id=" + url.QueryEscape(sessionID)
	}

	var result models.AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// JiraProjects fetches all projects visible to the linked Jira account.
func (c *Client) JiraProjects(ctx context.Context) ([]models.JiraProject, error) {
	var result []models.JiraProject
	if err := c.doRequest(ctx, http.MethodGet, "/jira/projects", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// JiraProject fetches one project by key.
func (c *Client) JiraProject(ctx context.Context, projectKey string) (*models.JiraProject, error) {
	var result models.JiraProject
	path := "/jira/projects/" + url.PathEscape(projectKey)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ConfluenceSpaces fetches all spaces visible to the linked Confluence account.
func (c *Client) ConfluenceSpaces(ctx context.Context) ([]models.ConfluenceSpace, error) {
	var result []models.ConfluenceSpace
	if err := c.doRequest(ctx, http.MethodGet, "/confluence/spaces", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ConfluenceSpace fetches one space by key.
func (c *Client) ConfluenceSpace(ctx context.Context, spaceKey string) (*models.ConfluenceSpace, error) {
	var result models.ConfluenceSpace
	path := "/confluence/spaces/" + url.PathEscape(spaceKey)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ConfluenceSpaceContent fetches child content for a space.
func (c *Client) ConfluenceSpaceContent(ctx context.Context, spaceKey string, limit int) ([]models.ConfluenceContent, error) {
	if limit <= 0 {
		limit = 25
	}

	var result []models.ConfluenceContent
	path := fmt.Sprintf("/confluence/spaces/%s/content?limit=%d", url.PathEscape(spaceKey), limit)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ValidateConnection returns nil iff the backend reports the service
// connection as healthy.
func (c *Client) ValidateConnection(ctx context.Context, service models.ServiceType) error {
	path := fmt.Sprintf("/%s/connection/validate", service)
	return c.doRequest(ctx, http.MethodGet, path, nil, nil)
}

// Health fetches the backend health payload.
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := c.doRequest(ctx, http.MethodGet, "/", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}
