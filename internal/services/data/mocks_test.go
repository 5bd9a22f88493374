package data

import (
	"context"
	"sync"

	"github.com/ternarybob/atlasdash/internal/models"
)

// mockBackend implements interfaces.BackendClient for testing.
type mockBackend struct {
	mu    sync.Mutex
	calls map[string]int

	jiraProjectsFunc func(ctx context.Context) ([]models.JiraProject, error)
	jiraProjectFunc  func(ctx context.Context, key string) (*models.JiraProject, error)
	spacesFunc       func(ctx context.Context) ([]models.ConfluenceSpace, error)
	spaceFunc        func(ctx context.Context, key string) (*models.ConfluenceSpace, error)
	spaceContentFunc func(ctx context.Context, key string, limit int) ([]models.ConfluenceContent, error)
}

func newMockBackend() *mockBackend {
	return &mockBackend{calls: make(map[string]int)}
}

func (m *mockBackend) record(name string) {
	m.mu.Lock()
	m.calls[name]++
	m.mu.Unlock()
}

func (m *mockBackend) StartOAuth(ctx context.Context, service models.ServiceType) (*models.OAuthStartResponse, error) {
	m.record("StartOAuth")
	return nil, nil
}

func (m *mockBackend) CompleteOAuth(ctx context.Context, service models.ServiceType, req models.OAuthCallbackRequest) (*models.AuthResponse, error) {
	m.record("CompleteOAuth")
	return nil, nil
}

func (m *mockBackend) LoginWithToken(ctx context.Context, service models.ServiceType, req models.APITokenRequest) (*models.AuthResponse, error) {
	m.record("LoginWithToken")
	return nil, nil
}

func (m *mockBackend) Logout(ctx context.Context, sessionID string) (*models.AuthResponse, error) {
	m.record("Logout")
	return nil, nil
}

func (m *mockBackend) JiraProjects(ctx context.Context) ([]models.JiraProject, error) {
	m.record("JiraProjects")
	if m.jiraProjectsFunc != nil {
		return m.jiraProjectsFunc(ctx)
	}
	return nil, nil
}

func (m *mockBackend) JiraProject(ctx context.Context, projectKey string) (*models.JiraProject, error) {
	m.record("JiraProject")
	if m.jiraProjectFunc != nil {
		return m.jiraProjectFunc(ctx, projectKey)
	}
	return nil, nil
}

func (m *mockBackend) ConfluenceSpaces(ctx context.Context) ([]models.ConfluenceSpace, error) {
	m.record("ConfluenceSpaces")
	if m.spacesFunc != nil {
		return m.spacesFunc(ctx)
	}
	return nil, nil
}

func (m *mockBackend) ConfluenceSpace(ctx context.Context, spaceKey string) (*models.ConfluenceSpace, error) {
	m.record("ConfluenceSpace")
	if m.spaceFunc != nil {
		return m.spaceFunc(ctx, spaceKey)
	}
	return nil, nil
}

func (m *mockBackend) ConfluenceSpaceContent(ctx context.Context, spaceKey string, limit int) ([]models.ConfluenceContent, error) {
	m.record("ConfluenceSpaceContent")
	if m.spaceContentFunc != nil {
		return m.spaceContentFunc(ctx, spaceKey, limit)
	}
	return nil, nil
}

func (m *mockBackend) ValidateConnection(ctx context.Context, service models.ServiceType) error {
	m.record("ValidateConnection")
	return nil
}

func (m *mockBackend) Health(ctx context.Context) (map[string]interface{}, error) {
	m.record("Health")
	return nil, nil
}
