package auth

import (
	"context"
	"sync"

	"github.com/ternarybob/atlasdash/internal/interfaces"
	"github.com/ternarybob/atlasdash/internal/models"
)

// mockBackend implements interfaces.BackendClient for testing. Each method
// counts its calls so tests can assert whether the network was reached.
type mockBackend struct {
	mu    sync.Mutex
	calls map[string]int

	startOAuthFunc     func(ctx context.Context, service models.ServiceType) (*models.OAuthStartResponse, error)
	completeOAuthFunc  func(ctx context.Context, service models.ServiceType, req models.OAuthCallbackRequest) (*models.AuthResponse, error)
	loginWithTokenFunc func(ctx context.Context, service models.ServiceType, req models.APITokenRequest) (*models.AuthResponse, error)
	logoutFunc         func(ctx context.Context, sessionID string) (*models.AuthResponse, error)
}

func newMockBackend() *mockBackend {
	return &mockBackend{calls: make(map[string]int)}
}

func (m *mockBackend) record(name string) {
	m.mu.Lock()
	m.calls[name]++
	m.mu.Unlock()
}

func (m *mockBackend) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockBackend) StartOAuth(ctx context.Context, service models.ServiceType) (*models.OAuthStartResponse, error) {
	m.record("StartOAuth")
	if m.startOAuthFunc != nil {
		return m.startOAuthFunc(ctx, service)
	}
	return &models.OAuthStartResponse{AuthURL: "https://auth.example.com/authorize", State: "state-token"}, nil
}

func (m *mockBackend) CompleteOAuth(ctx context.Context, service models.ServiceType, req models.OAuthCallbackRequest) (*models.AuthResponse, error) {
	m.record("CompleteOAuth")
	if m.completeOAuthFunc != nil {
		return m.completeOAuthFunc(ctx, service, req)
	}
	return &models.AuthResponse{Success: true, SessionID: "sess-1"}, nil
}

func (m *mockBackend) LoginWithToken(ctx context.Context, service models.ServiceType, req models.APITokenRequest) (*models.AuthResponse, error) {
	m.record("LoginWithToken")
	if m.loginWithTokenFunc != nil {
		return m.loginWithTokenFunc(ctx, service, req)
	}
	return &models.AuthResponse{Success: true, SessionID: "sess-1"}, nil
}

func (m *mockBackend) Logout(ctx context.Context, sessionID string) (*models.AuthResponse, error) {
	m.record("Logout")
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, sessionID)
	}
	return &models.AuthResponse{Success: true}, nil
}

func (m *mockBackend) JiraProjects(ctx context.Context) ([]models.JiraProject, error) {
	m.record("JiraProjects")
	return nil, nil
}

func (m *mockBackend) JiraProject(ctx context.Context, projectKey string) (*models.JiraProject, error) {
	m.record("JiraProject")
	return nil, nil
}

func (m *mockBackend) ConfluenceSpaces(ctx context.Context) ([]models.ConfluenceSpace, error) {
	m.record("ConfluenceSpaces")
	return nil, nil
}

func (m *mockBackend) ConfluenceSpace(ctx context.Context, spaceKey string) (*models.ConfluenceSpace, error) {
	m.record("ConfluenceSpace")
	return nil, nil
}

func (m *mockBackend) ConfluenceSpaceContent(ctx context.Context, spaceKey string, limit int) ([]models.ConfluenceContent, error) {
	m.record("ConfluenceSpaceContent")
	return nil, nil
}

func (m *mockBackend) ValidateConnection(ctx context.Context, service models.ServiceType) error {
	m.record("ValidateConnection")
	return nil
}

func (m *mockBackend) Health(ctx context.Context) (map[string]interface{}, error) {
	m.record("Health")
	return map[string]interface{}{"status": "ok"}, nil
}

// memHandshakeStorage is an in-memory interfaces.HandshakeStorage.
type memHandshakeStorage struct {
	mu         sync.Mutex
	handshakes map[models.ServiceType]*models.OAuthHandshake
}

func newMemHandshakeStorage() *memHandshakeStorage {
	return &memHandshakeStorage{handshakes: make(map[models.ServiceType]*models.OAuthHandshake)}
}

func (s *memHandshakeStorage) Store(ctx context.Context, handshake *models.OAuthHandshake) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *handshake
	s.handshakes[handshake.Service] = &copied
	return nil
}

func (s *memHandshakeStorage) Get(ctx context.Context, service models.ServiceType) (*models.OAuthHandshake, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	handshake, ok := s.handshakes[service]
	if !ok {
		return nil, interfaces.ErrHandshakeNotFound
	}
	copied := *handshake
	return &copied, nil
}

func (s *memHandshakeStorage) Delete(ctx context.Context, service models.ServiceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handshakes, service)
	return nil
}

// memSessionStorage is an in-memory interfaces.SessionStorage.
type memSessionStorage struct {
	mu       sync.Mutex
	sessions map[models.ServiceType]*models.SessionRecord
}

func newMemSessionStorage() *memSessionStorage {
	return &memSessionStorage{sessions: make(map[models.ServiceType]*models.SessionRecord)}
}

func (s *memSessionStorage) Store(ctx context.Context, record *models.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.sessions[record.Service] = &copied
	return nil
}

func (s *memSessionStorage) Get(ctx context.Context, service models.ServiceType) (*models.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.sessions[service]
	if !ok {
		return nil, interfaces.ErrSessionNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *memSessionStorage) Delete(ctx context.Context, service models.ServiceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, service)
	return nil
}

func (s *memSessionStorage) List(ctx context.Context) ([]*models.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*models.SessionRecord, 0, len(s.sessions))
	for _, record := range s.sessions {
		copied := *record
		result = append(result, &copied)
	}
	return result, nil
}
