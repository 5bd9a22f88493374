package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/gateway"
	"github.com/ternarybob/atlasdash/internal/interfaces"
	"github.com/ternarybob/atlasdash/internal/models"
)

// Service is the credential store: one Credential per service, mutated only
// through the operations below. Overlapping login attempts are not guarded;
// the attempt that resolves last wins, which is an accepted simplification.
type Service struct {
	mu          sync.RWMutex
	credentials map[models.ServiceType]*models.Credential

	backend    interfaces.BackendClient
	handshakes interfaces.HandshakeStorage
	sessions   interfaces.SessionStorage
	notifier   interfaces.NotificationService
	mirrorTTL  time.Duration
	logger     arbor.ILogger
}

// NewService creates the credential store and rehydrates any mirrored
// sessions from durable storage. A zero mirrorTTL disables session
// mirroring.
func NewService(backend interfaces.BackendClient, handshakes interfaces.HandshakeStorage, sessions interfaces.SessionStorage, notifier interfaces.NotificationService, mirrorTTL time.Duration, logger arbor.ILogger) *Service {
	s := &Service{
		credentials: make(map[models.ServiceType]*models.Credential),
		backend:     backend,
		handshakes:  handshakes,
		sessions:    sessions,
		notifier:    notifier,
		mirrorTTL:   mirrorTTL,
		logger:      logger,
	}

	for _, service := range models.KnownServices() {
		cred := models.NewCredential(service)
		s.credentials[service] = &cred
	}

	if err := s.loadStoredSessions(); err != nil {
		logger.Debug().Str("error", err.Error()).Msg("No stored sessions found")
	}

	return s
}

// loadStoredSessions restores authentication state from the session mirror.
func (s *Service) loadStoredSessions() error {
	if s.sessions == nil || s.mirrorTTL == 0 {
		return nil
	}

	records, err := s.sessions.List(context.Background())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no sessions stored")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range records {
		cred := s.credentials[record.Service]
		if cred == nil {
			continue
		}
		cred.IsAuthenticated = true
		cred.SessionID = record.SessionID
		cred.User = record.User

		s.logger.Info().
			Str("service", record.Service.String()).
			Msg("Restored session from local mirror")
	}
	return nil
}

// LoginWithOAuth requests an authorization URL from the backend, persists the
// returned state token, and hands the URL back for the caller to open. The
// credential stays in the loading state until the callback completes or a
// new attempt replaces it.
func (s *Service) LoginWithOAuth(ctx context.Context, service models.ServiceType) (string, error) {
	if !service.Valid() {
		return "", fmt.Errorf("unknown service: %s", service)
	}

	s.setLoading(service)

	start, err := s.backend.StartOAuth(ctx, service)
	if err != nil {
		s.setError(service, gateway.UserMessage(err))
		s.notify(models.NotificationError, "Sign-in failed", gateway.UserMessage(err), 5000)
		return "", err
	}

	handshake := &models.OAuthHandshake{
		Service:    service,
		StateToken: start.State,
		CreatedAt:  time.Now(),
	}
	if err := s.handshakes.Store(ctx, handshake); err != nil {
		s.setError(service, "Could not start the sign-in flow")
		return "", fmt.Errorf("failed to persist handshake token: %w", err)
	}

	s.logger.Info().Str("service", service.String()).Msg("OAuth flow started")
	return start.AuthURL, nil
}

// LoginWithToken validates credentials client-side and submits them to the
// backend. Validation failures are returned as ValidationErrors and never
// reach the network.
func (s *Service) LoginWithToken(ctx context.Context, service models.ServiceType, req models.APITokenRequest) error {
	if !service.Valid() {
		return fmt.Errorf("unknown service: %s", service)
	}

	if verrs := ValidateTokenRequest(req); verrs != nil {
		return verrs
	}

	s.setLoading(service)

	resp, err := s.backend.LoginWithToken(ctx, service, req)
	if err != nil {
		msg := gateway.UserMessage(err)
		s.setError(service, msg)
		s.notify(models.NotificationError, "Sign-in failed", msg, 5000)
		return err
	}

	return s.applyAuthResponse(ctx, service, resp)
}

// CompleteOAuthCallback exchanges the authorization code, but only when the
// returned state exactly equals the token stored for this service. The
// stored token is deleted after any outcome, win or lose.
func (s *Service) CompleteOAuthCallback(ctx context.Context, service models.ServiceType, req models.OAuthCallbackRequest) error {
	if !service.Valid() {
		return fmt.Errorf("unknown service: %s", service)
	}

	handshake, err := s.handshakes.Get(ctx, service)
	if err == interfaces.ErrHandshakeNotFound {
		s.setError(service, "Sign-in session expired. Please try again.")
		return interfaces.ErrStateMismatch
	}
	if err != nil {
		return fmt.Errorf("failed to load handshake token: %w", err)
	}

	// Single use: the token is consumed whether the exchange succeeds,
	// fails, or never happens.
	defer func() {
		if err := s.handshakes.Delete(ctx, service); err != nil {
			s.logger.Warn().Err(err).Str("service", service.String()).Msg("Failed to delete handshake token")
		}
	}()

	if req.State == "" || req.State != handshake.StateToken {
		s.logger.Warn().Str("service", service.String()).Msg("OAuth state mismatch, rejecting callback")
		s.setError(service, "Sign-in verification failed. Please try again.")
		s.notify(models.NotificationError, "Sign-in failed", "The sign-in response could not be verified.", 5000)
		return interfaces.ErrStateMismatch
	}

	s.setLoading(service)

	resp, err := s.backend.CompleteOAuth(ctx, service, req)
	if err != nil {
		msg := gateway.UserMessage(err)
		s.setError(service, msg)
		s.notify(models.NotificationError, "Sign-in failed", msg, 5000)
		return err
	}

	return s.applyAuthResponse(ctx, service, resp)
}

// applyAuthResponse applies the backend's auth outcome to the credential and
// mirrors the session when enabled.
func (s *Service) applyAuthResponse(ctx context.Context, service models.ServiceType, resp *models.AuthResponse) error {
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "Authentication failed"
		}
		s.setError(service, msg)
		s.notify(models.NotificationError, "Sign-in failed", msg, 5000)
		return fmt.Errorf("authentication rejected: %s", msg)
	}

	s.mu.Lock()
	cred := s.credentials[service]
	cred.IsAuthenticated = true
	cred.User = resp.UserInfo
	cred.SessionID = resp.SessionID
	cred.IsLoading = false
	cred.Error = ""
	s.mu.Unlock()

	if s.sessions != nil && s.mirrorTTL > 0 && resp.SessionID != "" {
		record := &models.SessionRecord{
			Service:   service,
			SessionID: resp.SessionID,
			User:      resp.UserInfo,
			ExpiresAt: time.Now().Add(s.mirrorTTL),
			CreatedAt: time.Now(),
		}
		if err := s.sessions.Store(ctx, record); err != nil {
			s.logger.Warn().Err(err).Str("service", service.String()).Msg("Failed to mirror session")
		}
	}

	s.logger.Info().Str("service", service.String()).Msg("Authenticated")
	s.notify(models.NotificationSuccess, "Connected", fmt.Sprintf("Successfully connected to %s", displayName(service)), 3000)
	return nil
}

// Logout calls the backend best-effort and always resets the credential to
// its initial unauthenticated shape.
func (s *Service) Logout(ctx context.Context, service models.ServiceType) error {
	if !service.Valid() {
		return fmt.Errorf("unknown service: %s", service)
	}

	s.mu.RLock()
	sessionID := s.credentials[service].SessionID
	s.mu.RUnlock()

	if _, err := s.backend.Logout(ctx, sessionID); err != nil {
		// Network failure does not block clearing local state.
		s.logger.Warn().Err(err).Str("service", service.String()).Msg("Backend logout failed, clearing local state anyway")
	}

	s.mu.Lock()
	cred := models.NewCredential(service)
	s.credentials[service] = &cred
	s.mu.Unlock()

	if s.sessions != nil {
		if err := s.sessions.Delete(ctx, service); err != nil {
			s.logger.Warn().Err(err).Str("service", service.String()).Msg("Failed to delete mirrored session")
		}
	}

	s.logger.Info().Str("service", service.String()).Msg("Logged out")
	s.notify(models.NotificationInfo, "Signed out", fmt.Sprintf("Disconnected from %s", displayName(service)), 3000)
	return nil
}

// SetError records an error message on the credential without dropping the
// session. Connection validation uses it to surface backend trouble.
func (s *Service) SetError(service models.ServiceType, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cred, ok := s.credentials[service]; ok {
		cred.Error = message
	}
}

// ClearError clears the error field without altering other state.
func (s *Service) ClearError(service models.ServiceType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cred, ok := s.credentials[service]; ok {
		cred.Error = ""
	}
}

// Credential returns a copy of the current credential for a service.
func (s *Service) Credential(service models.ServiceType) models.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cred, ok := s.credentials[service]; ok {
		return *cred
	}
	return models.NewCredential(service)
}

// IsAuthenticated reports whether the service has a live session.
func (s *Service) IsAuthenticated(service models.ServiceType) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[service]
	return ok && cred.IsAuthenticated
}

// Snapshot returns copies of every credential in display order.
func (s *Service) Snapshot() []models.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Credential, 0, len(s.credentials))
	for _, service := range models.KnownServices() {
		result = append(result, *s.credentials[service])
	}
	return result
}

func (s *Service) setLoading(service models.ServiceType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred := s.credentials[service]
	cred.IsLoading = true
	cred.Error = ""
}

func (s *Service) setError(service models.ServiceType, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred := s.credentials[service]
	cred.IsAuthenticated = false
	cred.User = nil
	cred.SessionID = ""
	cred.IsLoading = false
	cred.Error = msg
}

func (s *Service) notify(kind models.NotificationKind, title, message string, durationMs int) {
	if s.notifier == nil {
		return
	}
	s.notifier.Push(models.Notification{
		Kind:       kind,
		Title:      title,
		Message:    message,
		DurationMs: durationMs,
	})
}

func displayName(service models.ServiceType) string {
	switch service {
	case models.ServiceJira:
		return "Jira"
	case models.ServiceConfluence:
		return "Confluence"
	default:
		return service.String()
	}
}
