package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/gateway"
	"github.com/ternarybob/atlasdash/internal/interfaces"
	"github.com/ternarybob/atlasdash/internal/models"
	"github.com/ternarybob/atlasdash/internal/services/notify"
)

func newTestService(backend *mockBackend) (*Service, *memHandshakeStorage, *memSessionStorage, *notify.Service) {
	logger := arbor.NewLogger()
	handshakes := newMemHandshakeStorage()
	sessions := newMemSessionStorage()
	notifier := notify.NewService(0, logger)
	svc := NewService(backend, handshakes, sessions, notifier, 24*time.Hour, logger)
	return svc, handshakes, sessions, notifier
}

func validTokenRequest() models.APITokenRequest {
	return models.APITokenRequest{
		Domain:   "company.atlassian.net",
		Email:    "dev@example.com",
		APIToken: "abcdef123456",
	}
}

func TestLoginWithToken_ValidationFailureNeverReachesNetwork(t *testing.T) {
	backend := newMockBackend()
	svc, _, _, _ := newTestService(backend)

	err := svc.LoginWithToken(context.Background(), models.ServiceJira, models.APITokenRequest{
		Domain:   "example.com",
		Email:    "not-an-email",
		APIToken: "short",
	})

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "domain")
	assert.Contains(t, verrs, "email")
	assert.Contains(t, verrs, "api_token")
	assert.Equal(t, 0, backend.callCount("LoginWithToken"), "invalid credentials must not be submitted")
}

func TestLoginWithToken_Success(t *testing.T) {
	backend := newMockBackend()
	backend.loginWithTokenFunc = func(ctx context.Context, service models.ServiceType, req models.APITokenRequest) (*models.AuthResponse, error) {
		return &models.AuthResponse{
			Success:   true,
			SessionID: "sess-42",
			UserInfo:  &models.UserProfile{Email: req.Email, DisplayName: "Dev"},
		}, nil
	}
	svc, _, sessions, notifier := newTestService(backend)

	err := svc.LoginWithToken(context.Background(), models.ServiceJira, validTokenRequest())
	require.NoError(t, err)

	cred := svc.Credential(models.ServiceJira)
	assert.True(t, cred.IsAuthenticated)
	assert.False(t, cred.IsLoading)
	assert.Empty(t, cred.Error)
	assert.Equal(t, "sess-42", cred.SessionID)
	require.NotNil(t, cred.User)
	assert.Equal(t, "dev@example.com", cred.User.Email)

	// Session mirrored for restart rehydration
	record, err := sessions.Get(context.Background(), models.ServiceJira)
	require.NoError(t, err)
	assert.Equal(t, "sess-42", record.SessionID)
	assert.False(t, record.ExpiresAt.IsZero())

	// Success notification pushed with an explicit auto-dismiss duration
	list := notifier.List()
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationSuccess, list[0].Kind)
	assert.Equal(t, 3000, list[0].DurationMs)
}

func TestLoginWithToken_BackendFailureSetsError(t *testing.T) {
	backend := newMockBackend()
	backend.loginWithTokenFunc = func(ctx context.Context, service models.ServiceType, req models.APITokenRequest) (*models.AuthResponse, error) {
		return nil, &gateway.StatusError{Status: 401, StatusText: "Unauthorized"}
	}
	svc, _, _, notifier := newTestService(backend)

	err := svc.LoginWithToken(context.Background(), models.ServiceJira, validTokenRequest())
	require.Error(t, err)

	cred := svc.Credential(models.ServiceJira)
	assert.False(t, cred.IsAuthenticated)
	assert.False(t, cred.IsLoading)
	assert.Equal(t, "Authentication required. Please sign in again.", cred.Error)

	list := notifier.List()
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationError, list[0].Kind)
	assert.Equal(t, 5000, list[0].DurationMs)
}

func TestLoginWithOAuth_StoresHandshake(t *testing.T) {
	backend := newMockBackend()
	svc, handshakes, _, _ := newTestService(backend)

	authURL, err := svc.LoginWithOAuth(context.Background(), models.ServiceConfluence)
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com/authorize", authURL)

	handshake, err := handshakes.Get(context.Background(), models.ServiceConfluence)
	require.NoError(t, err)
	assert.Equal(t, "state-token", handshake.StateToken)
	assert.False(t, handshake.CreatedAt.IsZero())

	cred := svc.Credential(models.ServiceConfluence)
	assert.True(t, cred.IsLoading, "credential stays loading until the callback lands")
}

func TestCompleteOAuthCallback_Success(t *testing.T) {
	backend := newMockBackend()
	svc, handshakes, _, _ := newTestService(backend)

	_, err := svc.LoginWithOAuth(context.Background(), models.ServiceJira)
	require.NoError(t, err)

	err = svc.CompleteOAuthCallback(context.Background(), models.ServiceJira, models.OAuthCallbackRequest{
		Code:  "auth-code",
		State: "state-token",
	})
	require.NoError(t, err)

	assert.True(t, svc.IsAuthenticated(models.ServiceJira))

	// Token consumed: the same callback cannot be replayed
	_, err = handshakes.Get(context.Background(), models.ServiceJira)
	assert.ErrorIs(t, err, interfaces.ErrHandshakeNotFound)
}

func TestCompleteOAuthCallback_StateMismatchConsumesTokenWithoutExchange(t *testing.T) {
	backend := newMockBackend()
	svc, handshakes, _, _ := newTestService(backend)

	_, err := svc.LoginWithOAuth(context.Background(), models.ServiceJira)
	require.NoError(t, err)

	err = svc.CompleteOAuthCallback(context.Background(), models.ServiceJira, models.OAuthCallbackRequest{
		Code:  "auth-code",
		State: "forged-state",
	})
	assert.ErrorIs(t, err, interfaces.ErrStateMismatch)
	assert.Equal(t, 0, backend.callCount("CompleteOAuth"), "code must not be exchanged on mismatch")

	cred := svc.Credential(models.ServiceJira)
	assert.False(t, cred.IsAuthenticated)
	assert.NotEmpty(t, cred.Error)

	// Token deleted even though the exchange never ran
	_, err = handshakes.Get(context.Background(), models.ServiceJira)
	assert.ErrorIs(t, err, interfaces.ErrHandshakeNotFound)
}

func TestCompleteOAuthCallback_NoStoredHandshake(t *testing.T) {
	backend := newMockBackend()
	svc, _, _, _ := newTestService(backend)

	err := svc.CompleteOAuthCallback(context.Background(), models.ServiceJira, models.OAuthCallbackRequest{
		Code:  "auth-code",
		State: "state-token",
	})
	assert.ErrorIs(t, err, interfaces.ErrStateMismatch)
	assert.Equal(t, 0, backend.callCount("CompleteOAuth"))
}

func TestLogout_ResetsStateDespiteBackendFailure(t *testing.T) {
	backend := newMockBackend()
	backend.logoutFunc = func(ctx context.Context, sessionID string) (*models.AuthResponse, error) {
		return nil, &gateway.TransportError{Cause: errors.New("connection refused")}
	}
	svc, _, sessions, _ := newTestService(backend)

	require.NoError(t, svc.LoginWithToken(context.Background(), models.ServiceJira, validTokenRequest()))
	require.True(t, svc.IsAuthenticated(models.ServiceJira))

	err := svc.Logout(context.Background(), models.ServiceJira)
	require.NoError(t, err)

	cred := svc.Credential(models.ServiceJira)
	assert.False(t, cred.IsAuthenticated)
	assert.Nil(t, cred.User)
	assert.Empty(t, cred.SessionID)
	assert.Empty(t, cred.Error)

	_, err = sessions.Get(context.Background(), models.ServiceJira)
	assert.ErrorIs(t, err, interfaces.ErrSessionNotFound)
}

func TestClearError(t *testing.T) {
	backend := newMockBackend()
	backend.loginWithTokenFunc = func(ctx context.Context, service models.ServiceType, req models.APITokenRequest) (*models.AuthResponse, error) {
		return &models.AuthResponse{Success: false, Message: "Invalid credentials"}, nil
	}
	svc, _, _, _ := newTestService(backend)

	err := svc.LoginWithToken(context.Background(), models.ServiceJira, validTokenRequest())
	require.Error(t, err)
	require.Equal(t, "Invalid credentials", svc.Credential(models.ServiceJira).Error)

	svc.ClearError(models.ServiceJira)
	assert.Empty(t, svc.Credential(models.ServiceJira).Error)
	assert.False(t, svc.Credential(models.ServiceJira).IsAuthenticated, "clearing the error must not change auth state")
}

func TestNewService_RehydratesMirroredSessions(t *testing.T) {
	logger := arbor.NewLogger()
	backend := newMockBackend()
	sessions := newMemSessionStorage()
	require.NoError(t, sessions.Store(context.Background(), &models.SessionRecord{
		Service:   models.ServiceConfluence,
		SessionID: "sess-old",
		User:      &models.UserProfile{Email: "dev@example.com"},
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now().Add(-time.Hour),
	}))

	svc := NewService(backend, newMemHandshakeStorage(), sessions, nil, 24*time.Hour, logger)

	cred := svc.Credential(models.ServiceConfluence)
	assert.True(t, cred.IsAuthenticated)
	assert.Equal(t, "sess-old", cred.SessionID)
	assert.False(t, svc.IsAuthenticated(models.ServiceJira))
}

func TestService_UnknownServiceRejected(t *testing.T) {
	backend := newMockBackend()
	svc, _, _, _ := newTestService(backend)

	_, err := svc.LoginWithOAuth(context.Background(), models.ServiceType("bitbucket"))
	assert.Error(t, err)
	assert.Equal(t, 0, backend.callCount("StartOAuth"))
}
