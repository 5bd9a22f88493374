package models

import "time"

// ServiceType identifies one of the integrated Atlassian products.
type ServiceType string

const (
	ServiceJira       ServiceType = "jira"
	ServiceConfluence ServiceType = "confluence"
)

// KnownServices lists every service the dashboard can link, in display order.
func KnownServices() []ServiceType {
	return []ServiceType{ServiceJira, ServiceConfluence}
}

// Valid reports whether the service type is one of the known services.
func (s ServiceType) Valid() bool {
	return s == ServiceJira || s == ServiceConfluence
}

func (s ServiceType) String() string {
	return string(s)
}

// UserProfile is opaque pass-through identity data from the backend.
// Every field is optional.
type UserProfile struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Domain      string `json:"domain,omitempty"`
	AccountID   string `json:"accountId,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Credential holds the per-service authentication state. One instance exists
// per service; it is created unauthenticated at startup and only mutated by
// the credential service.
type Credential struct {
	Service         ServiceType  `json:"service"`
	IsAuthenticated bool         `json:"is_authenticated"`
	User            *UserProfile `json:"user"`
	SessionID       string       `json:"session_id,omitempty"`
	IsLoading       bool         `json:"is_loading"`
	Error           string       `json:"error,omitempty"`
}

// NewCredential returns the initial unauthenticated credential for a service.
func NewCredential(service ServiceType) Credential {
	return Credential{Service: service}
}

// APITokenRequest is the api-token login payload sent to the backend.
// Validation tags mirror the client-side rules: the request never reaches the
// network when any field fails.
type APITokenRequest struct {
	Domain   string `json:"domain" validate:"required,atlassian_domain"`
	Email    string `json:"email" validate:"required,email"`
	APIToken string `json:"api_token" validate:"required,min=10"`
}

// AuthResponse is the backend's response shape for every authentication
// operation (token login, OAuth callback exchange, logout).
type AuthResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	SessionID string       `json:"session_id,omitempty"`
	UserInfo  *UserProfile `json:"user_info,omitempty"`
}

// OAuthStartResponse is returned by /auth/{service}/oauth/start.
type OAuthStartResponse struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// OAuthCallbackRequest is the code exchange payload for
// /auth/{service}/oauth/callback.
type OAuthCallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// OAuthHandshake is the durable record of one in-flight authorization round
// trip. It exists from the moment the auth URL is requested until the
// returned state is validated (or rejected), then it is deleted.
type OAuthHandshake struct {
	Service    ServiceType `json:"service"`
	StateToken string      `json:"state_token"`
	CreatedAt  time.Time   `json:"created_at"`
}

// SessionRecord mirrors an authenticated session into durable local storage
// so the dashboard can rehydrate after a restart. ExpiresAt is optional;
// zero means the mirror never expires.
type SessionRecord struct {
	Service   ServiceType  `json:"service"`
	SessionID string       `json:"session_id"`
	User      *UserProfile `json:"user,omitempty"`
	ExpiresAt time.Time    `json:"expires_at,omitzero"`
	CreatedAt time.Time    `json:"created_at"`
}

// Expired reports whether the mirror record has passed its expiry timestamp.
func (r *SessionRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}
