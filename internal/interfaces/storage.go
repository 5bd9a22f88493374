package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/atlasdash/internal/models"
)

// ErrHandshakeNotFound is returned when no OAuth handshake token is stored
// for the requested service.
var ErrHandshakeNotFound = errors.New("oauth handshake not found")

// ErrSessionNotFound is returned when no mirrored session exists for the
// requested service.
var ErrSessionNotFound = errors.New("session not found")

// HandshakeStorage persists OAuth state tokens for the duration of one
// authorization round trip. At most one handshake exists per service; storing
// a new one replaces any previous token for that service.
type HandshakeStorage interface {
	Store(ctx context.Context, handshake *models.OAuthHandshake) error
	Get(ctx context.Context, service models.ServiceType) (*models.OAuthHandshake, error)
	Delete(ctx context.Context, service models.ServiceType) error
}

// SessionStorage mirrors authenticated sessions into durable local storage so
// credentials survive a restart. Implementations must treat expired records
// as absent.
type SessionStorage interface {
	Store(ctx context.Context, record *models.SessionRecord) error
	Get(ctx context.Context, service models.ServiceType) (*models.SessionRecord, error)
	Delete(ctx context.Context, service models.ServiceType) error
	List(ctx context.Context) ([]*models.SessionRecord, error)
}
