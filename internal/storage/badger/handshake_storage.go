package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/interfaces"
	"github.com/ternarybob/atlasdash/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

const handshakeKeyPrefix = "oauth_state_"

// HandshakeStorage implements the HandshakeStorage interface for Badger.
// One record per service, keyed by service name, alive for exactly one
// authorization round trip.
type HandshakeStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewHandshakeStorage creates a new HandshakeStorage instance
func NewHandshakeStorage(db *BadgerDB, logger arbor.ILogger) interfaces.HandshakeStorage {
	return &HandshakeStorage{
		db:     db,
		logger: logger,
	}
}

func handshakeKey(service models.ServiceType) string {
	return handshakeKeyPrefix + service.String()
}

// Store persists a handshake token, replacing any previous token for the
// same service.
func (s *HandshakeStorage) Store(ctx context.Context, handshake *models.OAuthHandshake) error {
	if handshake.StateToken == "" {
		return fmt.Errorf("state token is required")
	}
	if !handshake.Service.Valid() {
		return fmt.Errorf("unknown service: %s", handshake.Service)
	}

	if handshake.CreatedAt.IsZero() {
		handshake.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(handshakeKey(handshake.Service), handshake); err != nil {
		return fmt.Errorf("failed to store handshake: %w", err)
	}

	s.logger.Debug().Str("service", handshake.Service.String()).Msg("OAuth handshake token stored")
	return nil
}

// Get retrieves the stored handshake for a service.
func (s *HandshakeStorage) Get(ctx context.Context, service models.ServiceType) (*models.OAuthHandshake, error) {
	var handshake models.OAuthHandshake
	err := s.db.Store().Get(handshakeKey(service), &handshake)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrHandshakeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get handshake: %w", err)
	}
	return &handshake, nil
}

// Delete removes the stored handshake for a service. Deleting an absent
// handshake is not an error.
func (s *HandshakeStorage) Delete(ctx context.Context, service models.ServiceType) error {
	err := s.db.Store().Delete(handshakeKey(service), &models.OAuthHandshake{})
	if err == badgerhold.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete handshake: %w", err)
	}

	s.logger.Debug().Str("service", service.String()).Msg("OAuth handshake token deleted")
	return nil
}
