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

const sessionKeyPrefix = "session_"

// SessionStorage implements the SessionStorage interface for Badger. It
// mirrors authenticated sessions so the dashboard can rehydrate after a
// restart; expired mirrors are deleted on read.
type SessionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSessionStorage creates a new SessionStorage instance
func NewSessionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SessionStorage {
	return &SessionStorage{
		db:     db,
		logger: logger,
	}
}

func sessionKey(service models.ServiceType) string {
	return sessionKeyPrefix + service.String()
}

// Store persists a session mirror record for a service.
func (s *SessionStorage) Store(ctx context.Context, record *models.SessionRecord) error {
	if record.SessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if !record.Service.Valid() {
		return fmt.Errorf("unknown service: %s", record.Service)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(sessionKey(record.Service), record); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get retrieves the mirrored session for a service. Expired records are
// deleted and reported as absent.
func (s *SessionStorage) Get(ctx context.Context, service models.ServiceType) (*models.SessionRecord, error) {
	var record models.SessionRecord
	err := s.db.Store().Get(sessionKey(service), &record)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if record.Expired(time.Now()) {
		s.logger.Debug().Str("service", service.String()).Msg("Mirrored session expired, deleting")
		if err := s.Delete(ctx, service); err != nil {
			s.logger.Warn().Err(err).Str("service", service.String()).Msg("Failed to delete expired session")
		}
		return nil, interfaces.ErrSessionNotFound
	}

	return &record, nil
}

// Delete removes the mirrored session for a service. Deleting an absent
// session is not an error.
func (s *SessionStorage) Delete(ctx context.Context, service models.ServiceType) error {
	err := s.db.Store().Delete(sessionKey(service), &models.SessionRecord{})
	if err == badgerhold.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List returns all live mirrored sessions.
func (s *SessionStorage) List(ctx context.Context) ([]*models.SessionRecord, error) {
	result := make([]*models.SessionRecord, 0, 2)
	for _, service := range models.KnownServices() {
		record, err := s.Get(ctx, service)
		if err == interfaces.ErrSessionNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, nil
}
