package status

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/gateway"
	"github.com/ternarybob/atlasdash/internal/interfaces"
	"github.com/ternarybob/atlasdash/internal/models"
)

// ServiceStatus is the last observed connection state for one service.
type ServiceStatus struct {
	Service     models.ServiceType `json:"service"`
	Healthy     bool               `json:"healthy"`
	Message     string             `json:"message,omitempty"`
	LastChecked time.Time          `json:"last_checked,omitzero"`
}

// Service runs periodic connection validation against the backend for every
// authenticated service. A failing check records the message on the
// credential and raises a warning notification; a recovering check clears
// the error and raises an info one.
type Service struct {
	mu       sync.RWMutex
	statuses map[models.ServiceType]*ServiceStatus

	backend     interfaces.BackendClient
	credentials interfaces.CredentialService
	notifier    interfaces.NotificationService
	scheduler   *cron.Cron
	schedule    string
	logger      arbor.ILogger
}

// NewService creates the status checker. schedule is a standard five-field
// cron expression.
func NewService(backend interfaces.BackendClient, credentials interfaces.CredentialService, notifier interfaces.NotificationService, schedule string, logger arbor.ILogger) *Service {
	s := &Service{
		statuses:    make(map[models.ServiceType]*ServiceStatus),
		backend:     backend,
		credentials: credentials,
		notifier:    notifier,
		scheduler:   cron.New(),
		schedule:    schedule,
		logger:      logger,
	}
	for _, service := range models.KnownServices() {
		s.statuses[service] = &ServiceStatus{Service: service}
	}
	return s
}

// Start schedules the recurring check and runs one immediately in the
// background.
func (s *Service) Start() error {
	if _, err := s.scheduler.AddFunc(s.schedule, s.runChecks); err != nil {
		return fmt.Errorf("invalid validation schedule %q: %w", s.schedule, err)
	}

	s.scheduler.Start()
	go s.runChecks()

	s.logger.Info().Str("schedule", s.schedule).Msg("Connection validation scheduled")
	return nil
}

// Stop halts the scheduler and waits for any running check to finish.
func (s *Service) Stop() {
	ctx := s.scheduler.Stop()
	<-ctx.Done()
}

func (s *Service) runChecks() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, service := range models.KnownServices() {
		if !s.credentials.IsAuthenticated(service) {
			continue
		}
		s.checkService(ctx, service)
	}
}

func (s *Service) checkService(ctx context.Context, service models.ServiceType) {
	err := s.backend.ValidateConnection(ctx, service)

	s.mu.Lock()
	prev := s.statuses[service]
	wasHealthy := prev.Healthy
	hadCheck := !prev.LastChecked.IsZero()
	next := &ServiceStatus{
		Service:     service,
		Healthy:     err == nil,
		LastChecked: time.Now(),
	}
	if err != nil {
		next.Message = gateway.UserMessage(err)
	}
	s.statuses[service] = next
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn().Err(err).Str("service", service.String()).Msg("Connection validation failed")
		s.credentials.SetError(service, next.Message)
		if s.notifier != nil && (wasHealthy || !hadCheck) {
			s.notifier.Push(models.Notification{
				Kind:       models.NotificationWarning,
				Title:      "Connection problem",
				Message:    fmt.Sprintf("The %s connection is not responding: %s", service, next.Message),
				DurationMs: 5000,
			})
		}
		return
	}

	s.logger.Debug().Str("service", service.String()).Msg("Connection validated")
	if hadCheck && !wasHealthy {
		s.credentials.ClearError(service)
		if s.notifier != nil {
			s.notifier.Push(models.Notification{
				Kind:       models.NotificationInfo,
				Title:      "Connection restored",
				Message:    fmt.Sprintf("The %s connection is healthy again", service),
				DurationMs: 3000,
			})
		}
	}
}

// Statuses returns a copy of the last observed status per service, in
// display order.
func (s *Service) Statuses() []ServiceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ServiceStatus, 0, len(s.statuses))
	for _, service := range models.KnownServices() {
		result = append(result, *s.statuses[service])
	}
	return result
}
