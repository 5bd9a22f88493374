package notify

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/common"
	"github.com/ternarybob/atlasdash/internal/models"
)

// Service is the ordered notification queue. Pushed notifications are kept
// in arrival order; ones carrying a duration remove themselves when it
// elapses. Subscribers receive every push over a buffered channel.
type Service struct {
	mu            sync.Mutex
	notifications []models.Notification
	timers        map[string]*time.Timer
	subscribers   map[chan models.Notification]struct{}

	defaultDurationMs int
	logger            arbor.ILogger
}

// NewService creates the notification queue. defaultDurationMs applies to
// notifications pushed without an explicit duration; zero disables
// auto-dismissal for them.
func NewService(defaultDurationMs int, logger arbor.ILogger) *Service {
	return &Service{
		timers:            make(map[string]*time.Timer),
		subscribers:       make(map[chan models.Notification]struct{}),
		defaultDurationMs: defaultDurationMs,
		logger:            logger,
	}
}

// Push appends a notification, assigns its ID and timestamp, and schedules
// auto-removal when a positive duration applies. Returns the stored value.
func (s *Service) Push(n models.Notification) models.Notification {
	n.ID = common.NewNotificationID()
	n.CreatedAt = time.Now()
	if n.DurationMs == 0 {
		n.DurationMs = s.defaultDurationMs
	}
	if n.DurationMs < 0 {
		n.DurationMs = 0
	}

	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	if n.DurationMs > 0 {
		id := n.ID
		s.timers[id] = time.AfterFunc(time.Duration(n.DurationMs)*time.Millisecond, func() {
			s.Remove(id)
		})
	}
	for ch := range s.subscribers {
		select {
		case ch <- n:
		default:
		}
	}
	s.mu.Unlock()

	s.logger.Debug().
		Str("id", n.ID).
		Str("kind", string(n.Kind)).
		Str("title", n.Title).
		Msg("Notification pushed")
	return n
}

// Remove deletes a notification by ID. Unknown IDs are a no-op, so expiry
// racing a manual dismissal is harmless.
func (s *Service) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// Clear removes every notification and cancels all pending timers.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.notifications = nil
}

// List returns the active notifications in arrival order.
func (s *Service) List() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.Notification, len(s.notifications))
	copy(result, s.notifications)
	return result
}

// Subscribe registers a channel that receives every subsequent push. Slow
// consumers drop messages rather than block the queue.
func (s *Service) Subscribe() chan models.Notification {
	ch := make(chan models.Notification, 16)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (s *Service) Unsubscribe(ch chan models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
}
