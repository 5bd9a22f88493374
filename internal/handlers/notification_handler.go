package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/interfaces"
)

// NotificationHandler exposes the notification queue.
type NotificationHandler struct {
	notifier interfaces.NotificationService
	logger   arbor.ILogger
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(notifier interfaces.NotificationService, logger arbor.ILogger) *NotificationHandler {
	return &NotificationHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// ServeNotifications handles GET /api/notifications (list) and
// DELETE /api/notifications (clear all).
func (h *NotificationHandler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"notifications": h.notifier.List(),
		})
	case http.MethodDelete:
		h.notifier.Clear()
		WriteSuccess(w, "Notifications cleared")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ServeNotificationRoutes handles DELETE /api/notifications/{id}. Removal is
// idempotent; dismissing an already-expired notification succeeds.
func (h *NotificationHandler) ServeNotificationRoutes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/notifications/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	h.notifier.Remove(id)
	WriteSuccess(w, "Notification removed")
}
