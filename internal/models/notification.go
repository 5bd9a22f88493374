package models

import "time"

// NotificationKind classifies a user-facing message.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationWarning NotificationKind = "warning"
	NotificationInfo    NotificationKind = "info"
)

// Notification is one ephemeral user-facing message. ID and CreatedAt are
// assigned by the notification service on push. DurationMs > 0 schedules
// automatic removal after that many milliseconds; zero means the
// notification stays until removed manually.
type Notification struct {
	ID         string           `json:"id"`
	Kind       NotificationKind `json:"kind"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	DurationMs int              `json:"duration_ms,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
