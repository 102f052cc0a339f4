package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind distinguishes informational notices from errors.
type NotificationKind string

const (
	NotificationInfo  NotificationKind = "info"
	NotificationError NotificationKind = "error"
)

// Notification represents a transient notice surfaced to the user about
// the outcome of an operation. Notifications never block interaction.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// EmailID links this notification to the affected email, if any.
	EmailID string `json:"email_id,omitempty"`

	// Kind classifies the notification (use Notification* constants).
	Kind NotificationKind `json:"kind"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification builds a Notification with a generated id and the
// current timestamp.
func NewNotification(kind NotificationKind, emailID, message string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		EmailID:   emailID,
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}
}
