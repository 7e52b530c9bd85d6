package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType names a user-facing event.
type NotificationType string

// Notification types.
const (
	NotifyPropertyApproved     NotificationType = "property.approved"
	NotifyPropertyStepApproved NotificationType = "property.step_approved"
	NotifyPropertyRejected     NotificationType = "property.rejected"
	NotifyPropertyArchived     NotificationType = "property.archived"
	NotifyPropertySold         NotificationType = "property.sold"
	NotifyPropertyResubmitted  NotificationType = "property.resubmitted"
	NotifyBookingCreated       NotificationType = "booking.created"
	NotifyBookingClosed        NotificationType = "booking.closed"
)

// Notification is a fire-and-forget message for one recipient.
type Notification struct {
	RecipientID string           `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	PropertyID  uuid.UUID        `json:"property_id"`
	Detail      map[string]any   `json:"detail,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
