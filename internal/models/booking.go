package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

// Booking statuses. ACTIVE is the only non-terminal state.
const (
	BookingActive    BookingStatus = "ACTIVE"
	BookingExpired   BookingStatus = "EXPIRED"
	BookingConverted BookingStatus = "CONVERTED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed.
func (s BookingStatus) Terminal() bool {
	return s == BookingExpired || s == BookingConverted || s == BookingCancelled
}

// Booking is a time-bounded customer hold on an active property.
type Booking struct {
	ID         uuid.UUID     `json:"id"`
	PropertyID uuid.UUID     `json:"property_id"`
	CustomerID string        `json:"customer_id"`
	Status     BookingStatus `json:"status"`
	Notes      *string       `json:"notes,omitempty"`
	ExpiresAt  time.Time     `json:"expires_at"`
	CreatedBy  string        `json:"created_by"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	ClosedAt   *time.Time    `json:"closed_at,omitempty"`
}

// CreateBookingRequest is the payload for booking a property.
type CreateBookingRequest struct {
	CustomerID string     `json:"customer_id"`
	Notes      *string    `json:"notes,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// Validate checks CreateBookingRequest fields.
func (r *CreateBookingRequest) Validate() error {
	if strings.TrimSpace(r.CustomerID) == "" {
		return ErrMissingCustomerID
	}

	if len(r.CustomerID) > 255 {
		return ErrFieldTooLong("customer_id", 255)
	}

	if r.Notes != nil && len(*r.Notes) > 2000 {
		return ErrFieldTooLong("notes", 2000)
	}

	if r.ExpiresAt != nil && !r.ExpiresAt.After(time.Now()) {
		return fmt.Errorf("expires_at must be in the future")
	}

	return nil
}
