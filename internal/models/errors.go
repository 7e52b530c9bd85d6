package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation.
var (
	ErrMissingTitle      = errors.New("title is required")
	ErrMissingAddress    = errors.New("address is required")
	ErrMissingPrice      = errors.New("price_azn must be greater than zero")
	ErrMissingCustomerID = errors.New("customer_id is required")
	ErrReasonTooShort    = fmt.Errorf("reason must be at least %d characters", MinRejectReasonLength)
	ErrEmptyUpdate       = errors.New("no fields to update")
)

// Sentinel errors for entity lookups.
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrBookingNotFound  = errors.New("booking not found")
)

// Sentinel errors for state and concurrency failures.
var (
	// ErrConcurrentUpdate means another actor changed the row between the
	// policy decision and the write (maps to HTTP 409 CONFLICT).
	ErrConcurrentUpdate = errors.New("property was modified concurrently")

	// ErrBookingConflict means the property already has an ACTIVE booking.
	ErrBookingConflict = errors.New("property already has an active booking")

	// ErrPropertyNotBookable means the property status is not active.
	ErrPropertyNotBookable = errors.New("property is not available for booking")

	// ErrBookingClosed means the booking is already in a terminal state.
	ErrBookingClosed = errors.New("booking is no longer active")

	// ErrNotEditable means the property left the draft states (pending, rejected).
	ErrNotEditable = errors.New("property can only be edited while pending or rejected")
)

// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("duplicate key")

// ErrListingFields indicates the listing-type conditional field requirements are not met.
var ErrListingFields = errors.New("listing type field requirements not met")

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}

// Denial codes returned by the approval policy.
const (
	DenyInvalidStatus           = "INVALID_STATUS"
	DenyInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
)

// DeniedError carries a policy denial across the service boundary.
type DeniedError struct {
	Code   string
	Reason string
}

// Error implements the error interface.
func (e *DeniedError) Error() string {
	return e.Code + ": " + e.Reason
}

// IsDenied reports whether err is a policy denial and returns it.
func IsDenied(err error) (*DeniedError, bool) {
	var d *DeniedError
	if errors.As(err, &d) {
		return d, true
	}

	return nil, false
}

// ValidationError marks a request that failed field validation
// (maps to HTTP 400 VALIDATION_ERROR).
type ValidationError struct {
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying validation failure.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid wraps err as a ValidationError. A nil err stays nil.
func Invalid(err error) error {
	if err == nil {
		return nil
	}

	return &ValidationError{Err: err}
}
