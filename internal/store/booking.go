package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/estatedesk/backoffice/internal/models"
)

// BookingStore handles customer holds on active properties.
//
// At most one ACTIVE booking per property is guaranteed by the partial unique
// index bookings_one_active_per_property. The pre-check in CreateBooking only
// produces a friendlier error; a unique violation on insert is mapped to the
// same models.ErrBookingConflict.
type BookingStore struct {
	Base
}

// NewBookingStore creates a new BookingStore.
func NewBookingStore(base Base) *BookingStore {
	return &BookingStore{Base: base}
}

// CreateBooking inserts an ACTIVE booking for an active property.
// req.ExpiresAt must be set by the caller.
func (s *BookingStore) CreateBooking(
	ctx context.Context,
	propertyID uuid.UUID,
	actor models.Identity,
	req models.CreateBookingRequest,
) (*models.Booking, error) {
	if req.ExpiresAt == nil {
		return nil, fmt.Errorf("creating booking: expires_at is required")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating booking: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	// FOR SHARE blocks a concurrent archive or sale until this insert commits.
	var status models.PropertyStatus
	err = tx.QueryRow(ctx, `SELECT status FROM properties WHERE id = $1 FOR SHARE`, propertyID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPropertyNotFound
		}

		return nil, fmt.Errorf("reading property status: %w", err)
	}

	if status != models.StatusActive {
		return nil, models.ErrPropertyNotBookable
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE property_id = $1 AND status = 'ACTIVE')`,
		propertyID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking active booking: %w", err)
	}

	if exists {
		return nil, models.ErrBookingConflict
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO bookings (property_id, customer_id, notes, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+bookingColumns,
		propertyID, req.CustomerID, req.Notes, *req.ExpiresAt, actor.UserID,
	)

	b, err := scanBooking(row.Scan)
	if err != nil {
		return nil, translatePgError(err, "inserting booking")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, translatePgError(err, "committing booking")
	}

	return b, nil
}

// GetBooking returns a booking by ID.
func (s *BookingStore) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	b, err := scanBooking(s.Pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrBookingNotFound
		}

		return nil, fmt.Errorf("getting booking: %w", err)
	}

	return b, nil
}

// ListBookings returns a property's bookings, newest first.
func (s *BookingStore) ListBookings(
	ctx context.Context, propertyID uuid.UUID, limit, offset int,
) ([]models.Booking, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	limit = clampLimit(limit)

	rows, err := s.Pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		WHERE property_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`,
		propertyID, limit+1, max(offset, 0),
	)
	if err != nil {
		return nil, false, fmt.Errorf("listing bookings: %w", err)
	}

	bookings, err := collectRows(rows, "booking", scanBooking)
	if err != nil {
		return nil, false, err
	}

	bookings, hasMore := trimPage(bookings, limit)

	return bookings, hasMore, nil
}

// CloseBooking moves an ACTIVE booking to a terminal status. A booking that
// is already terminal yields models.ErrBookingClosed.
func (s *BookingStore) CloseBooking(
	ctx context.Context, id uuid.UUID, target models.BookingStatus,
) (*models.Booking, error) {
	if !target.Terminal() {
		return nil, fmt.Errorf("closing booking: %q is not a terminal status", target)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		`UPDATE bookings SET status = $2, closed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'ACTIVE'
		RETURNING `+bookingColumns,
		id, target,
	)

	b, err := scanBooking(row.Scan)
	if err == nil {
		return b, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("closing booking: %w", err)
	}

	if _, getErr := s.GetBooking(ctx, id); getErr != nil {
		return nil, getErr
	}

	return nil, models.ErrBookingClosed
}

// ExpireDue moves every ACTIVE booking whose hold ended at or before now to
// EXPIRED and returns the expired rows.
func (s *BookingStore) ExpireDue(ctx context.Context, now time.Time) ([]models.Booking, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`UPDATE bookings SET status = 'EXPIRED', closed_at = NOW(), updated_at = NOW()
		WHERE status = 'ACTIVE' AND expires_at <= $1
		RETURNING `+bookingColumns,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("expiring bookings: %w", err)
	}

	return collectRows(rows, "expired booking", scanBooking)
}
