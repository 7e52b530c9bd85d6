package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/domain"
	"github.com/estatedesk/backoffice/internal/metrics"
	"github.com/estatedesk/backoffice/internal/models"
)

// Compile-time check: *BookingService must satisfy domain.BookingService.
var _ domain.BookingService = (*BookingService)(nil)

// BookingStore is the data-access interface BookingService depends on.
type BookingStore interface {
	CreateBooking(ctx context.Context, propertyID uuid.UUID, actor models.Identity, req models.CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListBookings(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]models.Booking, bool, error)
	CloseBooking(ctx context.Context, id uuid.UUID, target models.BookingStatus) (*models.Booking, error)
	ExpireDue(ctx context.Context, now time.Time) ([]models.Booking, error)
}

// BookingService manages customer holds on active properties.
type BookingService struct {
	store      BookingStore
	properties PropertyReader
	notifier   domain.Notifier
	holdTTL    time.Duration
	log        *logrus.Logger
	now        func() time.Time
}

// NewBookingService creates a BookingService. holdTTL is the default hold
// length when a request does not set expires_at.
func NewBookingService(
	store BookingStore, properties PropertyReader, notifier domain.Notifier, holdTTL time.Duration, log *logrus.Logger,
) *BookingService {
	return &BookingService{
		store:      store,
		properties: properties,
		notifier:   notifier,
		holdTTL:    holdTTL,
		log:        log,
		now:        time.Now,
	}
}

// CreateBooking places an ACTIVE hold on an active property.
func (s *BookingService) CreateBooking(
	ctx context.Context, actor models.Identity, propertyID uuid.UUID, req models.CreateBookingRequest,
) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, models.Invalid(err)
	}

	if req.ExpiresAt == nil {
		exp := s.now().Add(s.holdTTL).UTC()
		req.ExpiresAt = &exp
	}

	b, err := s.store.CreateBooking(ctx, propertyID, actor, req)
	if err != nil {
		if errors.Is(err, models.ErrBookingConflict) {
			metrics.BookingConflicts.Inc()
		}

		return nil, err
	}

	s.notifyBooking(ctx, actor, b, models.NotifyBookingCreated)

	return b, nil
}

// GetBooking returns a single booking (pass-through).
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// ListBookings returns a property's bookings, newest first.
func (s *BookingService) ListBookings(
	ctx context.Context, propertyID uuid.UUID, limit, offset int,
) ([]models.Booking, bool, error) {
	if _, err := s.properties.GetProperty(ctx, propertyID); err != nil {
		return nil, false, err
	}

	return s.store.ListBookings(ctx, propertyID, limit, offset)
}

// CancelBooking releases an ACTIVE hold.
func (s *BookingService) CancelBooking(ctx context.Context, actor models.Identity, id uuid.UUID) (*models.Booking, error) {
	return s.close(ctx, actor, id, models.BookingCancelled)
}

// ConvertBooking marks an ACTIVE hold as converted into a deal.
func (s *BookingService) ConvertBooking(ctx context.Context, actor models.Identity, id uuid.UUID) (*models.Booking, error) {
	return s.close(ctx, actor, id, models.BookingConverted)
}

func (s *BookingService) close(
	ctx context.Context, actor models.Identity, id uuid.UUID, target models.BookingStatus,
) (*models.Booking, error) {
	b, err := s.store.CloseBooking(ctx, id, target)
	if err != nil {
		return nil, err
	}

	s.notifyBooking(ctx, actor, b, models.NotifyBookingClosed)

	return b, nil
}

// ExpireDue expires every ACTIVE hold whose expiry has passed and notifies
// the followers of each. It returns the number of bookings expired.
func (s *BookingService) ExpireDue(ctx context.Context) (int, error) {
	expired, err := s.store.ExpireDue(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}

	for i := range expired {
		s.notifyBooking(ctx, systemActor, &expired[i], models.NotifyBookingClosed)
	}

	if len(expired) > 0 {
		metrics.BookingsExpired.Add(float64(len(expired)))
		s.log.WithField("count", len(expired)).Info("bookings.expired")
	}

	return len(expired), nil
}

// systemActor attributes scheduled work. It never matches a real user, so
// nobody is excluded from the resulting notifications.
var systemActor = models.Identity{UserID: "system:scheduler"}

// notifyBooking tells the property's stakeholders and the booking's creator
// about a booking event.
func (s *BookingService) notifyBooking(
	ctx context.Context, actor models.Identity, b *models.Booking, typ models.NotificationType,
) {
	detail := map[string]any{
		"booking_id":  b.ID.String(),
		"status":      string(b.Status),
		"customer_id": b.CustomerID,
	}

	recipients := []string{b.CreatedBy}

	p, err := s.properties.GetProperty(ctx, b.PropertyID)
	if err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("loading property for booking notification")
	} else {
		recipients = append(recipients, p.Stakeholders()...)
	}

	seen := make(map[string]bool, len(recipients))
	for _, r := range recipients {
		if r == "" || r == actor.UserID || seen[r] {
			continue
		}
		seen[r] = true

		s.notifier.Notify(models.Notification{
			RecipientID: r,
			Type:        typ,
			PropertyID:  b.PropertyID,
			Detail:      detail,
		})
	}
}
