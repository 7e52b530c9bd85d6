package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/estatedesk/backoffice/internal/models"
	"github.com/estatedesk/backoffice/internal/store"
)

func bookingRequest(customerID string) models.CreateBookingRequest {
	return models.CreateBookingRequest{
		CustomerID: customerID,
		ExpiresAt:  ptr(time.Now().Add(72 * time.Hour)),
	}
}

func countActiveBookings(t *testing.T, base store.Base, propertyID uuid.UUID) int {
	t.Helper()

	var n int
	if err := base.Pool.QueryRow(context.Background(),
		"SELECT count(*) FROM bookings WHERE property_id = $1 AND status = 'ACTIVE'", propertyID).Scan(&n); err != nil {
		t.Fatalf("counting bookings: %v", err)
	}

	return n
}

func TestCreateBooking_SecondActiveConflicts(t *testing.T) {
	base := setupTestBase(t)
	s := store.NewBookingStore(base)
	ctx := context.Background()
	p := createProperty(t, base, models.StatusActive)

	first, err := s.CreateBooking(ctx, p.ID, agent, bookingRequest("cust-1"))
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if first.Status != models.BookingActive {
		t.Errorf("expected ACTIVE, got %s", first.Status)
	}

	if _, err := s.CreateBooking(ctx, p.ID, agent, bookingRequest("cust-2")); !errors.Is(err, models.ErrBookingConflict) {
		t.Fatalf("expected ErrBookingConflict, got %v", err)
	}

	if n := countActiveBookings(t, base, p.ID); n != 1 {
		t.Errorf("expected exactly one active booking, got %d", n)
	}
}

func TestCreateBooking_ConcurrentInsertsOneWins(t *testing.T) {
	base := setupTestBase(t)
	s := store.NewBookingStore(base)
	p := createProperty(t, base, models.StatusActive)

	const callers = 8

	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.CreateBooking(context.Background(), p.ID, agent, bookingRequest(fmt.Sprintf("cust-%d", i)))
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, models.ErrBookingConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if ok != 1 {
		t.Errorf("expected exactly one booking to succeed, got %d", ok)
	}
	if n := countActiveBookings(t, base, p.ID); n != 1 {
		t.Errorf("expected exactly one active booking, got %d", n)
	}
}

func TestCreateBooking_NotBookable(t *testing.T) {
	base := setupTestBase(t)
	s := store.NewBookingStore(base)

	for _, status := range []models.PropertyStatus{
		models.StatusPending, models.StatusRejected, models.StatusArchived, models.StatusSold,
	} {
		t.Run(string(status), func(t *testing.T) {
			p := createProperty(t, base, status)

			_, err := s.CreateBooking(context.Background(), p.ID, agent, bookingRequest("cust-1"))
			if !errors.Is(err, models.ErrPropertyNotBookable) {
				t.Fatalf("expected ErrPropertyNotBookable, got %v", err)
			}
		})
	}
}

func TestCreateBooking_PropertyNotFound(t *testing.T) {
	base := setupTestBase(t)

	_, err := store.NewBookingStore(base).CreateBooking(context.Background(), uuid.New(), agent, bookingRequest("cust-1"))
	if !errors.Is(err, models.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
}

func TestCloseBooking(t *testing.T) {
	base := setupTestBase(t)
	s := store.NewBookingStore(base)
	ctx := context.Background()
	p := createProperty(t, base, models.StatusActive)

	b, err := s.CreateBooking(ctx, p.ID, agent, bookingRequest("cust-1"))
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	closed, err := s.CloseBooking(ctx, b.ID, models.BookingConverted)
	if err != nil {
		t.Fatalf("CloseBooking: %v", err)
	}
	if closed.Status != models.BookingConverted || closed.ClosedAt == nil {
		t.Errorf("unexpected closed booking %+v", closed)
	}

	if _, err := s.CloseBooking(ctx, b.ID, models.BookingCancelled); !errors.Is(err, models.ErrBookingClosed) {
		t.Errorf("expected ErrBookingClosed for terminal booking, got %v", err)
	}

	if _, err := s.CloseBooking(ctx, uuid.New(), models.BookingCancelled); !errors.Is(err, models.ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}

	// A new hold is allowed once the previous one is terminal.
	if _, err := s.CreateBooking(ctx, p.ID, agent, bookingRequest("cust-2")); err != nil {
		t.Errorf("expected rebooking to succeed, got %v", err)
	}
}

func TestExpireDue(t *testing.T) {
	base := setupTestBase(t)
	s := store.NewBookingStore(base)
	ctx := context.Background()
	p := createProperty(t, base, models.StatusActive)

	b, err := s.CreateBooking(ctx, p.ID, agent, models.CreateBookingRequest{
		CustomerID: "cust-1",
		ExpiresAt:  ptr(time.Now().Add(time.Minute)),
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	expired, err := s.ExpireDue(ctx, time.Now().Add(2*time.Minute))
	if err != nil {
		t.Fatalf("ExpireDue: %v", err)
	}

	found := false
	for _, e := range expired {
		if e.ID == b.ID {
			found = true
			if e.Status != models.BookingExpired {
				t.Errorf("expected EXPIRED, got %s", e.Status)
			}
		}
	}
	if !found {
		t.Error("expected booking to be expired")
	}

	list, _, err := s.ListBookings(ctx, p.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if len(list) != 1 || list[0].Status != models.BookingExpired {
		t.Errorf("unexpected bookings %+v", list)
	}
}
