package client

import (
	"context"
	"net/url"
)

// BookingService handles customer holds.
type BookingService struct {
	c *Client
}

// Create books an active property for a customer.
func (s *BookingService) Create(ctx context.Context, propertyID string, req *CreateBookingRequest) (*Booking, error) {
	var b Booking
	if err := s.c.post(ctx, propertyPath(propertyID, "bookings"), req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns the bookings of a property, newest first.
func (s *BookingService) List(ctx context.Context, propertyID string, limit, offset int) ([]Booking, bool, error) {
	var items []Booking
	hasMore, err := s.c.get(ctx, propertyPath(propertyID, "bookings"), pageParams(nil, limit, offset), &items)
	if err != nil {
		return nil, false, err
	}
	return items, hasMore, nil
}

// Get returns a single booking by ID.
func (s *BookingService) Get(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	if _, err := s.c.get(ctx, "/api/v1/bookings/"+url.PathEscape(id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Cancel cancels an active booking.
func (s *BookingService) Cancel(ctx context.Context, id string) (*Booking, error) {
	return s.close(ctx, id, "cancel")
}

// Convert marks an active booking as converted into a deal.
func (s *BookingService) Convert(ctx context.Context, id string) (*Booking, error) {
	return s.close(ctx, id, "convert")
}

func (s *BookingService) close(ctx context.Context, id, action string) (*Booking, error) {
	var b Booking
	if err := s.c.post(ctx, "/api/v1/bookings/"+url.PathEscape(id)+"/"+action, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
