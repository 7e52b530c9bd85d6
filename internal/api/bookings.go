package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/domain"
	"github.com/estatedesk/backoffice/internal/httputil"
	"github.com/estatedesk/backoffice/internal/models"
)

// BookingHandler serves customer holds on active properties.
type BookingHandler struct {
	svc domain.BookingService
	log *logrus.Logger
}

// NewBookingHandler creates a BookingHandler with the given service and logger.
func NewBookingHandler(svc domain.BookingService, log *logrus.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, log: log}
}

// Create handles POST /properties/:id/bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}

	propertyID, ok := pathUUID(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	b, err := h.svc.CreateBooking(c.Request.Context(), who, propertyID, req)
	if err != nil {
		respondServiceError(c, h.log, "creating booking", err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"action":      "book",
		"booking_id":  b.ID,
		"property_id": propertyID,
		"user_id":     who.UserID,
	}).Info("audit")

	httputil.RespondOK(c, http.StatusCreated, b)
}

// List handles GET /properties/:id/bookings.
func (h *BookingHandler) List(c *gin.Context) {
	propertyID, ok := pathUUID(c)
	if !ok {
		return
	}

	limit, offset := page(c)

	items, hasMore, err := h.svc.ListBookings(c.Request.Context(), propertyID, limit, offset)
	if err != nil {
		respondServiceError(c, h.log, "listing bookings", err)
		return
	}

	httputil.RespondList(c, items, hasMore)
}

// Get handles GET /bookings/:id.
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	b, err := h.svc.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, "getting booking", err)
		return
	}

	httputil.RespondOK(c, http.StatusOK, b)
}

// Cancel handles POST /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.close(c, "cancel_booking", h.svc.CancelBooking)
}

// Convert handles POST /bookings/:id/convert.
func (h *BookingHandler) Convert(c *gin.Context) {
	h.close(c, "convert_booking", h.svc.ConvertBooking)
}

func (h *BookingHandler) close(
	c *gin.Context,
	action string,
	fn func(context.Context, models.Identity, uuid.UUID) (*models.Booking, error),
) {
	who, ok := actor(c)
	if !ok {
		return
	}

	id, ok := pathUUID(c)
	if !ok {
		return
	}

	b, err := fn(c.Request.Context(), who, id)
	if err != nil {
		respondServiceError(c, h.log, action, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"action":     action,
		"booking_id": id,
		"user_id":    who.UserID,
		"status":     b.Status,
	}).Info("audit")

	httputil.RespondOK(c, http.StatusOK, b)
}
