package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/httputil"
	"github.com/estatedesk/backoffice/internal/metrics"
	"github.com/estatedesk/backoffice/internal/middleware"
	"github.com/estatedesk/backoffice/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeTokenRequired    = middleware.CodeTokenRequired
	ErrCodeInvalidToken     = middleware.CodeInvalidToken
	ErrCodeForbidden        = middleware.CodeInsufficientPermissions
	ErrCodeInvalidStatus    = models.DenyInvalidStatus
	ErrCodePropertyNotFound = "PROPERTY_NOT_FOUND"
	ErrCodeBookingNotFound  = "BOOKING_NOT_FOUND"
	ErrCodeBookingConflict  = "BOOKING_CONFLICT"
	ErrCodeNotBookable      = "PROPERTY_NOT_BOOKABLE"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeValidationError  = "VALIDATION_ERROR"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInternalError    = "SERVER_ERROR"
	internalErrorMessage    = "internal server error"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// apiError is the HTTP form of a service error.
type apiError struct {
	status  int
	code    string
	message string
}

// classify maps a service error to its HTTP status and code. ok is false for
// errors that are not part of the API contract.
func classify(err error) (apiError, bool) {
	if d, isDenied := models.IsDenied(err); isDenied {
		status := http.StatusBadRequest
		if d.Code == models.DenyInsufficientPermissions {
			status = http.StatusForbidden
		}
		return apiError{status, d.Code, d.Reason}, true
	}

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return apiError{http.StatusBadRequest, ErrCodeValidationError, ve.Error()}, true
	}

	switch {
	case errors.Is(err, models.ErrPropertyNotFound):
		return apiError{http.StatusNotFound, ErrCodePropertyNotFound, "property not found"}, true
	case errors.Is(err, models.ErrBookingNotFound):
		return apiError{http.StatusNotFound, ErrCodeBookingNotFound, "booking not found"}, true
	case errors.Is(err, models.ErrConcurrentUpdate):
		return apiError{http.StatusConflict, ErrCodeConflict, "property was modified concurrently; re-fetch and retry"}, true
	case errors.Is(err, models.ErrBookingConflict):
		return apiError{http.StatusConflict, ErrCodeBookingConflict, "property already has an active booking"}, true
	case errors.Is(err, models.ErrDuplicateKey):
		return apiError{http.StatusConflict, ErrCodeConflict, "a record with this key already exists"}, true
	case errors.Is(err, models.ErrPropertyNotBookable):
		return apiError{http.StatusBadRequest, ErrCodeNotBookable, "property is not available for booking"}, true
	case errors.Is(err, models.ErrBookingClosed):
		return apiError{http.StatusBadRequest, ErrCodeInvalidStatus, "booking is no longer active"}, true
	case errors.Is(err, models.ErrNotEditable):
		return apiError{http.StatusBadRequest, ErrCodeInvalidStatus, err.Error()}, true
	case errors.Is(err, models.ErrListingFields):
		return apiError{http.StatusBadRequest, ErrCodeValidationError, err.Error()}, true
	}

	return apiError{}, false
}

// respondServiceError answers err with its mapped code. Unmapped errors are
// logged with op and answered as SERVER_ERROR.
func respondServiceError(c *gin.Context, log *logrus.Logger, op string, err error) {
	if e, ok := classify(err); ok {
		respondError(c, e.status, e.code, e.message)
		return
	}

	log.WithError(err).WithField("request_id", c.GetString(middleware.RequestIDKey)).Error(op)
	respondError(c, http.StatusInternalServerError, ErrCodeInternalError, internalErrorMessage)
}
