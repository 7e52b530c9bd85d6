// Package httputil provides the shared JSON envelope helpers.
package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error half of the response envelope.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorEnvelope is written for every failed request.
type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// RespondError writes a standardized JSON error response and aborts the request.
func RespondError(c *gin.Context, status int, code, message string) {
	RespondErrorDetails(c, status, code, message, nil)
}

// RespondErrorDetails is RespondError with a details payload.
func RespondErrorDetails(c *gin.Context, status int, code, message string, details any) {
	body := ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}

	if rid, exists := c.Get("request_id"); exists {
		if s, ok := rid.(string); ok {
			body.RequestID = s
		}
	}

	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

// RespondOK writes {success: true, data: ...}.
func RespondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// RespondList writes a paginated list envelope.
func RespondList(c *gin.Context, data any, hasMore bool) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "has_more": hasMore})
}
