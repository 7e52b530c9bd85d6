package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/models"
	"github.com/estatedesk/backoffice/internal/policy"
)

// IdentityKey is the gin context key holding the verified models.Identity.
const IdentityKey = "identity"

// Authentication and authorization error codes.
const (
	CodeTokenRequired           = "TOKEN_REQUIRED"
	CodeInvalidToken            = "INVALID_TOKEN"
	CodeInsufficientPermissions = models.DenyInsufficientPermissions
	CodeRateLimited             = "RATE_LIMITED"
)

// IdentityVerifier turns a bearer token into the caller identity.
type IdentityVerifier interface {
	Verify(token string) (models.Identity, error)
}

// Authenticate verifies the bearer token and stores the caller identity.
// A missing token answers TOKEN_REQUIRED; a malformed, expired or badly
// signed one answers INVALID_TOKEN. Failures are tracked per client IP when
// a guard is given.
func Authenticate(verifier IdentityVerifier, log *logrus.Logger, guards ...*BruteForceGuard) gin.HandlerFunc {
	var guard *BruteForceGuard
	if len(guards) > 0 {
		guard = guards[0]
	}

	return func(c *gin.Context) {
		token := ExtractBearerToken(c)
		if token == "" {
			respondError(c, http.StatusUnauthorized, CodeTokenRequired, "bearer token required")
			return
		}

		id, err := verifier.Verify(token)
		if err != nil {
			logAuthFailure(log, c, err)

			if guard != nil {
				guard.RecordFailure(c.ClientIP())
			}

			respondError(c, http.StatusUnauthorized, CodeInvalidToken, "invalid or expired token")
			return
		}

		c.Set(IdentityKey, id)
		c.Next()
	}
}

// RequireCapability rejects callers whose role lacks capability.
func RequireCapability(capability policy.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, CodeTokenRequired, "bearer token required")
			return
		}

		if !policy.Permits(id.Role, capability) {
			respondError(c, http.StatusForbidden, CodeInsufficientPermissions,
				"role "+string(id.Role)+" lacks permission "+string(capability))
			return
		}

		c.Next()
	}
}

// IdentityFrom returns the identity set by Authenticate.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return models.Identity{}, false
	}

	id, ok := v.(models.Identity)

	return id, ok
}

// ExtractBearerToken extracts the token from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func logAuthFailure(log *logrus.Logger, c *gin.Context, err error) {
	log.WithError(err).WithFields(logrus.Fields{
		"client_ip":  c.ClientIP(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"request_id": c.GetString(RequestIDKey),
	}).Warn("authentication failed")
}
