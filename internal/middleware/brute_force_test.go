package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/estatedesk/backoffice/internal/middleware"
	"github.com/estatedesk/backoffice/internal/models"
)

func newTestGuard() (*middleware.BruteForceGuard, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	return middleware.NewBruteForceGuard(ctx, quietLogger()), cancel
}

func TestBruteForce_FailureIncrementsAndBlocks(t *testing.T) {
	guard, cancel := newTestGuard()
	defer cancel()

	for range 10 {
		guard.RecordFailure("10.0.0.1")
	}

	if !guard.IsBlocked("10.0.0.1") {
		t.Fatal("ip should be blocked after max failures")
	}
	if guard.IsBlocked("10.0.0.2") {
		t.Fatal("other ips must not be affected")
	}
}

func TestBruteForce_NotBlockedBeforeMax(t *testing.T) {
	guard, cancel := newTestGuard()
	defer cancel()

	for range 9 {
		guard.RecordFailure("10.0.0.1")
	}

	if guard.IsBlocked("10.0.0.1") {
		t.Fatal("ip should not be blocked before max failures")
	}
}

func TestBruteForce_AuthenticateFeedsGuard(t *testing.T) {
	guard, cancel := newTestGuard()
	defer cancel()

	verifier := &mockVerifier{valid: map[string]models.Identity{}}

	r := gin.New()
	r.Use(middleware.BruteForceMiddleware(guard), middleware.Authenticate(verifier, quietLogger(), guard))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	var last int
	for range 11 {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.RemoteAddr = "9.9.9.9:1000"
		req.Header.Set("Authorization", "Bearer forged")
		r.ServeHTTP(w, req)
		last = w.Code
	}

	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated invalid tokens, got %d", last)
	}
}

func TestBruteForce_MiddlewarePassesUnblocked(t *testing.T) {
	guard, cancel := newTestGuard()
	defer cancel()

	r := gin.New()
	r.Use(middleware.BruteForceMiddleware(guard))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.RemoteAddr = "8.8.8.8:1000"
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unblocked client should pass, got %d", w.Code)
	}
}
