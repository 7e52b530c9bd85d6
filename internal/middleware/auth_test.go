package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/httputil"
	"github.com/estatedesk/backoffice/internal/middleware"
	"github.com/estatedesk/backoffice/internal/models"
	"github.com/estatedesk/backoffice/internal/policy"
)

type mockVerifier struct {
	valid map[string]models.Identity
}

func (m *mockVerifier) Verify(token string) (models.Identity, error) {
	if id, ok := m.valid[token]; ok {
		return id, nil
	}
	return models.Identity{}, errors.New("token is malformed")
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httputil.ErrorEnvelope {
	t.Helper()

	var env httputil.ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding error envelope: %v (body %s)", err, w.Body.String())
	}
	return env
}

func TestAuthenticate(t *testing.T) {
	verifier := &mockVerifier{valid: map[string]models.Identity{
		"good-token": {UserID: "u1", Role: models.RoleManager},
	}}

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
		wantErr    string
	}{
		{"valid token", "Bearer good-token", http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, middleware.CodeTokenRequired},
		{"invalid token", "Bearer bad-token", http.StatusUnauthorized, middleware.CodeInvalidToken},
		{"no bearer prefix", "good-token", http.StatusUnauthorized, middleware.CodeTokenRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.Authenticate(verifier, quietLogger()))
			r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("got %d, want %d", w.Code, tt.wantCode)
			}

			if tt.wantErr != "" {
				env := decodeError(t, w)
				if env.Success || env.Error.Code != tt.wantErr {
					t.Errorf("error code = %q, want %q", env.Error.Code, tt.wantErr)
				}
			}
		})
	}
}

func TestAuthenticate_SetsIdentity(t *testing.T) {
	verifier := &mockVerifier{valid: map[string]models.Identity{
		"t1": {UserID: "agent-7", Role: models.RoleAgent},
	}}

	var got models.Identity
	r := gin.New()
	r.Use(middleware.Authenticate(verifier, quietLogger()))
	r.GET("/test", func(c *gin.Context) {
		got, _ = middleware.IdentityFrom(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer t1")
	r.ServeHTTP(w, req)

	if got.UserID != "agent-7" || got.Role != models.RoleAgent {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestRequireCapability(t *testing.T) {
	verifier := &mockVerifier{valid: map[string]models.Identity{
		"director": {UserID: "d1", Role: models.RoleDirector},
		"agent":    {UserID: "a1", Role: models.RoleAgent},
	}}

	tests := []struct {
		token    string
		wantCode int
	}{
		{"director", http.StatusOK},
		{"agent", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.Authenticate(verifier, quietLogger()), middleware.RequireCapability(policy.CapViewAudit))
			r.GET("/audit", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/audit", http.NoBody)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("got %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusForbidden && decodeError(t, w).Error.Code != middleware.CodeInsufficientPermissions {
				t.Error("expected INSUFFICIENT_PERMISSIONS")
			}
		})
	}
}

func TestRequireCapability_WithoutIdentity(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequireCapability(policy.CapReviewQueue))
	r.GET("/queue", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/queue", http.NoBody))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", w.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"abc123", ""},
		{"", ""},
		{"Bearer ", ""},
		{"bearer abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			got := middleware.ExtractBearerToken(c)
			if got != tt.want {
				t.Errorf("ExtractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
