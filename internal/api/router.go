package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/dbpool"
	"github.com/estatedesk/backoffice/internal/domain"
	"github.com/estatedesk/backoffice/internal/middleware"
	"github.com/estatedesk/backoffice/internal/policy"
	"github.com/estatedesk/backoffice/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log           *logrus.Logger
	Pool          *dbpool.Pool
	Hub           *ws.Hub
	Approvals     domain.ApprovalService
	Properties    domain.PropertyService
	Bookings      domain.BookingService
	Audit         domain.AuditService
	Verifier      middleware.IdentityVerifier
	CORSOrigins   []string
	Version       string
	ApprovalModel string
}

// Router-level limits.
const (
	maxBodySize = 1 << 20 // 1 MB
	rateLimit   = 50      // requests per second per caller
	rateBurst   = 100     // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.PrometheusMiddleware())
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, deps.Hub, log, deps.Version, deps.ApprovalModel)
	approvals := NewApprovalHandler(deps.Approvals, log)
	properties := NewPropertyHandler(deps.Properties, log)
	bookings := NewBookingHandler(deps.Bookings, log)
	audit := NewAuditHandler(deps.Audit, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Everything else requires a verified bearer token.
	guard := middleware.NewBruteForceGuard(ctx, log)
	api.Use(middleware.BruteForceMiddleware(guard))
	api.Use(middleware.Authenticate(deps.Verifier, log, guard))
	api.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())

	// Approval queue and workflow actions.
	api.GET("/approvals/pending", middleware.RequireCapability(policy.CapReviewQueue), approvals.Pending)
	api.POST("/properties/:id/approve", approvals.Approve)
	api.POST("/properties/:id/reject", approvals.Reject)
	api.POST("/properties/:id/archive", approvals.Archive)
	api.POST("/properties/:id/mark-sold", approvals.MarkSold)
	api.POST("/properties/:id/resubmit", approvals.Resubmit)
	api.GET("/properties/:id/approval-history", approvals.History)
	api.GET("/properties/:id/approval-steps", approvals.Steps)

	// Properties.
	api.POST("/properties", middleware.RequireCapability(policy.CapCreateProperty), properties.Create)
	api.GET("/properties", properties.List)
	api.GET("/properties/:id", properties.Get)
	api.PATCH("/properties/:id", properties.Update)

	// Bookings.
	book := middleware.RequireCapability(policy.CapBook)
	api.POST("/properties/:id/bookings", book, bookings.Create)
	api.GET("/properties/:id/bookings", book, bookings.List)
	api.GET("/bookings/:id", book, bookings.Get)
	api.POST("/bookings/:id/cancel", book, bookings.Cancel)
	api.POST("/bookings/:id/convert", book, bookings.Convert)

	// Audit.
	api.GET("/audit", middleware.RequireCapability(policy.CapViewAudit), audit.Query)

	// WebSocket endpoint.
	api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins, deps.Verifier))
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
