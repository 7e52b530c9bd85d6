// Package domain defines the canonical service interfaces shared by the HTTP
// layer and the services that implement them. Consumers should depend on
// these interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/google/uuid"

	"github.com/estatedesk/backoffice/internal/models"
)

// ApprovalService runs the property approval workflow and lifecycle actions.
type ApprovalService interface {
	PendingApprovals(ctx context.Context, limit, offset int) ([]models.PendingApproval, bool, error)
	Approve(ctx context.Context, actor models.Identity, id uuid.UUID, req models.ApproveRequest) (*models.TransitionResult, error)
	Reject(ctx context.Context, actor models.Identity, id uuid.UUID, req models.RejectRequest) (*models.TransitionResult, error)
	Archive(ctx context.Context, actor models.Identity, id uuid.UUID, req models.LifecycleRequest) (*models.TransitionResult, error)
	MarkSold(ctx context.Context, actor models.Identity, id uuid.UUID, req models.LifecycleRequest) (*models.TransitionResult, error)
	Resubmit(ctx context.Context, actor models.Identity, id uuid.UUID, req models.LifecycleRequest) (*models.TransitionResult, error)
	History(ctx context.Context, id uuid.UUID, limit, offset int) ([]models.ApprovalHistoryEntry, bool, error)
	Steps(ctx context.Context, id uuid.UUID) ([]models.ApprovalStep, error)
}

// PropertyService defines property intake, reads and draft edits.
type PropertyService interface {
	CreateProperty(ctx context.Context, actor models.Identity, req models.CreatePropertyRequest) (*models.Property, error)
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListProperties(ctx context.Context, opts models.PropertyListOpts) ([]models.Property, bool, error)
	UpdateProperty(ctx context.Context, actor models.Identity, id uuid.UUID, req models.UpdatePropertyRequest) (*models.Property, error)
}

// BookingService defines the booking lifecycle.
type BookingService interface {
	CreateBooking(ctx context.Context, actor models.Identity, propertyID uuid.UUID, req models.CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListBookings(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]models.Booking, bool, error)
	CancelBooking(ctx context.Context, actor models.Identity, id uuid.UUID) (*models.Booking, error)
	ConvertBooking(ctx context.Context, actor models.Identity, id uuid.UUID) (*models.Booking, error)
}

// AuditService defines read access to the append-only audit log.
type AuditService interface {
	QueryAudit(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
}

// Notifier accepts fire-and-forget notifications. Notify must not block.
type Notifier interface {
	Notify(n models.Notification)
}

// Dispatcher delivers a notification to one sink (pg_notify, AMQP).
type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, n models.Notification) error
}
