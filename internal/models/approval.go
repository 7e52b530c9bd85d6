package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MinRejectReasonLength is the minimum rune count of a rejection reason.
const MinRejectReasonLength = 10

const maxCommentLen = 2000

// StepStatus is the state of one approval step.
type StepStatus string

// Step statuses.
const (
	StepPending  StepStatus = "pending"
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
	StepSkipped  StepStatus = "skipped"
)

// ApprovalStep is one persisted row of an approval round.
type ApprovalStep struct {
	ID           uuid.UUID  `json:"id"`
	PropertyID   uuid.UUID  `json:"property_id"`
	Round        int        `json:"round"`
	StepOrder    int        `json:"step_order"`
	StepName     string     `json:"step_name"`
	RequiredRole Role       `json:"required_role"`
	Status       StepStatus `json:"status"`
	ActedBy      *string    `json:"acted_by,omitempty"`
	ActedRole    *Role      `json:"acted_role,omitempty"`
	ActedAt      *time.Time `json:"acted_at,omitempty"`
	Comments     *string    `json:"comments,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// StepSeed describes a step to create when a round starts.
type StepSeed struct {
	Order        int
	Name         string
	RequiredRole Role
}

// ApproveRequest is the body of POST /properties/:id/approve.
type ApproveRequest struct {
	Comments *string `json:"comments,omitempty"`
}

// Validate checks ApproveRequest fields.
func (r *ApproveRequest) Validate() error {
	if r.Comments != nil && len(*r.Comments) > maxCommentLen {
		return ErrFieldTooLong("comments", maxCommentLen)
	}

	return nil
}

// RejectRequest is the body of POST /properties/:id/reject.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Validate enforces the minimum reason length before any state is touched.
func (r *RejectRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)

	if utf8.RuneCountInString(r.Reason) < MinRejectReasonLength {
		return ErrReasonTooShort
	}

	if len(r.Reason) > maxCommentLen {
		return ErrFieldTooLong("reason", maxCommentLen)
	}

	return nil
}

// LifecycleRequest is the body of archive, mark-sold and resubmit calls.
type LifecycleRequest struct {
	Comments *string `json:"comments,omitempty"`
}

// Validate checks LifecycleRequest fields.
func (r *LifecycleRequest) Validate() error {
	if r.Comments != nil && len(*r.Comments) > maxCommentLen {
		return ErrFieldTooLong("comments", maxCommentLen)
	}

	return nil
}

// TransitionRequest is everything the executor needs to apply one decision.
type TransitionRequest struct {
	PropertyID     uuid.UUID
	Action         AuditAction
	ExpectedStatus PropertyStatus
	ExpectedRound  int
	NextStatus     PropertyStatus
	Actor          Identity
	Comments       *string
	Reason         *string

	// Step is the approval step being acted on; nil for lifecycle actions.
	Step *StepSeed
	// Plan seeds the round's steps the first time any step is acted on.
	Plan []StepSeed
}

// TransitionResult is returned after a committed transition.
type TransitionResult struct {
	PropertyID     uuid.UUID      `json:"property_id"`
	PreviousStatus PropertyStatus `json:"previous_status"`
	NewStatus      PropertyStatus `json:"new_status"`
	AuditLogID     int64          `json:"audit_log_id"`
	Step           *ApprovalStep  `json:"step,omitempty"`
	BookingsClosed int64          `json:"bookings_closed,omitempty"`
	Property       *Property      `json:"-"`
}
