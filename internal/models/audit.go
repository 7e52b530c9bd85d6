package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction names a recorded state change.
type AuditAction string

// Audit actions.
const (
	ActionApprove  AuditAction = "APPROVE"
	ActionReject   AuditAction = "REJECT"
	ActionArchive  AuditAction = "ARCHIVE"
	ActionMarkSold AuditAction = "MARK_SOLD"
	ActionResubmit AuditAction = "RESUBMIT"
)

// AuditEntityProperty is the entity name for property transitions.
const AuditEntityProperty = "property"

// AuditEntry is one immutable row of the approval audit log.
type AuditEntry struct {
	ID          int64          `json:"id"`
	Entity      string         `json:"entity"`
	EntityID    uuid.UUID      `json:"entity_id"`
	Action      AuditAction    `json:"action"`
	ActorID     string         `json:"actor_id"`
	ActorRole   Role           `json:"actor_role"`
	BeforeState map[string]any `json:"before_state"`
	AfterState  map[string]any `json:"after_state"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ApprovalHistoryEntry is the history view of an audit entry.
type ApprovalHistoryEntry = AuditEntry

// AuditQueryOpts holds filters for querying the audit log.
type AuditQueryOpts struct {
	EntityID *uuid.UUID
	ActorID  string
	Action   AuditAction
	Since    *time.Time
	Limit    int
	Offset   int
}
