package client

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Property is a listing as returned by the back-office API.
type Property struct {
	ID                         string              `json:"id"`
	Code                       string              `json:"code"`
	PropertyCategory           string              `json:"property_category"`
	ListingType                string              `json:"listing_type"`
	Category                   string              `json:"category"`
	Status                     string              `json:"status"`
	Title                      string              `json:"title"`
	Description                *string             `json:"description,omitempty"`
	Address                    string              `json:"address"`
	PriceAZN                   decimal.Decimal     `json:"price_azn"`
	AreaSqm                    decimal.NullDecimal `json:"area_sqm"`
	Rooms                      *int                `json:"rooms,omitempty"`
	OwnerFirstName             *string             `json:"owner_first_name,omitempty"`
	OwnerLastName              *string             `json:"owner_last_name,omitempty"`
	OwnerContact               *string             `json:"owner_contact,omitempty"`
	BrokerageCommissionPercent decimal.NullDecimal `json:"brokerage_commission_percent"`
	BuyPriceAZN                decimal.NullDecimal `json:"buy_price_azn"`
	ApprovalRound              int                 `json:"approval_round"`
	CreatedByID                string              `json:"created_by_id"`
	AgentID                    *string             `json:"agent_id,omitempty"`
	CreatedAt                  time.Time           `json:"created_at"`
	UpdatedAt                  time.Time           `json:"updated_at"`
	ArchivedAt                 *time.Time          `json:"archived_at,omitempty"`
	SoldAt                     *time.Time          `json:"sold_at,omitempty"`
}

// PendingApproval is a pending property with the step awaiting action.
type PendingApproval struct {
	Property
	CurrentStep *string `json:"current_step,omitempty"`
	StepRole    *string `json:"step_role,omitempty"`
}

// CreatePropertyRequest is the payload for creating a property.
type CreatePropertyRequest struct {
	Code                       string              `json:"code,omitempty"`
	PropertyCategory           string              `json:"property_category"`
	ListingType                string              `json:"listing_type"`
	Category                   string              `json:"category"`
	Title                      string              `json:"title"`
	Description                *string             `json:"description,omitempty"`
	Address                    string              `json:"address"`
	PriceAZN                   decimal.Decimal     `json:"price_azn"`
	AreaSqm                    decimal.NullDecimal `json:"area_sqm"`
	Rooms                      *int                `json:"rooms,omitempty"`
	OwnerFirstName             *string             `json:"owner_first_name,omitempty"`
	OwnerLastName              *string             `json:"owner_last_name,omitempty"`
	OwnerContact               *string             `json:"owner_contact,omitempty"`
	BrokerageCommissionPercent decimal.NullDecimal `json:"brokerage_commission_percent"`
	BuyPriceAZN                decimal.NullDecimal `json:"buy_price_azn"`
	AgentID                    *string             `json:"agent_id,omitempty"`
}

// UpdatePropertyRequest edits draft fields. Nil fields are left unchanged.
type UpdatePropertyRequest struct {
	ListingType                *string          `json:"listing_type,omitempty"`
	Title                      *string          `json:"title,omitempty"`
	Description                *string          `json:"description,omitempty"`
	Address                    *string          `json:"address,omitempty"`
	PriceAZN                   *decimal.Decimal `json:"price_azn,omitempty"`
	AreaSqm                    *decimal.Decimal `json:"area_sqm,omitempty"`
	Rooms                      *int             `json:"rooms,omitempty"`
	OwnerFirstName             *string          `json:"owner_first_name,omitempty"`
	OwnerLastName              *string          `json:"owner_last_name,omitempty"`
	OwnerContact               *string          `json:"owner_contact,omitempty"`
	BrokerageCommissionPercent *decimal.Decimal `json:"brokerage_commission_percent,omitempty"`
	BuyPriceAZN                *decimal.Decimal `json:"buy_price_azn,omitempty"`
	AgentID                    *string          `json:"agent_id,omitempty"`
}

// PropertyListOptions filters property listings.
type PropertyListOptions struct {
	Status      string
	ListingType string
	Limit       int
	Offset      int
}

// ApprovalStep is one step of an approval round.
type ApprovalStep struct {
	ID           string     `json:"id"`
	PropertyID   string     `json:"property_id"`
	Round        int        `json:"round"`
	StepOrder    int        `json:"step_order"`
	StepName     string     `json:"step_name"`
	RequiredRole string     `json:"required_role"`
	Status       string     `json:"status"`
	ActedBy      *string    `json:"acted_by,omitempty"`
	ActedRole    *string    `json:"acted_role,omitempty"`
	ActedAt      *time.Time `json:"acted_at,omitempty"`
	Comments     *string    `json:"comments,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TransitionResult is returned by every approval and lifecycle action.
type TransitionResult struct {
	PropertyID string        `json:"property_id"`
	NewStatus  string        `json:"new_status"`
	AuditLogID int64         `json:"audit_log_id"`
	Step       *ApprovalStep `json:"step,omitempty"`
}

// AuditEntry is one row of the approval audit log.
type AuditEntry struct {
	ID          int64           `json:"id"`
	Entity      string          `json:"entity"`
	EntityID    string          `json:"entity_id"`
	Action      string          `json:"action"`
	ActorID     string          `json:"actor_id"`
	ActorRole   string          `json:"actor_role"`
	BeforeState json.RawMessage `json:"before_state"`
	AfterState  json.RawMessage `json:"after_state"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AuditQueryOptions filters audit queries.
type AuditQueryOptions struct {
	EntityID string
	ActorID  string
	Action   string
	Since    *time.Time
	Limit    int
	Offset   int
}

// Booking is a customer hold on an active property.
type Booking struct {
	ID         string     `json:"id"`
	PropertyID string     `json:"property_id"`
	CustomerID string     `json:"customer_id"`
	Status     string     `json:"status"`
	Notes      *string    `json:"notes,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

// CreateBookingRequest is the payload for booking a property.
type CreateBookingRequest struct {
	CustomerID string     `json:"customer_id"`
	Notes      *string    `json:"notes,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	SchemaVersion int     `json:"schema_version"`
	ApprovalModel string  `json:"approval_model"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadinessResponse is returned by GET /api/v1/ready.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
