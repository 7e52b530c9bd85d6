package store

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/estatedesk/backoffice/internal/models"
)

// propertyColumns lists the columns selected for property queries.
const propertyColumns = `id, code, property_category, listing_type, category, status,
	title, description, address, price_azn, area_sqm, rooms,
	owner_first_name, owner_last_name, owner_contact,
	brokerage_commission_percent, buy_price_azn, approval_round,
	created_by_id, agent_id, updated_by,
	created_at, updated_at, archived_at, sold_at`

// stepColumns lists the columns selected for approval step queries.
const stepColumns = `id, property_id, round, step_order, step_name, required_role,
	status, acted_by, acted_role, acted_at, comments, created_at`

// auditColumns lists the columns selected for audit log queries.
const auditColumns = `id, entity, entity_id, action, actor_id, actor_role,
	before_state, after_state, metadata, created_at`

// bookingColumns lists the columns selected for booking queries.
const bookingColumns = `id, property_id, customer_id, status, notes, expires_at,
	created_by, created_at, updated_at, closed_at`

// scanProperty scans a single row into a models.Property.
func scanProperty(scan func(dest ...any) error) (*models.Property, error) {
	var p models.Property

	err := scan(
		&p.ID,
		&p.Code,
		&p.PropertyCategory,
		&p.ListingType,
		&p.Category,
		&p.Status,
		&p.Title,
		&p.Description,
		&p.Address,
		&p.PriceAZN,
		&p.AreaSqm,
		&p.Rooms,
		&p.OwnerFirstName,
		&p.OwnerLastName,
		&p.OwnerContact,
		&p.BrokerageCommissionPercent,
		&p.BuyPriceAZN,
		&p.ApprovalRound,
		&p.CreatedByID,
		&p.AgentID,
		&p.UpdatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.ArchivedAt,
		&p.SoldAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// scanStep scans a single row into a models.ApprovalStep.
func scanStep(scan func(dest ...any) error) (*models.ApprovalStep, error) {
	var s models.ApprovalStep

	err := scan(
		&s.ID,
		&s.PropertyID,
		&s.Round,
		&s.StepOrder,
		&s.StepName,
		&s.RequiredRole,
		&s.Status,
		&s.ActedBy,
		&s.ActedRole,
		&s.ActedAt,
		&s.Comments,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// scanAudit scans a single row into a models.AuditEntry.
func scanAudit(scan func(dest ...any) error) (*models.AuditEntry, error) {
	var e models.AuditEntry
	var before, after, meta []byte

	err := scan(
		&e.ID,
		&e.Entity,
		&e.EntityID,
		&e.Action,
		&e.ActorID,
		&e.ActorRole,
		&before,
		&after,
		&meta,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(before, &e.BeforeState); err != nil {
		return nil, fmt.Errorf("unmarshalling audit before_state: %w", err)
	}

	if err := json.Unmarshal(after, &e.AfterState); err != nil {
		return nil, fmt.Errorf("unmarshalling audit after_state: %w", err)
	}

	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &e.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling audit metadata: %w", err)
		}
	}

	return &e, nil
}

// scanBooking scans a single row into a models.Booking.
func scanBooking(scan func(dest ...any) error) (*models.Booking, error) {
	var b models.Booking

	err := scan(
		&b.ID,
		&b.PropertyID,
		&b.CustomerID,
		&b.Status,
		&b.Notes,
		&b.ExpiresAt,
		&b.CreatedBy,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.ClosedAt,
	)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// collectRows scans every row with scanFn. what names the entity in errors.
func collectRows[T any](rows pgx.Rows, what string, scanFn func(func(dest ...any) error) (*T, error)) ([]T, error) {
	defer rows.Close()

	items := make([]T, 0, 16)

	for rows.Next() {
		item, err := scanFn(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", what, err)
		}

		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", what, err)
	}

	return items, nil
}
