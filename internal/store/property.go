package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/estatedesk/backoffice/internal/models"
)

// PropertyStore handles property intake, reads and draft edits. Status is
// written only by TransitionStore.
type PropertyStore struct {
	Base
}

// NewPropertyStore creates a new PropertyStore.
func NewPropertyStore(base Base) *PropertyStore {
	return &PropertyStore{Base: base}
}

// CreateProperty inserts a property in pending and returns the stored record.
func (s *PropertyStore) CreateProperty(
	ctx context.Context,
	actor models.Identity,
	req models.CreatePropertyRequest,
) (*models.Property, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cols := []string{
		"property_category", "listing_type", "category", "title", "description", "address",
		"price_azn", "area_sqm", "rooms", "owner_first_name", "owner_last_name", "owner_contact",
		"brokerage_commission_percent", "buy_price_azn", "created_by_id", "agent_id", "updated_by",
	}
	args := []any{
		req.PropertyCategory, req.ListingType, req.Category, req.Title, req.Description, req.Address,
		req.PriceAZN, req.AreaSqm, req.Rooms, req.OwnerFirstName, req.OwnerLastName, req.OwnerContact,
		req.BrokerageCommissionPercent, req.BuyPriceAZN, actor.UserID, req.AgentID, actor.UserID,
	}

	if req.Code != "" {
		cols = append(cols, "code")
		args = append(args, req.Code)
	}

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := `INSERT INTO properties (` + strings.Join(cols, ", ") + `)
		VALUES (` + strings.Join(placeholders, ", ") + `)
		RETURNING ` + propertyColumns

	p, err := scanProperty(s.Pool.QueryRow(ctx, query, args...).Scan)
	if err != nil {
		return nil, translatePgError(err, "inserting property")
	}

	return p, nil
}

// GetProperty returns a property by ID.
func (s *PropertyStore) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)

	p, err := scanProperty(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPropertyNotFound
		}

		return nil, fmt.Errorf("getting property: %w", err)
	}

	return p, nil
}

// ListProperties returns properties matching opts, newest first.
func (s *PropertyStore) ListProperties(
	ctx context.Context,
	opts models.PropertyListOpts,
) ([]models.Property, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var conditions []string
	var args []any

	if opts.Status != "" {
		args = append(args, opts.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if opts.ListingType != "" {
		args = append(args, opts.ListingType)
		conditions = append(conditions, fmt.Sprintf("listing_type = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := clampLimit(opts.Limit)
	args = append(args, limit+1, max(opts.Offset, 0))

	query := fmt.Sprintf(`SELECT %s FROM properties %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d`, propertyColumns, where, len(args)-1, len(args))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("listing properties: %w", err)
	}

	props, err := collectRows(rows, "property", scanProperty)
	if err != nil {
		return nil, false, err
	}

	props, hasMore := trimPage(props, limit)

	return props, hasMore, nil
}

// ListPending returns pending properties oldest first, each with the step
// awaiting action in its current round. Rounds that have not been acted on
// yet have no step rows, so CurrentStep is nil for them.
func (s *PropertyStore) ListPending(ctx context.Context, limit, offset int) ([]models.PendingApproval, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	limit = clampLimit(limit)

	query := `SELECT ` + qualify("p", propertyColumns) + `, s.step_name, s.required_role
		FROM properties p
		LEFT JOIN LATERAL (
			SELECT step_name, required_role FROM approval_steps
			WHERE property_id = p.id AND round = p.approval_round AND status = 'pending'
			ORDER BY step_order
			LIMIT 1
		) s ON true
		WHERE p.status = 'pending'
		ORDER BY p.created_at ASC, p.id
		LIMIT $1 OFFSET $2`

	rows, err := s.Pool.Query(ctx, query, limit+1, max(offset, 0))
	if err != nil {
		return nil, false, fmt.Errorf("listing pending approvals: %w", err)
	}

	items, err := collectRows(rows, "pending approval", func(scan func(dest ...any) error) (*models.PendingApproval, error) {
		var pa models.PendingApproval

		p, err := scanProperty(func(dest ...any) error {
			return scan(append(dest, &pa.CurrentStep, &pa.StepRole)...)
		})
		if err != nil {
			return nil, err
		}

		pa.Property = *p

		return &pa, nil
	})
	if err != nil {
		return nil, false, err
	}

	items, hasMore := trimPage(items, limit)

	return items, hasMore, nil
}

// UpdateProperty applies a draft edit. The write is conditional on the
// property still being pending or rejected, so an edit racing an approval
// fails with ErrNotEditable instead of changing an approved listing.
func (s *PropertyStore) UpdateProperty(
	ctx context.Context,
	id uuid.UUID,
	actor models.Identity,
	req models.UpdatePropertyRequest,
) (*models.Property, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	setClauses, args := buildPropertyUpdate(req)
	if len(setClauses) == 0 {
		return nil, models.ErrEmptyUpdate
	}

	args = append(args, actor.UserID)
	setClauses = append(setClauses, fmt.Sprintf("updated_by = $%d", len(args)), "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE properties SET %s
		WHERE id = $%d AND status IN ('pending', 'rejected')
		RETURNING %s`, strings.Join(setClauses, ", "), len(args), propertyColumns)

	p, err := scanProperty(s.Pool.QueryRow(ctx, query, args...).Scan)
	if err == nil {
		return p, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, translatePgError(err, "updating property")
	}

	if _, getErr := s.GetProperty(ctx, id); getErr != nil {
		return nil, getErr
	}

	return nil, models.ErrNotEditable
}

// buildPropertyUpdate constructs the SET clauses and arguments for UpdateProperty.
func buildPropertyUpdate(req models.UpdatePropertyRequest) (setClauses []string, args []any) {
	set := func(col string, v any) {
		args = append(args, v)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.ListingType != nil {
		set("listing_type", *req.ListingType)
	}
	if req.Title != nil {
		set("title", *req.Title)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Address != nil {
		set("address", *req.Address)
	}
	if req.PriceAZN != nil {
		set("price_azn", *req.PriceAZN)
	}
	if req.AreaSqm != nil {
		set("area_sqm", *req.AreaSqm)
	}
	if req.Rooms != nil {
		set("rooms", *req.Rooms)
	}
	if req.OwnerFirstName != nil {
		set("owner_first_name", *req.OwnerFirstName)
	}
	if req.OwnerLastName != nil {
		set("owner_last_name", *req.OwnerLastName)
	}
	if req.OwnerContact != nil {
		set("owner_contact", *req.OwnerContact)
	}
	if req.BrokerageCommissionPercent != nil {
		set("brokerage_commission_percent", *req.BrokerageCommissionPercent)
	}
	if req.BuyPriceAZN != nil {
		set("buy_price_azn", *req.BuyPriceAZN)
	}
	if req.AgentID != nil {
		set("agent_id", *req.AgentID)
	}

	return setClauses, args
}

// qualify prefixes every column in a column list with alias.
func qualify(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, c := range parts {
		parts[i] = alias + "." + strings.TrimSpace(c)
	}

	return strings.Join(parts, ", ")
}
