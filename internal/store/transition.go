package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/estatedesk/backoffice/internal/models"
)

// TransitionStore applies allowed lifecycle decisions. Every write of
// properties.status goes through Apply.
type TransitionStore struct {
	Base
}

// NewTransitionStore creates a new TransitionStore.
func NewTransitionStore(base Base) *TransitionStore {
	return &TransitionStore{Base: base}
}

// Apply commits one transition atomically: the property row, the approval
// step (if any), booking side effects and one audit entry.
//
// The property row is locked FOR UPDATE and compared against the status and
// approval round the decision was computed from; the UPDATE itself is also
// conditional on both. Any mismatch returns models.ErrConcurrentUpdate and
// nothing is written.
func (s *TransitionStore) Apply(ctx context.Context, req models.TransitionRequest) (*models.TransitionResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("applying transition: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	before, err := lockProperty(ctx, tx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	if before.Status != req.ExpectedStatus || before.ApprovalRound != req.ExpectedRound {
		return nil, models.ErrConcurrentUpdate
	}

	result := &models.TransitionResult{
		PropertyID:     req.PropertyID,
		PreviousStatus: before.Status,
	}

	if req.Step != nil {
		step, err := actOnStep(ctx, tx, before, req)
		if err != nil {
			return nil, err
		}

		result.Step = step
	}

	after, err := updatePropertyStatus(ctx, tx, before, req)
	if err != nil {
		return nil, err
	}

	result.NewStatus = after.Status
	result.Property = after

	result.BookingsClosed, err = closeBookingsFor(ctx, tx, req)
	if err != nil {
		return nil, err
	}

	entry := &models.AuditEntry{
		Entity:      models.AuditEntityProperty,
		EntityID:    req.PropertyID,
		Action:      req.Action,
		ActorID:     req.Actor.UserID,
		ActorRole:   req.Actor.Role,
		BeforeState: before.Snapshot(),
		AfterState:  after.Snapshot(),
		Metadata:    transitionMetadata(before, req, result),
	}

	if err := insertAudit(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transition: %w", err)
	}

	result.AuditLogID = entry.ID

	return result, nil
}

func lockProperty(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Property, error) {
	row := tx.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1 FOR UPDATE`, id)

	p, err := scanProperty(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPropertyNotFound
		}

		return nil, fmt.Errorf("locking property: %w", err)
	}

	return p, nil
}

// actOnStep seeds the round's plan if needed, verifies the step is the next
// one in order, and records the approval or rejection on it.
func actOnStep(
	ctx context.Context, tx pgx.Tx, p *models.Property, req models.TransitionRequest,
) (*models.ApprovalStep, error) {
	if err := seedPlan(ctx, tx, p.ID, p.ApprovalRound, req.Plan); err != nil {
		return nil, err
	}

	var approved int
	err := tx.QueryRow(ctx,
		`SELECT count(*) FROM approval_steps
		WHERE property_id = $1 AND round = $2 AND status = 'approved'`,
		p.ID, p.ApprovalRound,
	).Scan(&approved)
	if err != nil {
		return nil, fmt.Errorf("counting approved steps: %w", err)
	}

	if approved != req.Step.Order-1 {
		return nil, models.ErrConcurrentUpdate
	}

	status := models.StepApproved
	comments := req.Comments
	if req.Action == models.ActionReject {
		status = models.StepRejected
		comments = req.Reason
	}

	row := tx.QueryRow(ctx,
		`UPDATE approval_steps
		SET status = $4, acted_by = $5, acted_role = $6, acted_at = NOW(), comments = $7
		WHERE property_id = $1 AND round = $2 AND step_order = $3 AND status = 'pending'
		RETURNING `+stepColumns,
		p.ID, p.ApprovalRound, req.Step.Order, status, req.Actor.UserID, req.Actor.Role, comments,
	)

	step, err := scanStep(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrConcurrentUpdate
		}

		return nil, fmt.Errorf("updating approval step: %w", err)
	}

	if status == models.StepRejected {
		_, err = tx.Exec(ctx,
			`UPDATE approval_steps SET status = 'skipped'
			WHERE property_id = $1 AND round = $2 AND status = 'pending'`,
			p.ID, p.ApprovalRound,
		)
		if err != nil {
			return nil, fmt.Errorf("skipping remaining steps: %w", err)
		}
	}

	return step, nil
}

// seedPlan inserts the round's step rows the first time any step is acted on.
func seedPlan(ctx context.Context, tx pgx.Tx, propertyID uuid.UUID, round int, plan []models.StepSeed) error {
	if len(plan) == 0 {
		return nil
	}

	orders := make([]int32, len(plan))
	names := make([]string, len(plan))
	roles := make([]string, len(plan))

	for i, seed := range plan {
		orders[i] = int32(seed.Order) //nolint:gosec // plan sizes are tiny.
		names[i] = seed.Name
		roles[i] = string(seed.RequiredRole)
	}

	_, err := tx.Exec(ctx,
		`INSERT INTO approval_steps (property_id, round, step_order, step_name, required_role)
		SELECT $1, $2, t.step_order, t.step_name, t.required_role
		FROM unnest($3::int[], $4::text[], $5::text[]) AS t(step_order, step_name, required_role)
		ON CONFLICT (property_id, round, step_order) DO NOTHING`,
		propertyID, round, orders, names, roles,
	)
	if err != nil {
		return fmt.Errorf("seeding approval plan: %w", err)
	}

	return nil
}

func updatePropertyStatus(
	ctx context.Context, tx pgx.Tx, before *models.Property, req models.TransitionRequest,
) (*models.Property, error) {
	roundDelta := 0
	if req.Action == models.ActionResubmit {
		roundDelta = 1
	}

	row := tx.QueryRow(ctx,
		`UPDATE properties SET
			status = $2::text,
			updated_at = NOW(),
			updated_by = $3,
			archived_at = CASE WHEN $2::text = 'archived' THEN NOW() ELSE archived_at END,
			sold_at = CASE WHEN $2::text = 'sold' THEN NOW() ELSE sold_at END,
			approval_round = approval_round + $4
		WHERE id = $1 AND status = $5 AND approval_round = $6
		RETURNING `+propertyColumns,
		before.ID, req.NextStatus, req.Actor.UserID, roundDelta, before.Status, before.ApprovalRound,
	)

	after, err := scanProperty(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrConcurrentUpdate
		}

		return nil, translatePgError(err, "updating property status")
	}

	return after, nil
}

// closeBookingsFor closes the active booking when a listing leaves the market.
func closeBookingsFor(ctx context.Context, tx pgx.Tx, req models.TransitionRequest) (int64, error) {
	var target models.BookingStatus

	switch req.Action {
	case models.ActionArchive:
		target = models.BookingCancelled
	case models.ActionMarkSold:
		target = models.BookingConverted
	default:
		return 0, nil
	}

	tag, err := tx.Exec(ctx,
		`UPDATE bookings SET status = $2, closed_at = NOW(), updated_at = NOW()
		WHERE property_id = $1 AND status = 'ACTIVE'`,
		req.PropertyID, target,
	)
	if err != nil {
		return 0, fmt.Errorf("closing bookings: %w", err)
	}

	return tag.RowsAffected(), nil
}

func transitionMetadata(p *models.Property, req models.TransitionRequest, res *models.TransitionResult) map[string]any {
	meta := map[string]any{
		"listing_type":  string(p.ListingType),
		"property_code": p.Code,
		"round":         p.ApprovalRound,
	}

	if req.Comments != nil {
		meta["comments"] = *req.Comments
	}

	if req.Reason != nil {
		meta["reason"] = *req.Reason
	}

	if res.Step != nil {
		meta["step_name"] = res.Step.StepName
		meta["step_order"] = res.Step.StepOrder
	}

	if res.BookingsClosed > 0 {
		meta["bookings_closed"] = res.BookingsClosed
	}

	return meta
}
