package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/estatedesk/backoffice/internal/models"
)

// StepStore reads approval_steps. Steps are written by TransitionStore.
type StepStore struct {
	Base
}

// NewStepStore creates a new StepStore.
func NewStepStore(base Base) *StepStore {
	return &StepStore{Base: base}
}

// CountApproved returns how many steps of round are approved.
func (s *StepStore) CountApproved(ctx context.Context, propertyID uuid.UUID, round int) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int

	err := s.Pool.QueryRow(ctx,
		`SELECT count(*) FROM approval_steps
		WHERE property_id = $1 AND round = $2 AND status = 'approved'`,
		propertyID, round,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting approved steps: %w", err)
	}

	return n, nil
}

// ListSteps returns the persisted steps of the property's current round in
// order. An empty slice means no step of the round has been acted on yet.
func (s *StepStore) ListSteps(ctx context.Context, propertyID uuid.UUID) ([]models.ApprovalStep, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	var round int
	if err := tx.QueryRow(ctx, `SELECT approval_round FROM properties WHERE id = $1`, propertyID).Scan(&round); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPropertyNotFound
		}

		return nil, fmt.Errorf("reading approval round: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT `+stepColumns+` FROM approval_steps
		WHERE property_id = $1 AND round = $2
		ORDER BY step_order`,
		propertyID, round,
	)
	if err != nil {
		return nil, fmt.Errorf("listing approval steps: %w", err)
	}

	return collectRows(rows, "approval step", scanStep)
}
