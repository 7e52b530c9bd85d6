// Package store provides focused, single-concern data access stores for the
// back-office.
//
// Each store owns one table family (properties, approval steps, audit,
// bookings) and embeds the shared Base. Multi-table writes that must commit
// together live in TransitionStore.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/dbpool"
	"github.com/estatedesk/backoffice/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

// SQLSTATE codes mapped to domain errors.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// beginTx starts a read-write transaction.
func (b *Base) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return tx, nil
}

// beginReadTx starts a read-only transaction.
func (b *Base) beginReadTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", err)
	}

	return tx, nil
}

// translatePgError maps constraint violations onto domain sentinels.
// Anything else is wrapped with op.
func translatePgError(err error, op string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		if pgErr.ConstraintName == "bookings_one_active_per_property" {
			return models.ErrBookingConflict
		}

		return fmt.Errorf("%w: %s", models.ErrDuplicateKey, pgErr.ConstraintName)
	case pgCheckViolation:
		if pgErr.ConstraintName == "properties_listing_type_fields" {
			return fmt.Errorf("%w: rejected by %s", models.ErrListingFields, pgErr.ConstraintName)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
