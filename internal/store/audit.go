package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/estatedesk/backoffice/internal/models"
)

// AuditStore reads the approval_audit_log table. Rows are written only by
// insertAudit inside a transition transaction and are never updated or
// deleted; a trigger rejects both at the storage layer.
type AuditStore struct {
	Base
}

// NewAuditStore creates an AuditStore.
func NewAuditStore(base Base) *AuditStore {
	return &AuditStore{Base: base}
}

// insertAudit appends an entry within tx and fills in its ID and CreatedAt.
func insertAudit(ctx context.Context, tx pgx.Tx, e *models.AuditEntry) error {
	before, err := marshalJSONB(e.BeforeState)
	if err != nil {
		return fmt.Errorf("encoding audit before_state: %w", err)
	}

	after, err := marshalJSONB(e.AfterState)
	if err != nil {
		return fmt.Errorf("encoding audit after_state: %w", err)
	}

	meta, err := marshalJSONB(e.Metadata)
	if err != nil {
		return fmt.Errorf("encoding audit metadata: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO approval_audit_log
			(entity, entity_id, action, actor_id, actor_role, before_state, after_state, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		e.Entity, e.EntityID, e.Action, e.ActorID, e.ActorRole, before, after, meta,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	return nil
}

// buildAuditFilter builds WHERE clause and args from AuditQueryOpts.
func buildAuditFilter(opts models.AuditQueryOpts) (where string, args []any) {
	conditions := []string{"entity = $1"}
	args = []any{models.AuditEntityProperty}

	if opts.EntityID != nil {
		args = append(args, *opts.EntityID)
		conditions = append(conditions, fmt.Sprintf("entity_id = $%d", len(args)))
	}
	if opts.ActorID != "" {
		args = append(args, opts.ActorID)
		conditions = append(conditions, fmt.Sprintf("actor_id = $%d", len(args)))
	}
	if opts.Action != "" {
		args = append(args, opts.Action)
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}
	if opts.Since != nil {
		args = append(args, *opts.Since)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// QueryAudit returns audit entries matching the given filters, newest first.
// Returns entries, hasMore flag, and any error.
func (s *AuditStore) QueryAudit(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	where, args := buildAuditFilter(opts)
	limit := clampLimit(opts.Limit)
	args = append(args, limit+1, max(opts.Offset, 0))

	// id breaks ties between entries written in the same transaction timestamp.
	query := fmt.Sprintf(
		"SELECT %s FROM approval_audit_log %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		auditColumns, where, len(args)-1, len(args),
	)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("querying audit log: %w", err)
	}

	entries, err := collectRows(rows, "audit", scanAudit)
	if err != nil {
		return nil, false, err
	}

	entries, hasMore := trimPage(entries, limit)

	return entries, hasMore, nil
}
