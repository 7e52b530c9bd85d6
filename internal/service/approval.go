// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/domain"
	"github.com/estatedesk/backoffice/internal/metrics"
	"github.com/estatedesk/backoffice/internal/models"
	"github.com/estatedesk/backoffice/internal/policy"
)

// Compile-time check: *ApprovalService must satisfy domain.ApprovalService.
var _ domain.ApprovalService = (*ApprovalService)(nil)

// PropertyReader loads properties for policy evaluation.
type PropertyReader interface {
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.PendingApproval, bool, error)
}

// StepReader reads approval progress.
type StepReader interface {
	CountApproved(ctx context.Context, propertyID uuid.UUID, round int) (int, error)
	ListSteps(ctx context.Context, propertyID uuid.UUID) ([]models.ApprovalStep, error)
}

// TransitionApplier commits an allowed decision.
type TransitionApplier interface {
	Apply(ctx context.Context, req models.TransitionRequest) (*models.TransitionResult, error)
}

// AuditReader queries the audit log.
type AuditReader interface {
	QueryAudit(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
}

// ApprovalService evaluates lifecycle actions with the policy engine,
// applies allowed ones through the transition store and notifies
// stakeholders after commit.
type ApprovalService struct {
	properties  PropertyReader
	steps       StepReader
	transitions TransitionApplier
	audit       AuditReader
	engine      *policy.Engine
	notifier    domain.Notifier
	log         *logrus.Logger
}

// NewApprovalService creates an ApprovalService.
func NewApprovalService(
	properties PropertyReader,
	steps StepReader,
	transitions TransitionApplier,
	audit AuditReader,
	engine *policy.Engine,
	notifier domain.Notifier,
	log *logrus.Logger,
) *ApprovalService {
	return &ApprovalService{
		properties:  properties,
		steps:       steps,
		transitions: transitions,
		audit:       audit,
		engine:      engine,
		notifier:    notifier,
		log:         log,
	}
}

// PendingApprovals returns the review queue oldest first. Rounds nobody has
// acted on yet have no persisted steps, so their current step comes from
// the configured plan.
func (s *ApprovalService) PendingApprovals(ctx context.Context, limit, offset int) ([]models.PendingApproval, bool, error) {
	items, hasMore, err := s.properties.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, false, err
	}

	first, ok := s.engine.CurrentStep(0)
	for i := range items {
		if items[i].CurrentStep == nil && ok {
			name, role := first.Name, string(first.Role)
			items[i].CurrentStep = &name
			items[i].StepRole = &role
		}
	}

	return items, hasMore, nil
}

// Approve approves the current step of a pending property.
func (s *ApprovalService) Approve(
	ctx context.Context, actor models.Identity, id uuid.UUID, req models.ApproveRequest,
) (*models.TransitionResult, error) {
	return s.act(ctx, actor, id, policy.ActionApprove, req.Comments, nil)
}

// Reject rejects a pending property. The reason is validated before any
// state is read.
func (s *ApprovalService) Reject(
	ctx context.Context, actor models.Identity, id uuid.UUID, req models.RejectRequest,
) (*models.TransitionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, models.Invalid(err)
	}

	reason := req.Reason

	return s.act(ctx, actor, id, policy.ActionReject, nil, &reason)
}

// Archive takes a property off the market and cancels its active booking.
func (s *ApprovalService) Archive(
	ctx context.Context, actor models.Identity, id uuid.UUID, req models.LifecycleRequest,
) (*models.TransitionResult, error) {
	return s.act(ctx, actor, id, policy.ActionArchive, req.Comments, nil)
}

// MarkSold records a sale and converts the active booking.
func (s *ApprovalService) MarkSold(
	ctx context.Context, actor models.Identity, id uuid.UUID, req models.LifecycleRequest,
) (*models.TransitionResult, error) {
	return s.act(ctx, actor, id, policy.ActionMarkSold, req.Comments, nil)
}

// Resubmit returns a rejected property to review in a new approval round.
func (s *ApprovalService) Resubmit(
	ctx context.Context, actor models.Identity, id uuid.UUID, req models.LifecycleRequest,
) (*models.TransitionResult, error) {
	return s.act(ctx, actor, id, policy.ActionResubmit, req.Comments, nil)
}

// History returns the property's audit entries, newest first.
func (s *ApprovalService) History(
	ctx context.Context, id uuid.UUID, limit, offset int,
) ([]models.ApprovalHistoryEntry, bool, error) {
	if _, err := s.properties.GetProperty(ctx, id); err != nil {
		return nil, false, err
	}

	return s.audit.QueryAudit(ctx, models.AuditQueryOpts{EntityID: &id, Limit: limit, Offset: offset})
}

// Steps returns the step rows of the property's current round.
func (s *ApprovalService) Steps(ctx context.Context, id uuid.UUID) ([]models.ApprovalStep, error) {
	return s.steps.ListSteps(ctx, id)
}

func (s *ApprovalService) act(
	ctx context.Context, actor models.Identity, id uuid.UUID,
	action policy.Action, comments, reason *string,
) (*models.TransitionResult, error) {
	if d := s.engine.Authorize(actor.Role, action); !d.Allowed {
		return nil, s.denied(action, d)
	}

	if comments != nil {
		if err := (&models.LifecycleRequest{Comments: comments}).Validate(); err != nil {
			return nil, models.Invalid(err)
		}
	}

	p, err := s.properties.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}

	approved := 0
	if (action == policy.ActionApprove || action == policy.ActionReject) && p.Status == models.StatusPending {
		approved, err = s.steps.CountApproved(ctx, id, p.ApprovalRound)
		if err != nil {
			return nil, err
		}
	}

	d := s.engine.Evaluate(policy.Input{
		Status:        p.Status,
		Role:          actor.Role,
		Action:        action,
		ApprovedSteps: approved,
	})
	if !d.Allowed {
		return nil, s.denied(action, d)
	}

	req := models.TransitionRequest{
		PropertyID:     id,
		Action:         action.AuditAction(),
		ExpectedStatus: p.Status,
		ExpectedRound:  p.ApprovalRound,
		NextStatus:     d.NextStatus,
		Actor:          actor,
		Comments:       comments,
		Reason:         reason,
	}

	if d.Step != nil {
		seed := d.Step.Seed()
		req.Step = &seed
		req.Plan = s.engine.Plan()
	}

	res, err := s.transitions.Apply(ctx, req)
	if err != nil {
		outcome := "error"
		if errors.Is(err, models.ErrConcurrentUpdate) {
			outcome = "conflict"
		}
		metrics.TransitionsTotal.WithLabelValues(string(action), outcome).Inc()

		return nil, err
	}

	metrics.TransitionsTotal.WithLabelValues(string(action), "applied").Inc()

	s.notifyTransition(actor, action, d, res)

	return res, nil
}

func (s *ApprovalService) denied(action policy.Action, d policy.Decision) error {
	metrics.PolicyDenials.WithLabelValues(d.Code).Inc()
	metrics.TransitionsTotal.WithLabelValues(string(action), "denied").Inc()

	return d.Err()
}

func (s *ApprovalService) notifyTransition(
	actor models.Identity, action policy.Action, d policy.Decision, res *models.TransitionResult,
) {
	typ := notificationType(action, d)

	detail := map[string]any{
		"previous_status": string(res.PreviousStatus),
		"new_status":      string(res.NewStatus),
		"actor_role":      string(actor.Role),
	}
	if res.Property != nil {
		detail["property_code"] = res.Property.Code
	}
	if res.Step != nil {
		detail["step_name"] = res.Step.StepName
	}

	notifyStakeholders(s.notifier, res.Property, actor, typ, detail)
}

func notificationType(action policy.Action, d policy.Decision) models.NotificationType {
	switch action {
	case policy.ActionApprove:
		if d.Final {
			return models.NotifyPropertyApproved
		}

		return models.NotifyPropertyStepApproved
	case policy.ActionReject:
		return models.NotifyPropertyRejected
	case policy.ActionArchive:
		return models.NotifyPropertyArchived
	case policy.ActionMarkSold:
		return models.NotifyPropertySold
	case policy.ActionResubmit:
		return models.NotifyPropertyResubmitted
	}

	return models.NotificationType("property." + string(action))
}
