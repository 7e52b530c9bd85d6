package client

import (
	"context"
	"strings"
)

// ApprovalService handles the review queue and property transitions.
type ApprovalService struct {
	c *Client
}

// Pending returns pending properties, oldest first.
func (s *ApprovalService) Pending(ctx context.Context, limit, offset int) ([]PendingApproval, bool, error) {
	var items []PendingApproval
	hasMore, err := s.c.get(ctx, "/api/v1/approvals/pending", pageParams(nil, limit, offset), &items)
	if err != nil {
		return nil, false, err
	}
	return items, hasMore, nil
}

type commentsBody struct {
	Comments *string `json:"comments,omitempty"`
}

func optionalComments(comments string) commentsBody {
	if strings.TrimSpace(comments) == "" {
		return commentsBody{}
	}
	return commentsBody{Comments: &comments}
}

func (s *ApprovalService) transition(ctx context.Context, id, action string, body any) (*TransitionResult, error) {
	var res TransitionResult
	if err := s.c.post(ctx, propertyPath(id, action), body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Approve approves the current step of a pending property.
func (s *ApprovalService) Approve(ctx context.Context, id, comments string) (*TransitionResult, error) {
	return s.transition(ctx, id, "approve", optionalComments(comments))
}

// Reject rejects a pending property. The server requires a reason of at
// least ten characters.
func (s *ApprovalService) Reject(ctx context.Context, id, reason string) (*TransitionResult, error) {
	return s.transition(ctx, id, "reject", map[string]string{"reason": reason})
}

// Archive archives a property and cancels its active booking.
func (s *ApprovalService) Archive(ctx context.Context, id, comments string) (*TransitionResult, error) {
	return s.transition(ctx, id, "archive", optionalComments(comments))
}

// MarkSold marks an active property sold and converts its active booking.
func (s *ApprovalService) MarkSold(ctx context.Context, id, comments string) (*TransitionResult, error) {
	return s.transition(ctx, id, "mark-sold", optionalComments(comments))
}

// Resubmit returns a rejected property to the review queue.
func (s *ApprovalService) Resubmit(ctx context.Context, id, comments string) (*TransitionResult, error) {
	return s.transition(ctx, id, "resubmit", optionalComments(comments))
}

// History returns the approval audit trail of a property, newest first.
func (s *ApprovalService) History(ctx context.Context, id string, limit, offset int) ([]AuditEntry, bool, error) {
	var entries []AuditEntry
	hasMore, err := s.c.get(ctx, propertyPath(id, "approval-history"), pageParams(nil, limit, offset), &entries)
	if err != nil {
		return nil, false, err
	}
	return entries, hasMore, nil
}

// Steps returns the step rows of the property's current approval round.
func (s *ApprovalService) Steps(ctx context.Context, id string) ([]ApprovalStep, error) {
	var steps []ApprovalStep
	if _, err := s.c.get(ctx, propertyPath(id, "approval-steps"), nil, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}
