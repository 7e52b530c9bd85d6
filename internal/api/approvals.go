package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/domain"
	"github.com/estatedesk/backoffice/internal/httputil"
	"github.com/estatedesk/backoffice/internal/models"
)

// ApprovalHandler serves the approval queue and property transitions.
type ApprovalHandler struct {
	svc domain.ApprovalService
	log *logrus.Logger
}

// NewApprovalHandler creates an ApprovalHandler with the given service and logger.
func NewApprovalHandler(svc domain.ApprovalService, log *logrus.Logger) *ApprovalHandler {
	return &ApprovalHandler{svc: svc, log: log}
}

// transitionResponse is the body of every successful transition.
type transitionResponse struct {
	PropertyID uuid.UUID             `json:"property_id"`
	NewStatus  models.PropertyStatus `json:"new_status"`
	AuditLogID int64                 `json:"audit_log_id"`
	Step       *models.ApprovalStep  `json:"step,omitempty"`
}

// Pending handles GET /approvals/pending.
func (h *ApprovalHandler) Pending(c *gin.Context) {
	limit, offset := page(c)

	items, hasMore, err := h.svc.PendingApprovals(c.Request.Context(), limit, offset)
	if err != nil {
		respondServiceError(c, h.log, "listing pending approvals", err)
		return
	}

	httputil.RespondList(c, items, hasMore)
}

// Approve handles POST /properties/:id/approve.
func (h *ApprovalHandler) Approve(c *gin.Context) {
	var req models.ApproveRequest
	if !bindOptional(c, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	h.transition(c, "approve", func(ctx context.Context, who models.Identity, id uuid.UUID) (*models.TransitionResult, error) {
		return h.svc.Approve(ctx, who, id, req)
	})
}

// Reject handles POST /properties/:id/reject.
func (h *ApprovalHandler) Reject(c *gin.Context) {
	var req models.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	h.transition(c, "reject", func(ctx context.Context, who models.Identity, id uuid.UUID) (*models.TransitionResult, error) {
		return h.svc.Reject(ctx, who, id, req)
	})
}

// Archive handles POST /properties/:id/archive.
func (h *ApprovalHandler) Archive(c *gin.Context) {
	h.lifecycle(c, "archive", h.svc.Archive)
}

// MarkSold handles POST /properties/:id/mark-sold.
func (h *ApprovalHandler) MarkSold(c *gin.Context) {
	h.lifecycle(c, "mark_sold", h.svc.MarkSold)
}

// Resubmit handles POST /properties/:id/resubmit.
func (h *ApprovalHandler) Resubmit(c *gin.Context) {
	h.lifecycle(c, "resubmit", h.svc.Resubmit)
}

type lifecycleFunc func(context.Context, models.Identity, uuid.UUID, models.LifecycleRequest) (*models.TransitionResult, error)

func (h *ApprovalHandler) lifecycle(c *gin.Context, action string, fn lifecycleFunc) {
	var req models.LifecycleRequest
	if !bindOptional(c, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	h.transition(c, action, func(ctx context.Context, who models.Identity, id uuid.UUID) (*models.TransitionResult, error) {
		return fn(ctx, who, id, req)
	})
}

// transition resolves the caller and path id, runs apply and writes the result.
func (h *ApprovalHandler) transition(
	c *gin.Context,
	action string,
	apply func(context.Context, models.Identity, uuid.UUID) (*models.TransitionResult, error),
) {
	who, ok := actor(c)
	if !ok {
		return
	}

	id, ok := pathUUID(c)
	if !ok {
		return
	}

	res, err := apply(c.Request.Context(), who, id)
	if err != nil {
		respondServiceError(c, h.log, action+" property", err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"action":       action,
		"property_id":  id,
		"user_id":      who.UserID,
		"role":         who.Role,
		"new_status":   res.NewStatus,
		"audit_log_id": res.AuditLogID,
	}).Info("audit")

	httputil.RespondOK(c, http.StatusOK, transitionResponse{
		PropertyID: res.PropertyID,
		NewStatus:  res.NewStatus,
		AuditLogID: res.AuditLogID,
		Step:       res.Step,
	})
}

// History handles GET /properties/:id/approval-history.
func (h *ApprovalHandler) History(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	limit, offset := page(c)

	entries, hasMore, err := h.svc.History(c.Request.Context(), id, limit, offset)
	if err != nil {
		respondServiceError(c, h.log, "listing approval history", err)
		return
	}

	httputil.RespondList(c, entries, hasMore)
}

// Steps handles GET /properties/:id/approval-steps.
func (h *ApprovalHandler) Steps(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	steps, err := h.svc.Steps(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, "listing approval steps", err)
		return
	}

	httputil.RespondOK(c, http.StatusOK, steps)
}

// bindOptional decodes a JSON body when one is present. Approve and the
// lifecycle actions accept an empty body.
func bindOptional(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}

	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return false
	}

	return true
}
