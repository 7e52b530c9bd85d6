package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/domain"
	"github.com/estatedesk/backoffice/internal/httputil"
	"github.com/estatedesk/backoffice/internal/models"
)

// AuditHandler serves read access to the audit log.
type AuditHandler struct {
	svc domain.AuditService
	log *logrus.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(svc domain.AuditService, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{svc: svc, log: log}
}

// Query handles GET /audit.
func (h *AuditHandler) Query(c *gin.Context) {
	limit, offset := page(c)
	opts := models.AuditQueryOpts{
		ActorID: c.Query("actor_id"),
		Action:  models.AuditAction(c.Query("action")),
		Limit:   limit,
		Offset:  offset,
	}

	if v := c.Query("entity_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "entity_id must be a valid UUID")
			return
		}
		opts.EntityID = &id
	}

	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "since must be RFC 3339")
			return
		}
		opts.Since = &t
	}

	entries, hasMore, err := h.svc.QueryAudit(c.Request.Context(), opts)
	if err != nil {
		respondServiceError(c, h.log, "querying audit log", err)
		return
	}

	httputil.RespondList(c, entries, hasMore)
}
