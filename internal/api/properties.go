package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/domain"
	"github.com/estatedesk/backoffice/internal/httputil"
	"github.com/estatedesk/backoffice/internal/models"
)

// PropertyHandler serves property intake, reads and draft edits.
type PropertyHandler struct {
	svc domain.PropertyService
	log *logrus.Logger
}

// NewPropertyHandler creates a PropertyHandler with the given service and logger.
func NewPropertyHandler(svc domain.PropertyService, log *logrus.Logger) *PropertyHandler {
	return &PropertyHandler{svc: svc, log: log}
}

// Create handles POST /properties.
func (h *PropertyHandler) Create(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}

	var req models.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	prop, err := h.svc.CreateProperty(c.Request.Context(), who, req)
	if err != nil {
		respondServiceError(c, h.log, "creating property", err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"action":      "create",
		"property_id": prop.ID,
		"user_id":     who.UserID,
	}).Info("audit")

	httputil.RespondOK(c, http.StatusCreated, prop)
}

// List handles GET /properties.
func (h *PropertyHandler) List(c *gin.Context) {
	limit, offset := page(c)
	opts := models.PropertyListOpts{
		Status:      models.PropertyStatus(c.Query("status")),
		ListingType: models.ListingType(c.Query("listing_type")),
		Limit:       limit,
		Offset:      offset,
	}

	if opts.Status != "" && !opts.Status.Valid() {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "unknown status filter")
		return
	}

	if opts.ListingType != "" && !opts.ListingType.Valid() {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "unknown listing_type filter")
		return
	}

	props, hasMore, err := h.svc.ListProperties(c.Request.Context(), opts)
	if err != nil {
		respondServiceError(c, h.log, "listing properties", err)
		return
	}

	httputil.RespondList(c, props, hasMore)
}

// Get handles GET /properties/:id.
func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	prop, err := h.svc.GetProperty(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, "getting property", err)
		return
	}

	httputil.RespondOK(c, http.StatusOK, prop)
}

// Update handles PATCH /properties/:id.
func (h *PropertyHandler) Update(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}

	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var req models.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	prop, err := h.svc.UpdateProperty(c.Request.Context(), who, id, req)
	if err != nil {
		respondServiceError(c, h.log, "updating property", err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"action":      "update",
		"property_id": id,
		"user_id":     who.UserID,
	}).Info("audit")

	httputil.RespondOK(c, http.StatusOK, prop)
}
