package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/domain"
	"github.com/estatedesk/backoffice/internal/models"
	"github.com/estatedesk/backoffice/internal/policy"
)

// Compile-time check: *PropertyService must satisfy domain.PropertyService.
var _ domain.PropertyService = (*PropertyService)(nil)

// PropertyStore is the data-access interface PropertyService depends on.
type PropertyStore interface {
	CreateProperty(ctx context.Context, actor models.Identity, req models.CreatePropertyRequest) (*models.Property, error)
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListProperties(ctx context.Context, opts models.PropertyListOpts) ([]models.Property, bool, error)
	UpdateProperty(ctx context.Context, id uuid.UUID, actor models.Identity, req models.UpdatePropertyRequest) (*models.Property, error)
}

// PropertyService validates intake and draft edits.
type PropertyService struct {
	store PropertyStore
	log   *logrus.Logger
}

// NewPropertyService creates a PropertyService.
func NewPropertyService(store PropertyStore, log *logrus.Logger) *PropertyService {
	return &PropertyService{store: store, log: log}
}

// CreateProperty validates req and stores a new pending property. An agent
// creating a listing without an assigned agent becomes its agent.
func (s *PropertyService) CreateProperty(
	ctx context.Context, actor models.Identity, req models.CreatePropertyRequest,
) (*models.Property, error) {
	if !policy.Permits(actor.Role, policy.CapCreateProperty) {
		return nil, &models.DeniedError{
			Code:   models.DenyInsufficientPermissions,
			Reason: "role " + string(actor.Role) + " may not create properties",
		}
	}

	if err := req.Validate(); err != nil {
		return nil, models.Invalid(err)
	}

	if req.AgentID == nil && actor.Role == models.RoleAgent {
		id := actor.UserID
		req.AgentID = &id
	}

	return s.store.CreateProperty(ctx, actor, req)
}

// GetProperty returns a single property (pass-through).
func (s *PropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return s.store.GetProperty(ctx, id)
}

// ListProperties returns a filtered page of properties.
func (s *PropertyService) ListProperties(
	ctx context.Context, opts models.PropertyListOpts,
) ([]models.Property, bool, error) {
	return s.store.ListProperties(ctx, opts)
}

// UpdateProperty edits draft fields. The creator, the assigned agent and
// roles holding CapEditAnyDraft may edit; the merged record must still
// satisfy the listing-type field requirements.
func (s *PropertyService) UpdateProperty(
	ctx context.Context, actor models.Identity, id uuid.UUID, req models.UpdatePropertyRequest,
) (*models.Property, error) {
	if err := req.Validate(); err != nil {
		return nil, models.Invalid(err)
	}

	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}

	if !mayEdit(actor, p) {
		return nil, &models.DeniedError{
			Code:   models.DenyInsufficientPermissions,
			Reason: "only the creator, the assigned agent or a manager may edit this property",
		}
	}

	if !p.Editable() {
		return nil, models.ErrNotEditable
	}

	if err := req.ValidateMerged(p); err != nil {
		return nil, models.Invalid(err)
	}

	return s.store.UpdateProperty(ctx, id, actor, req)
}

func mayEdit(actor models.Identity, p *models.Property) bool {
	if policy.Permits(actor.Role, policy.CapEditAnyDraft) {
		return true
	}

	if !policy.Permits(actor.Role, policy.CapCreateProperty) {
		return false
	}

	return p.CreatedByID == actor.UserID || (p.AgentID != nil && *p.AgentID == actor.UserID)
}
