package policy

import "github.com/estatedesk/backoffice/internal/models"

// Action is a requested lifecycle transition.
type Action string

// Actions evaluated by the engine.
const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionArchive  Action = "archive"
	ActionMarkSold Action = "mark_sold"
	ActionResubmit Action = "resubmit"
)

// AuditAction maps an engine action to its audit log name.
func (a Action) AuditAction() models.AuditAction {
	switch a {
	case ActionApprove:
		return models.ActionApprove
	case ActionReject:
		return models.ActionReject
	case ActionArchive:
		return models.ActionArchive
	case ActionMarkSold:
		return models.ActionMarkSold
	case ActionResubmit:
		return models.ActionResubmit
	}

	return models.AuditAction(a)
}

// Capability is a non-transition permission checked at the HTTP edge.
type Capability string

// Capabilities.
const (
	CapReviewQueue    Capability = "review_queue"
	CapCreateProperty Capability = "create_property"
	CapEditAnyDraft   Capability = "edit_any_draft"
	CapBook           Capability = "book"
	CapViewAudit      Capability = "view_audit"
)

var reviewers = roleSet(models.RoleManager, models.RoleVP, models.RoleDirector, models.RoleAdmin)

// transitionRule is one row of the static role-permission table.
type transitionRule struct {
	roles map[models.Role]bool
	from  map[models.PropertyStatus]bool
	to    models.PropertyStatus
}

// transitions is the single source of truth for who may move a property where.
// approve's target is refined by the step plan (non-final steps stay pending).
var transitions = map[Action]transitionRule{
	ActionApprove: {
		roles: reviewers,
		from:  statusSet(models.StatusPending),
		to:    models.StatusActive,
	},
	ActionReject: {
		roles: reviewers,
		from:  statusSet(models.StatusPending),
		to:    models.StatusRejected,
	},
	ActionArchive: {
		roles: roleSet(models.RoleManager, models.RoleDirector, models.RoleAdmin),
		from:  statusSet(models.StatusPending, models.StatusActive, models.StatusRejected),
		to:    models.StatusArchived,
	},
	ActionMarkSold: {
		roles: roleSet(models.RoleManager, models.RoleDirector, models.RoleAdmin),
		from:  statusSet(models.StatusActive),
		to:    models.StatusSold,
	},
	ActionResubmit: {
		roles: roleSet(models.RoleAgent, models.RoleManager, models.RoleDirector, models.RoleAdmin),
		from:  statusSet(models.StatusRejected),
		to:    models.StatusPending,
	},
}

var capabilities = map[Capability]map[models.Role]bool{
	CapReviewQueue:    reviewers,
	CapCreateProperty: roleSet(models.RoleAgent, models.RoleManager, models.RoleDirector, models.RoleAdmin),
	CapEditAnyDraft:   roleSet(models.RoleManager, models.RoleDirector, models.RoleAdmin),
	CapBook: roleSet(
		models.RoleAgent, models.RoleCallCenter, models.RoleManager,
		models.RoleVP, models.RoleDirector, models.RoleAdmin,
	),
	CapViewAudit: roleSet(models.RoleDirector, models.RoleAdmin),
}

// Permits reports whether role holds capability.
func Permits(role models.Role, capability Capability) bool {
	return capabilities[capability][role]
}

func roleSet(roles ...models.Role) map[models.Role]bool {
	m := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		m[r] = true
	}

	return m
}

func statusSet(statuses ...models.PropertyStatus) map[models.PropertyStatus]bool {
	m := make(map[models.PropertyStatus]bool, len(statuses))
	for _, s := range statuses {
		m[s] = true
	}

	return m
}

// roleOrder fixes the display order of roles.
var roleOrder = []models.Role{
	models.RoleAdmin, models.RoleDirector, models.RoleVP,
	models.RoleManager, models.RoleAgent, models.RoleCallCenter,
}

func sortedRoles(set map[models.Role]bool) []models.Role {
	out := make([]models.Role, 0, len(set))
	for _, r := range roleOrder {
		if set[r] {
			out = append(out, r)
		}
	}

	return out
}
