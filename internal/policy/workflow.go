package policy

import (
	"fmt"

	"github.com/estatedesk/backoffice/internal/models"
)

// Model selects the approval plan.
type Model string

// Approval models.
const (
	// ModelSingle is one review step any reviewer may complete.
	ModelSingle Model = "single"
	// ModelMulti is manager review, VP budget, director approval, manager publish.
	ModelMulti Model = "multi"
)

// ParseModel validates a configured model name.
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case ModelSingle, ModelMulti:
		return Model(s), nil
	}

	return "", fmt.Errorf("unknown approval model %q", s)
}

// Step is one stage of an approval round.
type Step struct {
	Order int
	Name  string
	// Role is the role recorded as required_role; admin may always act.
	Role  models.Role
	roles map[models.Role]bool
}

// Allows reports whether role may act on this step.
func (s Step) Allows(role models.Role) bool {
	return s.roles[role]
}

// Seed converts the step into its persisted form.
func (s Step) Seed() models.StepSeed {
	return models.StepSeed{Order: s.Order, Name: s.Name, RequiredRole: s.Role}
}

var singlePlan = []Step{
	{Order: 1, Name: "review", Role: models.RoleManager, roles: reviewers},
}

var multiPlan = []Step{
	{Order: 1, Name: "manager_review", Role: models.RoleManager, roles: roleSet(models.RoleManager, models.RoleAdmin)},
	{Order: 2, Name: "vp_budget", Role: models.RoleVP, roles: roleSet(models.RoleVP, models.RoleAdmin)},
	{Order: 3, Name: "director_approval", Role: models.RoleDirector, roles: roleSet(models.RoleDirector, models.RoleAdmin)},
	{Order: 4, Name: "manager_publish", Role: models.RoleManager, roles: roleSet(models.RoleManager, models.RoleAdmin)},
}

func planFor(m Model) []Step {
	if m == ModelMulti {
		return multiPlan
	}

	return singlePlan
}
