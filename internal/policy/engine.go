// Package policy decides which property lifecycle transitions are allowed.
//
// The engine is a pure function over (status, role, action, approval
// progress) and the static role-permission table in table.go. It performs
// no I/O and never returns an error for a denial: a denial is a Decision
// with Allowed set to false.
package policy

import (
	"fmt"
	"strings"

	"github.com/estatedesk/backoffice/internal/models"
)

// Input is what the engine evaluates.
type Input struct {
	Status models.PropertyStatus
	Role   models.Role
	Action Action
	// ApprovedSteps is the number of steps already approved in the current round.
	ApprovedSteps int
}

// Decision is the engine's verdict.
type Decision struct {
	Allowed    bool
	NextStatus models.PropertyStatus
	// Step is the approval step acted on (approve and reject only).
	Step *Step
	// Final is true when an approval completes the round.
	Final  bool
	Code   string
	Reason string
}

// Err converts a denial into an error for the service boundary.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}

	return &models.DeniedError{Code: d.Code, Reason: d.Reason}
}

func allow(next models.PropertyStatus) Decision {
	return Decision{Allowed: true, NextStatus: next}
}

func deny(code, format string, args ...any) Decision {
	return Decision{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// Engine evaluates transitions against one approval plan.
type Engine struct {
	model Model
	plan  []Step
}

// NewEngine creates an Engine for the given approval model.
func NewEngine(model Model) *Engine {
	return &Engine{model: model, plan: planFor(model)}
}

// Model returns the configured approval model.
func (e *Engine) Model() Model {
	return e.model
}

// Plan returns the persisted form of the approval plan.
func (e *Engine) Plan() []models.StepSeed {
	seeds := make([]models.StepSeed, len(e.plan))
	for i, s := range e.plan {
		seeds[i] = s.Seed()
	}

	return seeds
}

// CurrentStep returns the step awaiting action after approved steps.
func (e *Engine) CurrentStep(approved int) (Step, bool) {
	if approved < 0 || approved >= len(e.plan) {
		return Step{}, false
	}

	return e.plan[approved], true
}

// Authorize runs only the role half of Evaluate, so callers can deny an
// unauthorized actor before loading the property.
func (e *Engine) Authorize(role models.Role, action Action) Decision {
	rule, ok := transitions[action]
	if !ok {
		return deny(models.DenyInsufficientPermissions, "action %q is not permitted", action)
	}

	if !rule.roles[role] {
		return deny(models.DenyInsufficientPermissions,
			"role %q may not %s; requires one of %s", role, action, joinRoles(sortedRoles(rule.roles)))
	}

	return Decision{Allowed: true}
}

// Evaluate decides whether in.Role may perform in.Action on a property in
// in.Status. The role check runs first so an unauthorized caller learns
// nothing about the property's state.
func (e *Engine) Evaluate(in Input) Decision {
	if d := e.Authorize(in.Role, in.Action); !d.Allowed {
		return d
	}

	rule := transitions[in.Action]

	if !rule.from[in.Status] {
		return deny(models.DenyInvalidStatus, "cannot %s a property in status %q", in.Action, in.Status)
	}

	if in.Action != ActionApprove && in.Action != ActionReject {
		return allow(rule.to)
	}

	step, ok := e.CurrentStep(in.ApprovedSteps)
	if !ok {
		return deny(models.DenyInvalidStatus, "approval round has no open step")
	}

	if !step.Allows(in.Role) {
		return deny(models.DenyInsufficientPermissions,
			"step %q requires one of %s", step.Name, joinRoles(sortedRoles(step.roles)))
	}

	d := allow(rule.to)
	d.Step = &step

	if in.Action == ActionApprove {
		d.Final = step.Order == len(e.plan)
		if !d.Final {
			d.NextStatus = models.StatusPending
		}
	}

	return d
}

func joinRoles(roles []models.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}

	return strings.Join(parts, ", ")
}
