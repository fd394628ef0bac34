// Package component implements the live counterparts of declarations:
// screens (forms), sections, controls and fields. Components are built once
// from a declaration by a registered Factory and never rebuilt.
package component

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/reglet-dev/reglet-forms/binding"
	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/hooks"
	"github.com/reglet-dev/reglet-forms/policy"
	"github.com/reglet-dev/reglet-forms/values"
)

// Component is behavior shared by every kind.
type Component interface {
	entities.Subject

	Label() string
	Description() string
	Priority() int
	InstanceNumber() int
	Declaration() *entities.Declaration

	// ParentID is the declared container id, empty for top-level components.
	ParentID() string
	Parent() Component
	SetParent(p Component)

	ResolvedObjectType() string
	ResolvedObjectSubtype() string
	ResolvedItemID() string
	SetItemID(itemID string)

	// IsVisible evaluates the capability gate.
	IsVisible() bool
	// IsActive evaluates the active callback, true when none is declared.
	IsActive() bool
}

// Container is a component that holds an ordered list of children.
type Container interface {
	Component
	ChildKind() entities.Kind
	Children() []Component
	AppendChild(c Component)
	ResetChildren()
	SortChildren()
}

// LookupFunc finds another component of the same registry.
type LookupFunc func(kind entities.Kind, ns values.Namespace, id string) (Component, bool)

// Env carries the collaborators components need at runtime.
type Env struct {
	Policy     policy.Policy
	Dispatcher *binding.Dispatcher
	Filters    *hooks.Filters
	Lookup     LookupFunc
	Logger     *slog.Logger
}

func (e *Env) withDefaults() *Env {
	out := Env{}
	if e != nil {
		out = *e
	}
	if out.Policy == nil {
		out.Policy = policy.NewGate(nil)
	}
	if out.Dispatcher == nil {
		out.Dispatcher = binding.NewDispatcher()
	}
	if out.Filters == nil {
		out.Filters = hooks.NewFilters()
	}
	if out.Lookup == nil {
		out.Lookup = func(entities.Kind, values.Namespace, string) (Component, bool) { return nil, false }
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// Compare orders components by (priority, instance number).
func Compare(a, b Component) int {
	if c := cmp.Compare(a.Priority(), b.Priority()); c != 0 {
		return c
	}
	return cmp.Compare(a.InstanceNumber(), b.InstanceNumber())
}

// Sort stably sorts components by (priority, instance number).
func Sort[T Component](list []T) {
	slices.SortStableFunc(list, func(a, b T) int { return Compare(a, b) })
}

// IDs returns the ids of list in order.
func IDs[T Component](list []T) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ID()
	}
	return out
}
