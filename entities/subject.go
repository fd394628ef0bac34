package entities

import (
	"context"

	"github.com/reglet-dev/reglet-forms/values"
)

// Subject is the view of a live component handed to declaration callbacks.
type Subject interface {
	ID() string
	Kind() Kind
	Type() string
	Namespace() values.Namespace
}

// Choice is one selectable option of a choice control.
type Choice struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

type (
	// GateCallback decides visibility or activity for a component.
	GateCallback func(s Subject) bool

	// SanitizeCallback transforms a value before it is stored or exposed.
	SanitizeCallback func(value any, s Subject) any

	// ValueCallback computes a field value instead of reading a backend.
	ValueCallback func(ctx context.Context, itemID string, s Subject) (any, error)

	// UpdateValueCallback persists a field value instead of writing a backend.
	UpdateValueCallback func(ctx context.Context, value any, itemID string, s Subject) error

	// ChoicesCallback computes the choice list of a control.
	ChoicesCallback func(s Subject) []Choice
)
