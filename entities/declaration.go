package entities

import (
	"maps"
	"slices"

	"github.com/reglet-dev/reglet-forms/values"
)

// Declaration is the raw configuration of a component as submitted at
// registration time. The registry stores its own clone, so later changes to
// the caller's copy have no effect.
type Declaration struct {
	// ID is taken from the Add call when empty.
	ID   string `json:"id,omitempty" yaml:"id,omitempty" validate:"omitempty,max=191"`
	Kind Kind   `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=screen section control field"`
	// Type selects the component constructor; empty means the kind's base type.
	Type        string `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,max=64"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    *int   `json:"priority,omitempty" yaml:"priority,omitempty"`

	Capability    string   `json:"capability,omitempty" yaml:"capability,omitempty"`
	ThemeSupports []string `json:"theme_supports,omitempty" yaml:"theme_supports,omitempty" validate:"omitempty,dive,required"`

	// Parent is the section a control belongs to, or the screen a section
	// belongs to.
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`

	// Fields lists the fields a control edits; DefaultField names the one used
	// by ID-less value access and defaults to the first entry.
	Fields       []string `json:"fields,omitempty" yaml:"fields,omitempty" validate:"omitempty,dive,required"`
	DefaultField string   `json:"default_field,omitempty" yaml:"default_field,omitempty"`

	Default any `json:"default,omitempty" yaml:"default,omitempty"`
	// ObjectType overrides the namespace object type when selecting a field
	// backend.
	ObjectType string `json:"object_type,omitempty" yaml:"object_type,omitempty"`

	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`

	Field   *Declaration `json:"field,omitempty" yaml:"field,omitempty" validate:"omitempty"`
	Control *Declaration `json:"control,omitempty" yaml:"control,omitempty" validate:"omitempty"`
	Section *Declaration `json:"section,omitempty" yaml:"section,omitempty" validate:"omitempty"`

	CapabilitiesCallback   GateCallback        `json:"-" yaml:"-"`
	ActiveCallback         GateCallback        `json:"-" yaml:"-"`
	SanitizeCallback       SanitizeCallback    `json:"-" yaml:"-"`
	SanitizeOutputCallback SanitizeCallback    `json:"-" yaml:"-"`
	ValueCallback          ValueCallback       `json:"-" yaml:"-"`
	UpdateValueCallback    UpdateValueCallback `json:"-" yaml:"-"`
	ChoicesCallback        ChoicesCallback     `json:"-" yaml:"-"`
}

// PriorityOrDefault returns the declared priority or values.DefaultPriority.
func (d *Declaration) PriorityOrDefault() int {
	if d.Priority == nil {
		return values.DefaultPriority
	}
	return *d.Priority
}

// WithPriority sets the priority and returns d for chaining.
func (d *Declaration) WithPriority(p int) *Declaration {
	d.Priority = &p
	return d
}

// PrimaryField returns the field used by ID-less value access.
func (d *Declaration) PrimaryField() string {
	if d.DefaultField != "" {
		return d.DefaultField
	}
	if len(d.Fields) > 0 {
		return d.Fields[0]
	}
	return ""
}

// Option returns a type-specific option.
func (d *Declaration) Option(key string) (any, bool) {
	v, ok := d.Options[key]
	return v, ok
}

// Clone returns a deep copy of the declaration's own structure. Option values
// and defaults are copied shallowly.
func (d *Declaration) Clone() *Declaration {
	if d == nil {
		return nil
	}
	c := *d
	if d.Priority != nil {
		p := *d.Priority
		c.Priority = &p
	}
	c.ThemeSupports = slices.Clone(d.ThemeSupports)
	c.Fields = slices.Clone(d.Fields)
	c.Options = maps.Clone(d.Options)
	c.Field = d.Field.Clone()
	c.Control = d.Control.Clone()
	c.Section = d.Section.Clone()
	return &c
}
