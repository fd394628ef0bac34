package component

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/reglet-dev/reglet-forms/entities"
)

// Control is a UI input bound to one or more fields.
type Control struct {
	Base

	choicesOnce sync.Once
	choices     []entities.Choice
}

// NewControl is the default control factory.
func NewControl(p Params) (Component, error) {
	c := &Control{Base: NewBase(p)}
	c.bind(c)
	return c, nil
}

// InputType is the control type, "text" when undeclared.
func (c *Control) InputType() string {
	if c.decl.Type == "" {
		return "text"
	}
	return c.decl.Type
}

// FieldIDs returns the declared bound field ids, primary first.
func (c *Control) FieldIDs() []string {
	ids := slices.Clone(c.decl.Fields)
	primary := c.decl.PrimaryField()
	if primary != "" && !slices.Contains(ids, primary) {
		ids = append([]string{primary}, ids...)
	}
	return ids
}

// Fields resolves the bound fields. Unregistered ids are skipped.
func (c *Control) Fields() []*Field {
	ids := c.FieldIDs()
	out := make([]*Field, 0, len(ids))
	for _, id := range ids {
		if f, ok := c.lookupField(id); ok {
			out = append(out, f)
		}
	}
	return out
}

// Field returns a bound field by id. An empty id selects the primary field.
func (c *Control) Field(id string) (*Field, bool) {
	if id == "" {
		id = c.decl.PrimaryField()
	}
	if id == "" || !slices.Contains(c.FieldIDs(), id) {
		return nil, false
	}
	return c.lookupField(id)
}

func (c *Control) lookupField(id string) (*Field, bool) {
	comp, ok := c.env.Lookup(entities.KindField, c.ns, id)
	if !ok {
		return nil, false
	}
	f, ok := AsField(comp)
	return f, ok
}

// Value reads the primary field.
func (c *Control) Value(ctx context.Context, itemID string) (any, error) {
	f, ok := c.Field("")
	if !ok {
		return nil, fmt.Errorf("control %q: %w", c.id, entities.ErrNotFound)
	}
	if itemID == "" {
		itemID = c.ResolvedItemID()
	}
	return f.Value(ctx, itemID)
}

// Section returns the owning section, if registered.
func (c *Control) Section() (*Section, bool) {
	if c.decl.Parent == "" {
		return nil, false
	}
	comp, ok := c.env.Lookup(entities.KindSection, c.ns, c.decl.Parent)
	if !ok {
		return nil, false
	}
	s, ok := comp.(*Section)
	return s, ok
}

// IsVisible requires the control's own gate, every bound field's gate and
// the owning section's gate.
func (c *Control) IsVisible() bool {
	if !c.Base.IsVisible() {
		return false
	}
	for _, f := range c.Fields() {
		if !f.IsVisible() {
			return false
		}
	}
	if s, ok := c.Section(); ok && !s.IsVisible() {
		return false
	}
	return true
}

// Choices returns the selectable options. They are computed on first access
// and cached for the control's lifetime.
func (c *Control) Choices() []entities.Choice {
	c.choicesOnce.Do(func() {
		if c.decl.ChoicesCallback != nil {
			c.choices = c.decl.ChoicesCallback(c)
			return
		}
		raw, ok := c.decl.Option("choices")
		if !ok {
			return
		}
		c.choices = parseChoices(raw)
	})
	return c.choices
}

func parseChoices(raw any) []entities.Choice {
	switch v := raw.(type) {
	case []entities.Choice:
		return slices.Clone(v)
	case []string:
		out := make([]entities.Choice, len(v))
		for i, s := range v {
			out[i] = entities.Choice{Value: s, Label: s}
		}
		return out
	case []any:
		out := make([]entities.Choice, 0, len(v))
		for _, item := range v {
			switch it := item.(type) {
			case map[string]any:
				val := fmt.Sprint(it["value"])
				label := val
				if l, ok := it["label"]; ok {
					label = fmt.Sprint(l)
				}
				out = append(out, entities.Choice{Value: val, Label: label})
			default:
				s := fmt.Sprint(it)
				out = append(out, entities.Choice{Value: s, Label: s})
			}
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]entities.Choice, len(keys))
		for i, k := range keys {
			out[i] = entities.Choice{Value: k, Label: fmt.Sprint(v[k])}
		}
		return out
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]entities.Choice, len(keys))
		for i, k := range keys {
			out[i] = entities.Choice{Value: k, Label: v[k]}
		}
		return out
	}
	return nil
}

var _ Component = (*Control)(nil)
