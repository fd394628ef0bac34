// Package export builds the client payload of a prepared namespace.
package export

import (
	"context"
	"fmt"

	"github.com/reglet-dev/reglet-forms/component"
	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/registry"
)

// Renderer produces the content of one component.
type Renderer interface {
	RenderString(ctx context.Context, c component.Component, rc component.RenderContext) (string, error)
}

// Item is the exported record of one component.
type Item struct {
	ID             string              `json:"id"`
	Kind           entities.Kind       `json:"kind"`
	Type           string              `json:"type"`
	Priority       int                 `json:"priority"`
	Active         bool                `json:"active"`
	Label          string              `json:"label"`
	Description    string              `json:"description"`
	Content        string              `json:"content"`
	InstanceNumber int                 `json:"instanceNumber"`
	ObjectType     string              `json:"objectType"`
	ObjectSubtype  string              `json:"objectSubtype"`
	Parent         string              `json:"parent"`
	ParentType     string              `json:"parentType"`
	Children       map[string][]string `json:"children"`
}

// Payload is the export of one namespace. Containers keeps display order.
type Payload struct {
	Containers []string         `json:"containers"`
	Screens    map[string]*Item `json:"screens"`
	Sections   map[string]*Item `json:"sections"`
	Controls   map[string]*Item `json:"controls"`
}

// Build exports every prepared component of p. Components outside the
// prepared set are never exported. A nil renderer leaves content empty.
func Build(ctx context.Context, p *registry.Prepared, r Renderer, rc component.RenderContext) (*Payload, error) {
	out := &Payload{
		Containers: component.IDs(p.Containers),
		Screens:    make(map[string]*Item),
		Sections:   make(map[string]*Item),
		Controls:   make(map[string]*Item),
	}
	add := func(dst map[string]*Item, c component.Component) error {
		if !p.Has(c.Kind(), c.ID()) {
			return nil
		}
		item, err := newItem(ctx, c, r, rc)
		if err != nil {
			return err
		}
		dst[c.ID()] = item
		return nil
	}
	for _, c := range p.Screens {
		if err := add(out.Screens, c); err != nil {
			return nil, err
		}
	}
	for _, c := range p.Sections {
		if err := add(out.Sections, c); err != nil {
			return nil, err
		}
	}
	for _, c := range p.Controls {
		if err := add(out.Controls, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func newItem(ctx context.Context, c component.Component, r Renderer, rc component.RenderContext) (*Item, error) {
	rc = rc.For(c)
	item := &Item{
		ID:             c.ID(),
		Kind:           c.Kind(),
		Type:           c.Type(),
		Priority:       c.Priority(),
		Active:         c.IsActive(),
		Label:          c.Label(),
		Description:    c.Description(),
		InstanceNumber: c.InstanceNumber(),
		ObjectType:     rc.ObjectType,
		ObjectSubtype:  rc.ObjectSubtype,
		Children:       make(map[string][]string),
	}
	if parent := c.Parent(); parent != nil {
		item.Parent = parent.ID()
		item.ParentType = string(parent.Kind())
	}
	if ct, ok := c.(component.Container); ok {
		for _, child := range ct.Children() {
			k := child.Kind().Plural()
			item.Children[k] = append(item.Children[k], child.ID())
		}
	}
	if ctl, ok := c.(*component.Control); ok {
		item.Children[entities.KindField.Plural()] = component.IDs(ctl.Fields())
	}
	if r != nil {
		content, err := r.RenderString(ctx, c, rc)
		if err != nil {
			return nil, fmt.Errorf("export %s %q: %w", c.Kind(), c.ID(), err)
		}
		item.Content = content
	}
	return item, nil
}
