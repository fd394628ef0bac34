package registry

import (
	"slices"

	"github.com/reglet-dev/reglet-forms/component"
	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/values"
)

// Prepared is the filtered, sorted and linked view of one namespace.
//
// Containers, Screens, Sections and Controls are the registry's live
// components. Their parent links and child lists belong to the most recent
// Prepare that touched them, so a Prepared held across a later Prepare of
// the same object type shows the later links. The id sets do not change.
type Prepared struct {
	Namespace values.Namespace

	// Containers holds the surviving screens and top-level sections.
	Containers []component.Container
	Screens    []component.Container
	Sections   []component.Container
	Controls   []component.Component

	ids map[entities.Kind][]string
}

// IDs returns the prepared ids of kind in preparation order.
func (p *Prepared) IDs(kind entities.Kind) []string {
	return slices.Clone(p.ids[kind])
}

// Has reports whether id of kind survived preparation.
func (p *Prepared) Has(kind entities.Kind, id string) bool {
	return slices.Contains(p.ids[kind], id)
}

// Container returns a prepared screen or top-level section by id.
func (p *Prepared) Container(id string) (component.Container, bool) {
	for _, c := range p.Containers {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

func (p *Prepared) mark(kind entities.Kind, id string) {
	if !slices.Contains(p.ids[kind], id) {
		p.ids[kind] = append(p.ids[kind], id)
	}
}

// Prepare filters, sorts and links the components of ns and caches the
// result until the namespace changes.
func (r *Registry) Prepare(ns values.Namespace) (*Prepared, error) {
	p := &Prepared{Namespace: ns, ids: make(map[entities.Kind][]string)}
	if err := r.materializeAll(ns); err != nil {
		return nil, err
	}

	controls, err := r.GetAll(entities.KindControl, ns)
	if err != nil {
		return nil, err
	}
	sections, err := r.GetAll(entities.KindSection, ns)
	if err != nil {
		return nil, err
	}
	screens, err := r.GetAll(entities.KindScreen, ns)
	if err != nil {
		return nil, err
	}

	for _, list := range [][]component.Component{controls, sections, screens} {
		for _, c := range list {
			c.SetParent(nil)
			if ct, ok := c.(component.Container); ok {
				ct.ResetChildren()
			}
		}
	}

	for _, ctl := range controls {
		parent, ok := r.container(ns, ctl.ParentID(), entities.KindSection, entities.KindScreen)
		if !ok {
			r.logger.Debug("control excluded: parent not registered",
				"control", ctl.ID(), "parent", ctl.ParentID(), "namespace", ns.String())
			continue
		}
		if !ctl.IsVisible() {
			r.logger.Debug("control excluded: not visible", "control", ctl.ID(), "namespace", ns.String())
			continue
		}
		parent.AppendChild(ctl)
		ctl.SetParent(parent)
		p.Controls = append(p.Controls, ctl)
		p.mark(entities.KindControl, ctl.ID())
		if c, ok := ctl.(*component.Control); ok {
			for _, f := range c.Fields() {
				p.mark(entities.KindField, f.ID())
			}
		}
	}

	var topLevel []component.Container
	for _, c := range sections {
		sec, ok := c.(component.Container)
		if !ok || len(sec.Children()) == 0 || !sec.IsVisible() {
			continue
		}
		sec.SortChildren()
		if sec.ParentID() == "" {
			topLevel = append(topLevel, sec)
		} else {
			screen, ok := r.container(ns, sec.ParentID(), entities.KindScreen)
			if !ok {
				r.logger.Debug("section excluded: parent not registered",
					"section", sec.ID(), "parent", sec.ParentID(), "namespace", ns.String())
				continue
			}
			screen.AppendChild(sec)
			sec.SetParent(screen)
		}
		p.Sections = append(p.Sections, sec)
		p.mark(entities.KindSection, sec.ID())
	}

	for _, c := range screens {
		screen, ok := c.(component.Container)
		if !ok || len(screen.Children()) == 0 || !screen.IsVisible() {
			continue
		}
		screen.SortChildren()
		p.Screens = append(p.Screens, screen)
		p.mark(entities.KindScreen, screen.ID())
	}

	p.Containers = make([]component.Container, 0, len(p.Screens)+len(topLevel))
	p.Containers = append(p.Containers, p.Screens...)
	p.Containers = append(p.Containers, topLevel...)
	component.Sort(p.Containers)

	r.dropOverlapping(ns)
	r.prepared[ns] = p
	return p, nil
}

// dropOverlapping forgets cached views whose live links the run for ns has
// just rewritten: every subtype view after an any-subtype run, the
// any-subtype view after a subtype run.
func (r *Registry) dropOverlapping(ns values.Namespace) {
	for cached := range r.prepared {
		if cached.ObjectType != ns.ObjectType || cached == ns {
			continue
		}
		if ns.IsAny() || cached.IsAny() {
			delete(r.prepared, cached)
		}
	}
}

// container finds a registered container of one of kinds, in order.
func (r *Registry) container(ns values.Namespace, id string, kinds ...entities.Kind) (component.Container, bool) {
	if id == "" {
		return nil, false
	}
	for _, kind := range kinds {
		c, ok := r.lookup(kind, ns, id)
		if !ok {
			continue
		}
		if ct, ok := c.(component.Container); ok {
			return ct, true
		}
	}
	return nil, false
}

// Prepared returns the cached view of ns, preparing it when the namespace
// changed since the last run.
func (r *Registry) Prepared(ns values.Namespace) (*Prepared, error) {
	if p, ok := r.prepared[ns]; ok {
		return p, nil
	}
	return r.Prepare(ns)
}

// IsPrepared reports whether id of kind is in the prepared set of ns.
func (r *Registry) IsPrepared(ns values.Namespace, kind entities.Kind, id string) bool {
	p, err := r.Prepared(ns)
	if err != nil {
		return false
	}
	return p.Has(kind, id)
}
