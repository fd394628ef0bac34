package component

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/reglet-dev/reglet-forms/entities"
)

// Factory builds a component from its declaration.
type Factory func(p Params) (Component, error)

// DefaultControlTypes are the control type tags registered by NewTypes.
var DefaultControlTypes = []string{
	"text", "textarea", "number", "email", "url", "password", "color",
	"date", "checkbox", "radio", "select", "hidden",
}

// Types maps (kind, type tag) to factories. The empty tag names the kind's
// base type.
type Types struct {
	mu        sync.RWMutex
	factories map[entities.Kind]map[string]Factory
}

// NewTypes returns a table holding the built-in component types.
func NewTypes() *Types {
	t := &Types{factories: make(map[entities.Kind]map[string]Factory)}
	t.set(entities.KindScreen, "", NewScreen)
	t.set(entities.KindScreen, "form", NewScreen)
	t.set(entities.KindSection, "", NewSection)
	t.set(entities.KindControl, "", NewControl)
	for _, tag := range DefaultControlTypes {
		t.set(entities.KindControl, tag, NewControl)
	}
	t.set(entities.KindField, "", NewField)
	t.set(entities.KindField, "filter", NewFilterField)
	return t
}

func (t *Types) set(kind entities.Kind, tag string, f Factory) {
	if t.factories[kind] == nil {
		t.factories[kind] = make(map[string]Factory)
	}
	t.factories[kind][tag] = f
}

// Register adds a factory. Replacing an existing tag is an error.
func (t *Types) Register(kind entities.Kind, tag string, f Factory) error {
	if !kind.Valid() {
		return fmt.Errorf("register type %q: invalid kind %q", tag, kind)
	}
	if f == nil {
		return fmt.Errorf("register %s type %q: nil factory", kind, tag)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.factories[kind][tag]; ok {
		return fmt.Errorf("register %s type %q: already registered", kind, tag)
	}
	t.set(kind, tag, f)
	return nil
}

// Has reports whether tag is registered for kind.
func (t *Types) Has(kind entities.Kind, tag string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.factories[kind][tag]
	return ok
}

// Names lists the registered non-empty tags for kind, sorted.
func (t *Types) Names(kind entities.Kind) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.factories[kind]))
	for tag := range t.factories[kind] {
		if tag != "" {
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// Build runs the factory registered for the declaration's type.
func (t *Types) Build(p Params) (Component, error) {
	tag := ""
	if p.Declaration != nil {
		tag = p.Declaration.Type
	}
	t.mu.RLock()
	f, ok := t.factories[p.Kind][tag]
	t.mu.RUnlock()
	if !ok {
		return nil, &entities.UnknownTypeError{
			Kind:       p.Kind,
			Type:       tag,
			Suggestion: t.suggest(p.Kind, tag),
		}
	}
	c, err := f(p)
	if err != nil {
		return nil, fmt.Errorf("build %s %q: %w", p.Kind, p.ID, err)
	}
	return c, nil
}

// suggest returns the closest registered tag within edit distance 3.
func (t *Types) suggest(kind entities.Kind, tag string) string {
	best, bestDist := "", 4
	for _, name := range t.Names(kind) {
		if d := levenshtein.ComputeDistance(tag, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// IsContainerKind reports whether components of kind hold children.
func IsContainerKind(kind entities.Kind) bool {
	return slices.Contains([]entities.Kind{entities.KindScreen, entities.KindSection}, kind)
}
