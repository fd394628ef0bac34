// Package extractor derives the grants a declaration document needs before
// any of its components can be seen.
package extractor

import (
	"slices"

	"github.com/reglet-dev/reglet-forms/capability"
	"github.com/reglet-dev/reglet-forms/entities"
)

// Extractor reports the grants one declaration requires, or nil.
type Extractor interface {
	Extract(kind entities.Kind, decl *entities.Declaration) *capability.GrantSet
}

// CapabilityExtractor requires the declared capability.
type CapabilityExtractor struct{}

func (e *CapabilityExtractor) Extract(_ entities.Kind, decl *entities.Declaration) *capability.GrantSet {
	if decl.Capability == "" {
		return nil
	}
	return &capability.GrantSet{Capabilities: []string{decl.Capability}}
}

// FeatureExtractor requires every declared host feature.
type FeatureExtractor struct{}

func (e *FeatureExtractor) Extract(_ entities.Kind, decl *entities.Declaration) *capability.GrantSet {
	if len(decl.ThemeSupports) == 0 {
		return nil
	}
	return &capability.GrantSet{Features: slices.Clone(decl.ThemeSupports)}
}

var (
	_ Extractor = (*CapabilityExtractor)(nil)
	_ Extractor = (*FeatureExtractor)(nil)
)

// Registry holds the extractors run for each component kind.
type Registry struct {
	byKind map[entities.Kind][]Extractor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byKind: make(map[entities.Kind][]Extractor)}
}

// Register adds e for kind.
func (r *Registry) Register(kind entities.Kind, e Extractor) {
	r.byKind[kind] = append(r.byKind[kind], e)
}

// RegisterDefaultExtractors registers the gate extractors for every gated
// kind. Fields carry no gate of their own.
func RegisterDefaultExtractors(r *Registry) {
	for _, kind := range []entities.Kind{entities.KindScreen, entities.KindSection, entities.KindControl} {
		r.Register(kind, &CapabilityExtractor{})
		r.Register(kind, &FeatureExtractor{})
	}
}

// Requirement is what one component needs.
type Requirement struct {
	Kind   entities.Kind
	ID     string
	Grants capability.GrantSet
}

// Report collects the requirements of a document.
type Report struct {
	Components []Requirement
	Total      capability.GrantSet
}

// ExtractDocument runs the registered extractors over every declaration of
// doc, nested shorthand included.
func (r *Registry) ExtractDocument(doc *entities.Document) *Report {
	rep := &Report{}
	groups := []struct {
		kind  entities.Kind
		decls []entities.Declaration
	}{
		{entities.KindScreen, doc.Screens},
		{entities.KindSection, doc.Sections},
		{entities.KindControl, doc.Controls},
		{entities.KindField, doc.Fields},
	}
	for _, g := range groups {
		for i := range g.decls {
			r.walk(rep, g.kind, &g.decls[i])
		}
	}
	rep.Total.Deduplicate()
	return rep
}

func (r *Registry) walk(rep *Report, kind entities.Kind, decl *entities.Declaration) {
	gs := &capability.GrantSet{}
	for _, e := range r.byKind[kind] {
		gs.Merge(e.Extract(kind, decl))
	}
	if !gs.IsEmpty() {
		gs.Deduplicate()
		rep.Components = append(rep.Components, Requirement{Kind: kind, ID: decl.ID, Grants: *gs})
		rep.Total.Merge(gs)
	}

	if decl.Section != nil {
		r.walk(rep, entities.KindSection, decl.Section)
	}
	if decl.Control != nil {
		r.walk(rep, entities.KindControl, decl.Control)
	}
	if decl.Field != nil {
		r.walk(rep, entities.KindField, decl.Field)
	}
}

// Missing returns the grants of the report that checker does not hold.
func (rep *Report) Missing(checker capability.Checker) capability.GrantSet {
	var out capability.GrantSet
	for _, c := range rep.Total.Capabilities {
		if !checker.HasCapability(c) {
			out.Capabilities = append(out.Capabilities, c)
		}
	}
	for _, f := range rep.Total.Features {
		if !checker.SupportsFeature(f) {
			out.Features = append(out.Features, f)
		}
	}
	return out
}
