// Package registry stores component declarations by namespace, materializes
// them into live components on first access and prepares the visible tree.
//
// A Registry is request scoped and not safe for concurrent use.
package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/reglet-dev/reglet-forms/binding"
	"github.com/reglet-dev/reglet-forms/component"
	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/hooks"
	"github.com/reglet-dev/reglet-forms/policy"
	"github.com/reglet-dev/reglet-forms/values"
)

// OptionsValidator checks a declaration's type-specific options.
type OptionsValidator interface {
	Validate(kind entities.Kind, typeTag string, options map[string]any) error
}

type bucketKey struct {
	ns   values.Namespace
	kind entities.Kind
}

// bucket keeps declarations of one kind in one namespace in registration
// order. seq holds the instance number handed out at registration.
type bucket struct {
	decls map[string]*entities.Declaration
	seq   map[string]int
	ids   []string
}

type compKey struct {
	ns   values.Namespace
	kind entities.Kind
	id   string
}

// Registry is the namespaced component registry.
type Registry struct {
	types     *component.Types
	env       *component.Env
	validator OptionsValidator
	logger    *slog.Logger

	counter  component.Counter
	buckets  map[bucketKey]*bucket
	comps    map[compKey]component.Component
	prepared map[values.Namespace]*Prepared
}

// Option configures a Registry.
type Option func(*Registry)

// WithTypes sets the component type table.
func WithTypes(t *component.Types) Option {
	return func(r *Registry) { r.types = t }
}

// WithPolicy sets the gate components are checked against.
func WithPolicy(p policy.Policy) Option {
	return func(r *Registry) { r.env.Policy = p }
}

// WithDispatcher sets the field backend dispatcher.
func WithDispatcher(d *binding.Dispatcher) Option {
	return func(r *Registry) { r.env.Dispatcher = d }
}

// WithFilters sets the sanitize and output filters.
func WithFilters(f *hooks.Filters) Option {
	return func(r *Registry) { r.env.Filters = f }
}

// WithValidator enables options validation on Add.
func WithValidator(v OptionsValidator) Option {
	return func(r *Registry) { r.validator = v }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		env:    &component.Env{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.types == nil {
		r.types = component.NewTypes()
	}
	if r.env.Policy == nil {
		r.env.Policy = policy.NewGate(nil)
	}
	if r.env.Dispatcher == nil {
		r.env.Dispatcher = binding.NewDispatcher(binding.WithLogger(r.logger))
	}
	if r.env.Filters == nil {
		r.env.Filters = hooks.NewFilters()
	}
	r.env.Logger = r.logger
	r.env.Lookup = r.lookup
	r.clear()
	return r
}

func (r *Registry) clear() {
	r.buckets = make(map[bucketKey]*bucket)
	r.comps = make(map[compKey]component.Component)
	r.prepared = make(map[values.Namespace]*Prepared)
}

// Reset drops every declaration, component and prepared view. Instance
// numbers keep increasing.
func (r *Registry) Reset() {
	r.clear()
}

// Types returns the component type table.
func (r *Registry) Types() *component.Types { return r.types }

// Env returns the collaborators handed to components.
func (r *Registry) Env() *component.Env { return r.env }

// Add registers a declaration. The registry keeps its own copy.
func (r *Registry) Add(kind entities.Kind, ns values.Namespace, id string, decl *entities.Declaration) error {
	if decl == nil {
		decl = &entities.Declaration{}
	}
	decl = decl.Clone()
	if id == "" {
		id = decl.ID
	}
	if err := r.check(kind, ns, id, decl); err != nil {
		return err
	}
	decl.ID = id
	decl.Kind = kind

	if kind == entities.KindControl && decl.Parent == "" && decl.Section == nil {
		return entities.NewRegistrationError(entities.CodeMissingParent, kind, ns, id, "")
	}
	if err := r.addNested(kind, ns, id, decl); err != nil {
		return err
	}

	b := r.bucket(bucketKey{ns: ns, kind: kind}, true)
	b.decls[id] = decl
	b.seq[id] = r.counter.Next()
	b.ids = append(b.ids, id)
	r.invalidate(ns)
	return nil
}

func (r *Registry) check(kind entities.Kind, ns values.Namespace, id string, decl *entities.Declaration) error {
	if ns.ObjectType == "" {
		return entities.NewRegistrationError(entities.CodeMissingObjectType, kind, ns, id, "")
	}
	if ns.IsAny() {
		return entities.NewRegistrationError(entities.CodeMissingObjectType, kind, ns, id,
			"cannot register into the any-subtype namespace")
	}
	if !kind.Valid() {
		return entities.NewRegistrationError(entities.CodeInvalidDeclaration, kind, ns, id,
			fmt.Sprintf("invalid kind %q", kind))
	}
	if id == "" {
		return entities.NewRegistrationError(entities.CodeIDRequired, kind, ns, "", "")
	}
	if r.has(kind, ns, id) {
		return entities.NewRegistrationError(entities.CodeIDExists, kind, ns, id, "")
	}
	if decl.Kind != "" && decl.Kind != kind {
		return entities.NewRegistrationError(entities.CodeInvalidDeclaration, kind, ns, id,
			fmt.Sprintf("declared kind %q does not match %q", decl.Kind, kind))
	}
	if !r.types.Has(kind, decl.Type) {
		e := entities.NewRegistrationError(entities.CodeUnknownType, kind, ns, id, "")
		_, e.Err = r.types.Build(component.Params{Kind: kind, Namespace: ns, ID: id, Declaration: decl})
		return e
	}
	if err := decl.Validate(); err != nil {
		e := entities.NewRegistrationError(entities.CodeInvalidDeclaration, kind, ns, id, "")
		e.Err = err
		return e
	}
	if r.validator != nil && len(decl.Options) > 0 {
		if err := r.validator.Validate(kind, decl.Type, decl.Options); err != nil {
			e := entities.NewRegistrationError(entities.CodeInvalidDeclaration, kind, ns, id, "")
			e.Err = err
			return e
		}
	}
	return nil
}

// addNested registers embedded sub-declarations and links them to decl.
func (r *Registry) addNested(kind entities.Kind, ns values.Namespace, id string, decl *entities.Declaration) error {
	field, control, section := decl.Field, decl.Control, decl.Section
	decl.Field, decl.Control, decl.Section = nil, nil, nil

	switch kind {
	case entities.KindControl:
		// The field goes first: it has no nested children of its own, so a
		// failing section can be undone by removing it alone.
		fid := ""
		if field != nil {
			fid = r.derivedID(entities.KindField, ns, field.ID, id)
			if err := r.Add(entities.KindField, ns, fid, field); err != nil {
				return err
			}
		}
		if section != nil {
			sid := r.derivedID(entities.KindSection, ns, section.ID, id+"_section")
			if err := r.Add(entities.KindSection, ns, sid, section); err != nil {
				if fid != "" {
					r.Remove(entities.KindField, ns, fid)
				}
				return err
			}
			decl.Parent = sid
		}
		if fid != "" {
			if !slices.Contains(decl.Fields, fid) {
				decl.Fields = append([]string{fid}, decl.Fields...)
			}
			if decl.DefaultField == "" {
				decl.DefaultField = fid
			}
		}
	case entities.KindSection, entities.KindScreen:
		child, childKind := control, entities.KindControl
		if kind == entities.KindScreen {
			child, childKind = section, entities.KindSection
		}
		if child != nil {
			child = child.Clone()
			child.Parent = id
			cid := r.derivedID(childKind, ns, child.ID, id)
			if err := r.Add(childKind, ns, cid, child); err != nil {
				return err
			}
		}
	}
	return nil
}

// derivedID returns explicit when set, else fallback made unique within the
// namespace.
func (r *Registry) derivedID(kind entities.Kind, ns values.Namespace, explicit, fallback string) string {
	if explicit != "" {
		return explicit
	}
	id := fallback
	for n := 2; r.has(kind, ns, id); n++ {
		id = fmt.Sprintf("%s_%d", fallback, n)
	}
	return id
}

func (r *Registry) bucket(k bucketKey, create bool) *bucket {
	b, ok := r.buckets[k]
	if !ok && create {
		b = &bucket{decls: make(map[string]*entities.Declaration), seq: make(map[string]int)}
		r.buckets[k] = b
	}
	return b
}

func (r *Registry) has(kind entities.Kind, ns values.Namespace, id string) bool {
	b := r.bucket(bucketKey{ns: ns, kind: kind}, false)
	if b == nil {
		return false
	}
	_, ok := b.decls[id]
	return ok
}

// invalidate drops the prepared views a write to ns makes stale: ns itself
// and the merged any-subtype view of its object type.
func (r *Registry) invalidate(ns values.Namespace) {
	delete(r.prepared, ns)
	delete(r.prepared, values.Namespace{ObjectType: ns.ObjectType, ObjectSubtype: values.AnySubtype})
}

// Declaration returns the stored declaration without materializing it.
func (r *Registry) Declaration(kind entities.Kind, ns values.Namespace, id string) (*entities.Declaration, bool) {
	b := r.bucket(bucketKey{ns: ns, kind: kind}, false)
	if b == nil {
		return nil, false
	}
	d, ok := b.decls[id]
	return d, ok
}

// Get returns the live component, materializing it on first access. With
// the any-subtype namespace the first subtype holding id wins.
func (r *Registry) Get(kind entities.Kind, ns values.Namespace, id string) (component.Component, error) {
	if ns.IsAny() {
		for _, sub := range r.subtypes(ns.ObjectType, kind) {
			if r.has(kind, sub, id) {
				return r.materialize(kind, sub, id)
			}
		}
		return nil, fmt.Errorf("%s %q in %s: %w", kind, id, ns, entities.ErrNotFound)
	}
	if !r.has(kind, ns, id) {
		return nil, fmt.Errorf("%s %q in %s: %w", kind, id, ns, entities.ErrNotFound)
	}
	return r.materialize(kind, ns, id)
}

func (r *Registry) lookup(kind entities.Kind, ns values.Namespace, id string) (component.Component, bool) {
	c, err := r.Get(kind, ns, id)
	if err != nil {
		return nil, false
	}
	return c, true
}

func (r *Registry) materialize(kind entities.Kind, ns values.Namespace, id string) (component.Component, error) {
	k := compKey{ns: ns, kind: kind, id: id}
	if c, ok := r.comps[k]; ok {
		return c, nil
	}
	b := r.bucket(bucketKey{ns: ns, kind: kind}, false)
	if b == nil {
		return nil, fmt.Errorf("%s %q in %s: %w", kind, id, ns, entities.ErrNotFound)
	}
	c, err := r.types.Build(component.Params{
		Kind:           kind,
		Namespace:      ns,
		ID:             id,
		Declaration:    b.decls[id],
		Env:            r.env,
		InstanceNumber: b.seq[id],
	})
	if err != nil {
		return nil, err
	}
	r.comps[k] = c
	return c, nil
}

// materializeAll materializes every declaration of ns in registration order.
func (r *Registry) materializeAll(ns values.Namespace) error {
	type entry struct {
		kind entities.Kind
		id   string
		seq  int
	}
	var pending []entry
	for _, kind := range entities.Kinds {
		b := r.bucket(bucketKey{ns: ns, kind: kind}, false)
		if b == nil {
			continue
		}
		for _, id := range b.ids {
			if _, ok := r.comps[compKey{ns: ns, kind: kind, id: id}]; !ok {
				pending = append(pending, entry{kind: kind, id: id, seq: b.seq[id]})
			}
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].seq < pending[j].seq })
	for _, e := range pending {
		if _, err := r.materialize(e.kind, ns, e.id); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes a declaration and its component. Missing ids are ignored.
func (r *Registry) Remove(kind entities.Kind, ns values.Namespace, id string) {
	b := r.bucket(bucketKey{ns: ns, kind: kind}, false)
	if b == nil {
		return
	}
	if _, ok := b.decls[id]; !ok {
		return
	}
	delete(b.decls, id)
	delete(b.seq, id)
	b.ids = slices.DeleteFunc(b.ids, func(x string) bool { return x == id })
	delete(r.comps, compKey{ns: ns, kind: kind, id: id})
	r.invalidate(ns)
}

// subtypes lists the namespaces of objectType holding kind, sorted.
func (r *Registry) subtypes(objectType string, kind entities.Kind) []values.Namespace {
	var out []values.Namespace
	for k := range r.buckets {
		if k.kind == kind && k.ns.ObjectType == objectType {
			out = append(out, k.ns)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObjectSubtype < out[j].ObjectSubtype })
	return out
}

// GetAll materializes every component of kind in ns, ordered by (priority,
// instance number). The any-subtype namespace merges all subtypes.
func (r *Registry) GetAll(kind entities.Kind, ns values.Namespace) ([]component.Component, error) {
	spaces := []values.Namespace{ns}
	if ns.IsAny() {
		spaces = r.subtypes(ns.ObjectType, kind)
	}
	var out []component.Component
	for _, sp := range spaces {
		b := r.bucket(bucketKey{ns: sp, kind: kind}, false)
		if b == nil {
			continue
		}
		for _, id := range b.ids {
			c, err := r.materialize(kind, sp, id)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	component.Sort(out)
	return out, nil
}

// Controls returns the controls of ns, optionally only those declaring
// parentID.
func (r *Registry) Controls(ns values.Namespace, parentID string) ([]component.Component, error) {
	return r.children(entities.KindControl, ns, parentID)
}

// Sections returns the sections of ns, optionally only those declaring
// parentID.
func (r *Registry) Sections(ns values.Namespace, parentID string) ([]component.Component, error) {
	return r.children(entities.KindSection, ns, parentID)
}

func (r *Registry) children(kind entities.Kind, ns values.Namespace, parentID string) ([]component.Component, error) {
	all, err := r.GetAll(kind, ns)
	if err != nil || parentID == "" {
		return all, err
	}
	return slices.DeleteFunc(all, func(c component.Component) bool { return c.ParentID() != parentID }), nil
}

// Namespaces lists every namespace holding at least one declaration.
func (r *Registry) Namespaces() []values.Namespace {
	seen := make(map[values.Namespace]bool)
	var out []values.Namespace
	for k, b := range r.buckets {
		if len(b.ids) > 0 && !seen[k.ns] {
			seen[k.ns] = true
			out = append(out, k.ns)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
