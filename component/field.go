package component

import (
	"context"
	"errors"
	"fmt"

	"github.com/reglet-dev/reglet-forms/binding"
	"github.com/reglet-dev/reglet-forms/hooks"
	"github.com/reglet-dev/reglet-forms/values"
)

// Updater persists a field value. Field kinds override it to change write
// behavior.
type Updater interface {
	Update(ctx context.Context, value any, itemID string) error
}

// Field is a value binding. Its id may carry a bracket path
// ("base[a][b]") addressing a nested value inside the stored base value.
type Field struct {
	Base
	base string
	path values.Path
}

// NewField is the default field factory.
func NewField(p Params) (Component, error) {
	f := newField(p)
	f.bind(f)
	return f, nil
}

func newField(p Params) *Field {
	f := &Field{Base: NewBase(p)}
	f.base, f.path = values.ParseID(f.id)
	return f
}

// AsField unwraps any field kind to its Field core.
func AsField(c Component) (*Field, bool) {
	switch f := c.(type) {
	case *Field:
		return f, true
	case *FilterField:
		return &f.Field, true
	}
	if u, ok := c.(interface{ Field() *Field }); ok {
		return u.Field(), true
	}
	return nil, false
}

// BaseID is the id with any bracket path removed.
func (f *Field) BaseID() string { return f.base }

// Path is the parsed bracket path; empty for plain ids.
func (f *Field) Path() values.Path { return f.path }

// Default is the declared default value.
func (f *Field) Default() any { return f.decl.Default }

// Backend resolves where the field's value lives.
func (f *Field) Backend() binding.Backend {
	return f.env.Dispatcher.Resolve(f.ResolvedObjectType(), f.decl, f.subject())
}

func (f *Field) item(itemID string) string {
	if itemID == "" {
		return f.ResolvedItemID()
	}
	return itemID
}

// Value reads the field. Absent values and missing path keys yield the
// declared default.
func (f *Field) Value(ctx context.Context, itemID string) (any, error) {
	v, ok, err := f.Backend().Load(ctx, f.base, f.item(itemID))
	if err != nil {
		return f.decl.Default, fmt.Errorf("field %q: read: %w", f.id, err)
	}
	if !ok {
		return f.decl.Default, nil
	}
	if f.path.IsEmpty() {
		return v, nil
	}
	return f.path.Get(v, f.decl.Default), nil
}

// ValueForOutput reads the field and runs the output sanitizers.
func (f *Field) ValueForOutput(ctx context.Context, itemID string) (any, error) {
	v, err := f.Value(ctx, itemID)
	if err != nil {
		return v, err
	}
	if f.decl.SanitizeOutputCallback != nil {
		v = f.decl.SanitizeOutputCallback(v, f.subject())
	}
	return f.env.Filters.Apply(hooks.OutputKey(f.ns, f.id), v, f.subject()), nil
}

// Sanitize runs the declared sanitizer and then every installed sanitize
// filter whose pattern matches this field.
func (f *Field) Sanitize(value any) any {
	if f.decl.SanitizeCallback != nil {
		value = f.decl.SanitizeCallback(value, f.subject())
	}
	return f.env.Filters.Apply(hooks.SanitizeKey(f.ns, f.id), value, f.subject())
}

// Save sanitizes and persists value. It reports false when value is false,
// the gate denies the field, a sanitizer rejects the value with false, or
// the write fails.
func (f *Field) Save(ctx context.Context, value any, itemID string) bool {
	if b, ok := value.(bool); ok && !b {
		return false
	}
	if !f.subject().IsVisible() {
		return false
	}
	value = f.Sanitize(value)
	if b, ok := value.(bool); ok && !b {
		return false
	}
	updater, ok := f.subject().(Updater)
	if !ok {
		updater = f
	}
	if err := updater.Update(ctx, value, f.item(itemID)); err != nil {
		lvl := f.env.Logger.Warn
		if errors.Is(err, binding.ErrNoBackend) {
			lvl = f.env.Logger.Debug
		}
		lvl("field save failed", "field", f.id, "namespace", f.ns.String(), "error", err)
		return false
	}
	return true
}

// Update writes value without sanitizing. With a bracket path the stored
// base value is read, the nested key replaced and the whole value written
// back.
//
// A nil value deletes the key at any depth: the whole base entry for an
// unpathed id, only the addressed nested key for a pathed one, leaving its
// siblings in place. Storing an explicit null under a nested key is not
// supported.
func (f *Field) Update(ctx context.Context, value any, itemID string) error {
	backend := f.Backend()
	itemID = f.item(itemID)
	if f.path.IsEmpty() {
		if value == nil {
			return backend.Remove(ctx, f.base, itemID)
		}
		return backend.Store(ctx, f.base, itemID, value)
	}
	current, _, err := backend.Load(ctx, f.base, itemID)
	if err != nil {
		return fmt.Errorf("field %q: read: %w", f.id, err)
	}
	var next any
	if value == nil {
		next = f.path.Delete(current)
	} else {
		next = f.path.Replace(current, value)
	}
	return backend.Store(ctx, f.base, itemID, next)
}

// FilterField is a field used only to filter listings. It never persists.
type FilterField struct {
	Field
}

// NewFilterField is the factory for the "filter" field type.
func NewFilterField(p Params) (Component, error) {
	f := &FilterField{Field: *newField(p)}
	f.bind(f)
	return f, nil
}

// Update does nothing.
func (f *FilterField) Update(context.Context, any, string) error {
	return nil
}

var (
	_ Updater   = (*Field)(nil)
	_ Updater   = (*FilterField)(nil)
	_ Component = (*FilterField)(nil)
)
