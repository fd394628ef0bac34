// Package binding selects the persistence backend a field's value lives in.
package binding

import (
	"context"
	"errors"

	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/store"
)

// ErrNoBackend is returned by writes to a field whose object type no backend
// claims.
var ErrNoBackend = errors.New("no backend for object type")

// Backend reads and writes the whole value stored under a base key.
type Backend interface {
	Load(ctx context.Context, base, itemID string) (any, bool, error)
	Store(ctx context.Context, base, itemID string, value any) error
	Remove(ctx context.Context, base, itemID string) error
}

// SettingsBackend binds to a named key-value store; item ids are ignored.
type SettingsBackend struct {
	Settings store.Settings
}

func (b *SettingsBackend) Load(ctx context.Context, base, _ string) (any, bool, error) {
	return b.Settings.Get(ctx, base)
}

func (b *SettingsBackend) Store(ctx context.Context, base, _ string, value any) error {
	return b.Settings.Set(ctx, base, value)
}

func (b *SettingsBackend) Remove(ctx context.Context, base, _ string) error {
	return b.Settings.Delete(ctx, base)
}

// MetadataBackend binds to per-item metadata of one object kind.
type MetadataBackend struct {
	Metadata store.Metadata
	Kind     string
}

func (b *MetadataBackend) Load(ctx context.Context, base, itemID string) (any, bool, error) {
	return b.Metadata.Get(ctx, b.Kind, itemID, base)
}

func (b *MetadataBackend) Store(ctx context.Context, base, itemID string, value any) error {
	return b.Metadata.Set(ctx, b.Kind, itemID, base, value)
}

func (b *MetadataBackend) Remove(ctx context.Context, base, itemID string) error {
	return b.Metadata.Delete(ctx, b.Kind, itemID, base)
}

// CallbackBackend computes and persists values through declaration
// callbacks. A side without a callback goes to Fallback.
type CallbackBackend struct {
	Subject  entities.Subject
	Value    entities.ValueCallback
	Update   entities.UpdateValueCallback
	Fallback Backend
}

func (b *CallbackBackend) Load(ctx context.Context, base, itemID string) (any, bool, error) {
	if b.Value == nil {
		return b.Fallback.Load(ctx, base, itemID)
	}
	v, err := b.Value(ctx, itemID, b.Subject)
	if err != nil {
		return nil, false, err
	}
	return v, v != nil, nil
}

func (b *CallbackBackend) Store(ctx context.Context, base, itemID string, value any) error {
	if b.Update == nil {
		return b.Fallback.Store(ctx, base, itemID, value)
	}
	return b.Update(ctx, value, itemID, b.Subject)
}

func (b *CallbackBackend) Remove(ctx context.Context, base, itemID string) error {
	if b.Update == nil {
		return b.Fallback.Remove(ctx, base, itemID)
	}
	return b.Update(ctx, nil, itemID, b.Subject)
}

// Unresolved is the backend of object types nothing claims. Reads find
// nothing; writes fail with ErrNoBackend.
type Unresolved struct {
	ObjectType string
}

func (Unresolved) Load(context.Context, string, string) (any, bool, error) {
	return nil, false, nil
}

func (u Unresolved) Store(context.Context, string, string, any) error {
	return &NoBackendError{ObjectType: u.ObjectType}
}

func (u Unresolved) Remove(context.Context, string, string) error {
	return &NoBackendError{ObjectType: u.ObjectType}
}

// NoBackendError names the object type nothing claimed.
type NoBackendError struct {
	ObjectType string
}

func (e *NoBackendError) Error() string {
	return "no backend for object type " + e.ObjectType
}

// Is implements error matching for errors.Is() checks.
func (e *NoBackendError) Is(target error) bool {
	return target == ErrNoBackend
}
