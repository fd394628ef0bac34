// Package store defines the persistence contracts field values are bound to:
// a named key-value settings store and a per-item metadata store.
package store

import (
	"context"
	"errors"
)

// ErrReadOnly is returned by stores that refuse writes.
var ErrReadOnly = errors.New("store is read-only")

// Settings is a named key-value store for site-wide values.
type Settings interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (any, bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Metadata stores values per item, scoped by the object kind of the item
// ("post", "user", "term", ...).
type Metadata interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, objectKind, itemID, key string) (any, bool, error)
	Set(ctx context.Context, objectKind, itemID, key string, value any) error
	Delete(ctx context.Context, objectKind, itemID, key string) error
}
