package binding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/reglet-dev/reglet-forms/binding"
	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_Resolve(t *testing.T) {
	mem := store.NewMemory()
	d := binding.NewDispatcher(
		binding.WithSettings(mem),
		binding.WithMetadata(mem.Metadata()),
		binding.WithMetaTypes("product"),
	)

	tests := []struct {
		objectType string
		want       any
	}{
		{"option", &binding.SettingsBackend{}},
		{"theme_mod", &binding.SettingsBackend{}},
		{"post", &binding.MetadataBackend{}},
		{"product", &binding.MetadataBackend{}},
		{"widget", binding.Unresolved{}},
	}
	for _, tt := range tests {
		t.Run(tt.objectType, func(t *testing.T) {
			assert.IsType(t, tt.want, d.Resolve(tt.objectType, nil, nil))
		})
	}
}

func TestDispatcher_MetadataKind(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	d := binding.NewDispatcher(binding.WithSettings(mem), binding.WithMetadata(mem.Metadata()))

	b := d.Resolve("user", nil, nil)
	require.NoError(t, b.Store(ctx, "bio", "7", "hi"))

	v, ok, err := mem.Metadata().Get(ctx, "user", "7", "bio")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hi", v)
}

func TestDispatcher_Resolver(t *testing.T) {
	mem := store.NewMemory()
	d := binding.NewDispatcher(binding.WithResolver(func(objectType string, _ entities.Subject) (binding.Backend, bool) {
		if objectType != "widget" {
			return nil, false
		}
		return &binding.SettingsBackend{Settings: mem}, true
	}))

	assert.IsType(t, &binding.SettingsBackend{}, d.Resolve("widget", nil, nil))
	assert.IsType(t, binding.Unresolved{}, d.Resolve("nav_menu", nil, nil))
}

func TestDispatcher_Callbacks(t *testing.T) {
	ctx := context.Background()
	var written any
	decl := &entities.Declaration{
		ValueCallback: func(context.Context, string, entities.Subject) (any, error) {
			return "computed", nil
		},
		UpdateValueCallback: func(_ context.Context, v any, _ string, _ entities.Subject) error {
			written = v
			return nil
		},
	}

	b := binding.NewDispatcher().Resolve("post", decl, nil)
	v, ok, err := b.Load(ctx, "x", "1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "computed", v)

	require.NoError(t, b.Store(ctx, "x", "1", "new"))
	assert.Equal(t, "new", written)
	require.NoError(t, b.Remove(ctx, "x", "1"))
	assert.Nil(t, written)
}

func TestCallbackBackend_Fallback(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	decl := &entities.Declaration{
		ValueCallback: func(context.Context, string, entities.Subject) (any, error) {
			return nil, nil
		},
	}
	b := binding.NewDispatcher(binding.WithSettings(mem)).Resolve("option", decl, nil)

	require.NoError(t, b.Store(ctx, "k", "", "stored"))
	v, _, _ := mem.Get(ctx, "k")
	assert.Equal(t, "stored", v)

	_, ok, err := b.Load(ctx, "k", "")
	require.NoError(t, err)
	assert.False(t, ok, "nil from a value callback reads as absent")
}

func TestUnresolved(t *testing.T) {
	ctx := context.Background()
	u := binding.Unresolved{ObjectType: "widget"}

	_, ok, err := u.Load(ctx, "k", "")
	require.NoError(t, err)
	assert.False(t, ok)

	err = u.Store(ctx, "k", "", 1)
	assert.True(t, errors.Is(err, binding.ErrNoBackend))
	assert.EqualError(t, err, "no backend for object type widget")
	assert.ErrorIs(t, u.Remove(ctx, "k", ""), binding.ErrNoBackend)
}
