package store_test

import (
	"context"
	"testing"

	"github.com/reglet-dev/reglet-forms/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Settings(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	_, ok, err := m.Get(ctx, "color")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "color", "red"))
	v, ok, err := m.Get(ctx, "color")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "red", v)

	require.NoError(t, m.Delete(ctx, "color"))
	_, ok, _ = m.Get(ctx, "color")
	assert.False(t, ok)
}

func TestMemory_Metadata(t *testing.T) {
	ctx := context.Background()
	meta := store.NewMemory().Metadata()

	require.NoError(t, meta.Set(ctx, "post", "1", "subtitle", "hello"))
	require.NoError(t, meta.Set(ctx, "user", "1", "subtitle", "other"))

	v, ok, err := meta.Get(ctx, "post", "1", "subtitle")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	_, ok, _ = meta.Get(ctx, "post", "2", "subtitle")
	assert.False(t, ok)

	require.NoError(t, meta.Delete(ctx, "post", "1", "subtitle"))
	_, ok, _ = meta.Get(ctx, "post", "1", "subtitle")
	assert.False(t, ok)

	v, _, _ = meta.Get(ctx, "user", "1", "subtitle")
	assert.Equal(t, "other", v)
}
