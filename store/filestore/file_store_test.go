package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/reglet-forms/store/filestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "values.yaml")

	s := filestore.New(filestore.WithPath(path))
	require.NoError(t, s.Set(ctx, "color", map[string]any{"primary": "red"}))
	assert.Equal(t, path, s.ConfigPath())

	reopened := filestore.New(filestore.WithPath(path))
	v, ok, err := reopened.Get(ctx, "color")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"primary": "red"}, v)

	require.NoError(t, reopened.Delete(ctx, "color"))
	require.NoError(t, reopened.Delete(ctx, "missing"))
	_, ok, err = filestore.New(filestore.WithPath(path)).Get(ctx, "color")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_Metadata(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "values.yaml")

	meta := filestore.New(filestore.WithPath(path)).Metadata()
	require.NoError(t, meta.Set(ctx, "post", "42", "subtitle", "hello"))

	reopened := filestore.New(filestore.WithPath(path)).Metadata()
	v, ok, err := reopened.Get(ctx, "post", "42", "subtitle")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	_, ok, err = reopened.Get(ctx, "post", "7", "subtitle")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, reopened.Delete(ctx, "post", "42", "subtitle"))
	_, ok, _ = reopened.Get(ctx, "post", "42", "subtitle")
	assert.False(t, ok)
}

func TestFileStore_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte("settings: [oops"), 0o600))

	_, _, err := filestore.New(filestore.WithPath(path)).Get(context.Background(), "x")
	assert.Error(t, err)
}
