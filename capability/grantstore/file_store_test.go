package grantstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/reglet-forms/capability"
	"github.com/reglet-dev/reglet-forms/capability/grantstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadMissing(t *testing.T) {
	store := grantstore.NewFileStore(grantstore.WithPath(filepath.Join(t.TempDir(), "none.yaml")))
	grants, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestFileStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "principals.yaml")
	store := grantstore.NewFileStore(grantstore.WithPath(path), grantstore.WithFilePermissions(0o640))

	err := store.Save(map[string]capability.GrantSet{
		"editor": {Capabilities: []string{"edit_posts", "edit_posts", "upload_files"}},
	})
	require.NoError(t, err)
	assert.Equal(t, path, store.ConfigPath())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	grants, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"edit_posts", "upload_files"}, grants["editor"].Capabilities)
}

func TestFileStore_LoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("principals: [unclosed"), 0o600))

	_, err := grantstore.NewFileStore(grantstore.WithPath(path)).Load()
	assert.Error(t, err)
}
