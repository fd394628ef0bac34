package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-forms/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	c, err := config.Load(config.Source{})
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Store.Driver)
	assert.Equal(t, "127.0.0.1:8080", c.Server.Addr)
	assert.Equal(t, slog.LevelInfo, c.Level())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
documents: [post.yaml]
vars:
  post_type: page
store:
  driver: yaml
  path: /tmp/values.yaml
log:
  level: debug
`)
	t.Setenv("FORMCTL_SERVER_ADDR", ":9090")

	c, err := config.Load(config.Source{File: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"post.yaml"}, c.Documents)
	assert.Equal(t, map[string]any{"post_type": "page"}, c.TemplateVars())
	assert.Equal(t, "yaml", c.Store.Driver)
	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, slog.LevelDebug, c.Level())
}

func TestLoad_Binds(t *testing.T) {
	path := writeConfig(t, "store:\n  driver: memory\n")

	c, err := config.Load(config.Source{File: path, Binds: map[string]any{"store.driver": "sqlite", "store.path": "forms.db"}})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.Store.Driver)
	assert.Equal(t, "forms.db", c.Store.Path)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown driver", "store:\n  driver: redis\n"},
		{"path required", "store:\n  driver: sqlite\n"},
		{"principal name required", "principal:\n  grants_file: grants.yaml\n"},
		{"bad level", "log:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(config.Source{File: writeConfig(t, tt.body)})
			assert.ErrorContains(t, err, "config validation failed")
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(config.Source{File: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.ErrorContains(t, err, "read config")
}
