package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FORMCTL_CONFIG", "")

	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExport(t *testing.T) {
	out, err := run(t, "export", "option", "--doc", "testdata/settings.yaml")
	require.NoError(t, err)

	var payload struct {
		Containers []string                  `json:"containers"`
		Controls   map[string]map[string]any `json:"controls"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, []string{"general"}, payload.Containers)
	assert.Contains(t, payload.Controls, "site_title")
	assert.Contains(t, payload.Controls, "accent")
}

func TestRender(t *testing.T) {
	out, err := run(t, "render", "option", "general", "--doc", "testdata/settings.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, `id="forms-screen-general"`)
	assert.Contains(t, out, `value="My Site"`)
	assert.Contains(t, out, `value="#336699"`)
}

func TestRender_NotAContainer(t *testing.T) {
	_, err := run(t, "render", "option", "site_title", "--doc", "testdata/settings.yaml")
	assert.Error(t, err)
}

func TestTree(t *testing.T) {
	out, err := run(t, "tree", "option", "--doc", "testdata/settings.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "option/option")
	assert.Contains(t, out, "General")
	assert.Contains(t, out, "Site identity")
	assert.Contains(t, out, "site_title [text] -> site_title")
}

func TestTree_Empty(t *testing.T) {
	out, err := run(t, "tree", "option")
	require.NoError(t, err)
	assert.Contains(t, out, "(nothing visible)")
}

func TestStoreFlags(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "export", "option", "--doc", "testdata/settings.yaml",
		"--store", "sqlite", "--store-path", filepath.Join(dir, "values.db"))
	require.NoError(t, err)

	_, err = run(t, "export", "option", "--store", "sqlite")
	assert.ErrorContains(t, err, "config validation failed")
}

func TestPrincipal_Unknown(t *testing.T) {
	grants := filepath.Join(t.TempDir(), "grants.yaml")
	_, err := run(t, "tree", "option", "--grants", grants, "--principal", "editor")
	assert.ErrorContains(t, err, `unknown principal "editor"`)
}

func TestGrants(t *testing.T) {
	out, err := run(t, "grants", "--doc", "testdata/gated.yaml", "--var", "area=appearance",
		"--grants", "testdata/grants.yaml", "--principal", "designer")
	require.NoError(t, err)
	assert.Contains(t, out, "edit_theme_options")
	assert.Contains(t, out, "principal: designer")
	require.Contains(t, out, "missing:")
	missing := out[strings.Index(out, "missing:"):]
	assert.Contains(t, missing, "menus")
	assert.NotContains(t, missing, "edit_theme_options")
}

func TestTree_Principal(t *testing.T) {
	args := []string{"tree", "option", "--subtype", "appearance", "--doc", "testdata/gated.yaml",
		"--var", "area=appearance", "--grants", "testdata/grants.yaml"}

	out, err := run(t, append(args, "--principal", "admin")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Appearance")
	assert.Contains(t, out, "primary_menu [select] -> nav[primary]")

	out, err = run(t, append(args, "--principal", "designer")...)
	require.NoError(t, err)
	assert.Contains(t, out, "(nothing visible)")
}
