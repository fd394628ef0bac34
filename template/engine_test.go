package template_test

import (
	"testing"

	"github.com/reglet-dev/reglet-forms/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoEngine_Render(t *testing.T) {
	raw := []byte("object_type: {{ .vars.type }}\n")

	out, err := template.NewGoEngine().Render(raw, map[string]any{"type": "post"})
	require.NoError(t, err)
	assert.Equal(t, "object_type: post\n", string(out))

	_, err = template.NewGoEngine().Render(raw, map[string]any{})
	assert.Error(t, err, "strict mode fails on missing variables")

	out, err = template.NewGoEngine(template.WithStrict(false)).Render(raw, map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "object_type:")

	_, err = template.NewGoEngine().Render([]byte("{{ .vars.type "), nil)
	assert.Error(t, err)
}
