package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantBase string
		wantPath Path
	}{
		{"plain", "color", "color", nil},
		{"one segment", "header_image_data[url]", "header_image_data", Path{"url"}},
		{"two segments", "social[links][twitter]", "social", Path{"links", "twitter"}},
		{"unterminated", "social[links", "social", nil},
		{"trailing text ignored", "social[links]x", "social", Path{"links"}},
		{"empty segment", "list[]", "list", Path{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, path := ParseID(tt.input)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func Test_JoinID(t *testing.T) {
	assert.Equal(t, "social[links][twitter]", JoinID("social", Path{"links", "twitter"}))
	assert.Equal(t, "color", JoinID("color", nil))
}

func Test_Path_Get(t *testing.T) {
	root := map[string]any{
		"primary": "red",
		"nested": map[string]any{
			"x": map[string]any{"y": 42},
		},
		"scalar": "text",
	}

	assert.Equal(t, "red", Path{"primary"}.Get(root, "default"))
	assert.Equal(t, 42, Path{"nested", "x", "y"}.Get(root, "default"))
	assert.Equal(t, "default", Path{"nested", "missing"}.Get(root, "default"))
	assert.Equal(t, "default", Path{"scalar", "x"}.Get(root, "default"))
	assert.Equal(t, "default", Path{"x", "y"}.Get(nil, "default"))
	assert.Equal(t, root, Path{}.Get(root, "default"))
	assert.Equal(t, "default", Path{}.Get(nil, "default"))
}

func Test_Path_Get_YAMLMaps(t *testing.T) {
	root := map[string]any{"outer": map[any]any{"inner": "v"}}
	assert.Equal(t, "v", Path{"outer", "inner"}.Get(root, nil))
}

func Test_Path_Has(t *testing.T) {
	root := map[string]any{"a": map[string]any{"b": nil}}
	assert.True(t, Path{"a", "b"}.Has(root))
	assert.False(t, Path{"a", "c"}.Has(root))
	assert.True(t, Path{}.Has(root))
}

func Test_Path_Replace(t *testing.T) {
	t.Run("empty path replaces root", func(t *testing.T) {
		assert.Equal(t, "whole", Path{}.Replace(map[string]any{"a": 1}, "whole"))
	})

	t.Run("splices into existing map without mutating it", func(t *testing.T) {
		root := map[string]any{"primary": "red"}
		got := Path{"secondary"}.Replace(root, "blue")

		assert.Equal(t, map[string]any{"primary": "red", "secondary": "blue"}, got)
		assert.Equal(t, map[string]any{"primary": "red"}, root)
	})

	t.Run("creates intermediate maps", func(t *testing.T) {
		got := Path{"a", "b", "c"}.Replace(nil, 1)
		assert.Equal(t, map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}}, got)
	})

	t.Run("coerces non-map occupants", func(t *testing.T) {
		root := map[string]any{"a": "scalar"}
		got := Path{"a", "b"}.Replace(root, true)
		assert.Equal(t, map[string]any{"a": map[string]any{"b": true}}, got)
	})

	t.Run("keeps YAML maps with non-string keys", func(t *testing.T) {
		root := map[string]any{"sizes": map[any]any{1: "small", true: "yes", "name": "x"}}
		got := Path{"sizes", "2"}.Replace(root, "large")

		assert.Equal(t, map[string]any{"sizes": map[string]any{
			"1": "small", "true": "yes", "name": "x", "2": "large",
		}}, got)
		assert.Equal(t, "small", Path{"sizes", "1"}.Get(root, nil))
	})

	t.Run("nested maps are copied along the path", func(t *testing.T) {
		inner := map[string]any{"x": 1}
		root := map[string]any{"a": inner}
		got := Path{"a", "y"}.Replace(root, 2)

		require.IsType(t, map[string]any{}, got)
		assert.Equal(t, map[string]any{"x": 1, "y": 2}, got.(map[string]any)["a"])
		assert.Equal(t, map[string]any{"x": 1}, inner)
	})
}

func Test_Path_Delete(t *testing.T) {
	root := map[string]any{"a": map[string]any{"b": 1, "c": 2}}
	got := Path{"a", "b"}.Delete(root)

	assert.Equal(t, map[string]any{"a": map[string]any{"c": 2}}, got)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1, "c": 2}}, root)
	assert.Nil(t, Path{}.Delete(root))
}
