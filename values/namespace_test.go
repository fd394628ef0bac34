package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewNamespace(t *testing.T) {
	tests := []struct {
		name        string
		objectType  string
		subtype     string
		wantSubtype string
		wantErr     bool
	}{
		{"explicit subtype", "post", "page", "page", false},
		{"default subtype", "post", "", "post", false},
		{"trims whitespace", " post ", " page ", "page", false},
		{"any subtype", "post", AnySubtype, AnySubtype, false},
		{"missing type", "", "page", "", true},
		{"slash in type", "post/x", "", "", true},
		{"wildcard subtype fragment", "post", "pa*", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, err := NewNamespace(tt.objectType, tt.subtype)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubtype, ns.ObjectSubtype)
		})
	}
}

func Test_NewNamespace_MissingObjectType(t *testing.T) {
	_, err := NewNamespace("  ", "")
	assert.ErrorIs(t, err, ErrMissingObjectType)
}

func Test_Namespace_Helpers(t *testing.T) {
	ns := MustNewNamespace("term", "")
	assert.True(t, ns.IsDefaultSubtype())
	assert.False(t, ns.IsAny())
	assert.Equal(t, "term/term", ns.String())

	cat := ns.WithSubtype("category")
	assert.Equal(t, "term/category", cat.String())
	assert.True(t, cat.WithSubtype("").IsDefaultSubtype())

	assert.True(t, Namespace{}.IsZero())
	assert.Panics(t, func() { MustNewNamespace("", "") })
}
