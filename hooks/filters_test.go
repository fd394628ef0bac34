package hooks_test

import (
	"testing"

	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/hooks"
	"github.com/reglet-dev/reglet-forms/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendTag(tag string) hooks.Filter {
	return func(v any, _ entities.Subject) any {
		return v.(string) + tag
	}
}

func TestFilters_Order(t *testing.T) {
	f := hooks.NewFilters()
	require.NoError(t, f.Add("sanitize/**", 10, appendTag("-b")))
	require.NoError(t, f.Add("sanitize/**", 5, appendTag("-a")))
	require.NoError(t, f.Add("sanitize/**", 10, appendTag("-c")))

	assert.Equal(t, "v-a-b-c", f.Apply("sanitize/post/post/color", "v", nil))
	assert.Equal(t, 3, f.Len())
}

func TestFilters_Matching(t *testing.T) {
	ns := values.MustNewNamespace("post", "page")
	f := hooks.NewFilters()
	require.NoError(t, f.Add(hooks.SanitizeKey(ns, "color"), 10, appendTag("-exact")))
	require.NoError(t, f.Add("sanitize/post/*/color", 10, appendTag("-sub")))
	require.NoError(t, f.Add("sanitize/term/**", 10, appendTag("-term")))
	require.NoError(t, f.Add("output/post/**", 10, appendTag("-out")))

	assert.Equal(t, "v-exact-sub", f.Apply(hooks.SanitizeKey(ns, "color"), "v", nil))
	assert.Equal(t, "v-out", f.Apply(hooks.OutputKey(ns, "color"), "v", nil))
	assert.True(t, f.Has("sanitize/term/category/name"))
	assert.False(t, f.Has("sanitize/user/user/name"))
}

func TestFilters_BracketIDsMatchLiterally(t *testing.T) {
	ns := values.MustNewNamespace("option", "")
	f := hooks.NewFilters()
	require.NoError(t, f.Add("sanitize/option/option/*", 10, appendTag("-x")))

	assert.Equal(t, "v-x", f.Apply(hooks.SanitizeKey(ns, "header[url]"), "v", nil))
}

func TestFilters_AddErrors(t *testing.T) {
	f := hooks.NewFilters()
	assert.Error(t, f.Add("sanitize/[", 10, appendTag("x")))
	assert.Error(t, f.Add("sanitize/**", 10, nil))
	assert.Equal(t, 0, f.Len())
}

func TestKeys(t *testing.T) {
	ns := values.MustNewNamespace("user", "")
	assert.Equal(t, "sanitize/user/user/bio", hooks.SanitizeKey(ns, "bio"))
	assert.Equal(t, "output/user/user/bio", hooks.OutputKey(ns, "bio"))
}
