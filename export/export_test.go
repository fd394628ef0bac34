package export_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/reglet-dev/reglet-forms/capability"
	"github.com/reglet-dev/reglet-forms/component"
	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/export"
	"github.com/reglet-dev/reglet-forms/policy"
	"github.com/reglet-dev/reglet-forms/registry"
	"github.com/reglet-dev/reglet-forms/render"
	"github.com/reglet-dev/reglet-forms/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	ctx := context.Background()
	ns := values.MustNewNamespace("post", "")
	principal := capability.NewPrincipal("author", capability.GrantSet{Capabilities: []string{"edit_posts"}})
	r := registry.New(registry.WithPolicy(policy.NewGate(principal)))

	add := func(kind entities.Kind, id string, d *entities.Declaration) {
		require.NoError(t, r.Add(kind, ns, id, d))
	}
	add(entities.KindScreen, "edit", nil)
	add(entities.KindSection, "main", &entities.Declaration{Parent: "edit"})
	add(entities.KindSection, "aside", &entities.Declaration{Priority: intPtr(20)})
	add(entities.KindField, "title", nil)
	add(entities.KindControl, "title", &entities.Declaration{Parent: "main", Fields: []string{"title"}, Label: "Title"})
	add(entities.KindControl, "tag", &entities.Declaration{Parent: "aside"})
	add(entities.KindControl, "admin", &entities.Declaration{Parent: "main", Capability: "manage_options"})

	p, err := r.Prepare(ns)
	require.NoError(t, err)
	h, err := render.NewHTMLRenderer()
	require.NoError(t, err)

	payload, err := export.Build(ctx, p, h, component.RenderContext{ItemID: "5"})
	require.NoError(t, err)

	assert.Equal(t, []string{"edit", "aside"}, payload.Containers)
	assert.NotContains(t, payload.Controls, "admin")

	title := payload.Controls["title"]
	require.NotNil(t, title)
	assert.Equal(t, "main", title.Parent)
	assert.Equal(t, "section", title.ParentType)
	assert.Equal(t, "post", title.ObjectType)
	assert.Equal(t, "post", title.ObjectSubtype)
	assert.Equal(t, map[string][]string{"fields": {"title"}}, title.Children)
	assert.True(t, title.Active)
	assert.Contains(t, title.Content, `name="title"`)

	edit := payload.Screens["edit"]
	require.NotNil(t, edit)
	assert.Equal(t, map[string][]string{"sections": {"main"}}, edit.Children)
	assert.Empty(t, edit.Parent)

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"instanceNumber"`)
}

func TestBuild_WithoutRenderer(t *testing.T) {
	ns := values.MustNewNamespace("option", "")
	r := registry.New()
	require.NoError(t, r.Add(entities.KindSection, ns, "general", nil))
	require.NoError(t, r.Add(entities.KindControl, ns, "blogname", &entities.Declaration{Parent: "general"}))
	p, err := r.Prepare(ns)
	require.NoError(t, err)

	payload, err := export.Build(context.Background(), p, nil, component.RenderContext{})
	require.NoError(t, err)
	assert.Empty(t, payload.Sections["general"].Content)
	assert.Equal(t, []string{"blogname"}, payload.Sections["general"].Children["controls"])
}

func intPtr(v int) *int { return &v }
