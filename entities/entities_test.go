package entities_test

import (
	"errors"
	"testing"

	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    entities.Kind
		wantErr bool
	}{
		{"screen", entities.KindScreen, false},
		{"form", entities.KindScreen, false},
		{"section", entities.KindSection, false},
		{"control", entities.KindControl, false},
		{"field", entities.KindField, false},
		{"widget", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			k, err := entities.ParseKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, k)
		})
	}
}

func TestKind_ParentKind(t *testing.T) {
	parent, ok := entities.KindControl.ParentKind()
	assert.True(t, ok)
	assert.Equal(t, entities.KindSection, parent)

	parent, ok = entities.KindSection.ParentKind()
	assert.True(t, ok)
	assert.Equal(t, entities.KindScreen, parent)

	_, ok = entities.KindScreen.ParentKind()
	assert.False(t, ok)
	_, ok = entities.KindField.ParentKind()
	assert.False(t, ok)
}

func TestDeclaration_Defaults(t *testing.T) {
	d := &entities.Declaration{}
	assert.Equal(t, values.DefaultPriority, d.PriorityOrDefault())
	assert.Equal(t, 5, d.WithPriority(5).PriorityOrDefault())

	assert.Empty(t, d.PrimaryField())
	d.Fields = []string{"a", "b"}
	assert.Equal(t, "a", d.PrimaryField())
	d.DefaultField = "b"
	assert.Equal(t, "b", d.PrimaryField())
}

func TestDeclaration_Clone(t *testing.T) {
	orig := (&entities.Declaration{
		ID:      "color",
		Fields:  []string{"color"},
		Options: map[string]any{"choices": "x"},
		Field:   &entities.Declaration{ID: "color"},
	}).WithPriority(3)

	c := orig.Clone()
	*c.Priority = 99
	c.Fields[0] = "other"
	c.Options["choices"] = "y"
	c.Field.ID = "changed"

	assert.Equal(t, 3, orig.PriorityOrDefault())
	assert.Equal(t, []string{"color"}, orig.Fields)
	assert.Equal(t, "x", orig.Options["choices"])
	assert.Equal(t, "color", orig.Field.ID)

	var nilDecl *entities.Declaration
	assert.Nil(t, nilDecl.Clone())
}

func TestDeclaration_Validate(t *testing.T) {
	assert.NoError(t, (&entities.Declaration{ID: "ok", Kind: entities.KindControl}).Validate())

	err := (&entities.Declaration{Kind: "widget"}).Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrInvalidDeclaration)

	err = (&entities.Declaration{Fields: []string{""}}).Validate()
	assert.ErrorIs(t, err, entities.ErrInvalidDeclaration)
}

func TestDocument_Validate(t *testing.T) {
	doc := &entities.Document{
		Version:    "1.0.0",
		ObjectType: "post",
		Controls:   []entities.Declaration{{ID: "a", Kind: "bogus"}},
	}
	assert.ErrorIs(t, doc.Validate(), entities.ErrInvalidDeclaration)

	doc.Controls[0].Kind = entities.KindControl
	assert.NoError(t, doc.Validate())
	assert.Equal(t, 1, doc.Count())

	assert.Error(t, (&entities.Document{ObjectType: "post"}).Validate())
}

func TestRegistrationError(t *testing.T) {
	ns := values.MustNewNamespace("post", "")
	err := entities.NewRegistrationError(entities.CodeIDExists, entities.KindControl, ns, "color", "")

	assert.True(t, errors.Is(err, entities.ErrIDExists))
	assert.False(t, errors.Is(err, entities.ErrIDRequired))
	assert.Equal(t, `control "color" in post/post: component id already exists`, err.Error())

	var regErr *entities.RegistrationError
	require.True(t, errors.As(error(err), &regErr))
	assert.Equal(t, entities.CodeIDExists, regErr.Code)

	noID := entities.NewRegistrationError(entities.CodeIDRequired, entities.KindField, ns, "", "")
	assert.Equal(t, "field post/post: component id is required", noID.Error())
}

func TestUnknownTypeError(t *testing.T) {
	err := &entities.UnknownTypeError{Kind: entities.KindControl, Type: "txt", Suggestion: "text"}
	assert.ErrorIs(t, err, entities.ErrUnknownComponentType)
	assert.Contains(t, err.Error(), `did you mean "text"`)

	bare := &entities.UnknownTypeError{Kind: entities.KindControl, Type: "zzz"}
	assert.Equal(t, `unknown control type "zzz"`, bare.Error())
}
