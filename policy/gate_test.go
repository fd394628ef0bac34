package policy_test

import (
	"testing"

	"github.com/reglet-dev/reglet-forms/capability"
	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/policy"
	"github.com/reglet-dev/reglet-forms/values"
	"github.com/stretchr/testify/assert"
)

type stubSubject struct{ id string }

func (s stubSubject) ID() string                  { return s.id }
func (s stubSubject) Kind() entities.Kind         { return entities.KindControl }
func (s stubSubject) Type() string                { return "" }
func (s stubSubject) Namespace() values.Namespace { return values.MustNewNamespace("post", "") }

type recordingHandler struct {
	checks []string
}

func (h *recordingHandler) OnDenial(check string, _ entities.Subject, _ string) {
	h.checks = append(h.checks, check)
}

func TestGate_Evaluate(t *testing.T) {
	principal := capability.NewPrincipal("editor", capability.GrantSet{
		Capabilities: []string{"edit_posts"},
		Features:     []string{"custom-header"},
	})
	gate := policy.NewGate(principal)
	subject := stubSubject{id: "color"}

	allow := func(entities.Subject) bool { return true }
	deny := func(entities.Subject) bool { return false }

	tests := []struct {
		name      string
		rule      policy.Rule
		wantAllow bool
		wantCheck string
	}{
		{"empty rule", policy.Rule{}, true, ""},
		{"granted capability", policy.Rule{Capability: "edit_posts"}, true, ""},
		{"missing capability", policy.Rule{Capability: "manage_options"}, false, "capability"},
		{"supported feature", policy.Rule{ThemeSupports: []string{"custom-header"}}, true, ""},
		{"unsupported feature", policy.Rule{ThemeSupports: []string{"custom-header", "custom-logo"}}, false, "theme_supports"},
		{"callback allows", policy.Rule{Callback: allow}, true, ""},
		{"callback denies", policy.Rule{Callback: deny}, false, "callback"},
		{"capability checked first", policy.Rule{Capability: "manage_options", Callback: deny}, false, "capability"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := gate.Evaluate(subject, tt.rule)
			assert.Equal(t, tt.wantAllow, d.Allowed)
			assert.Equal(t, tt.wantCheck, d.Check)
		})
	}
}

func TestGate_ShortCircuitsCallback(t *testing.T) {
	gate := policy.NewGate(capability.Anonymous())
	called := false
	rule := policy.Rule{
		Capability: "manage_options",
		Callback:   func(entities.Subject) bool { called = true; return true },
	}
	assert.False(t, gate.Check(stubSubject{id: "x"}, rule))
	assert.False(t, called)
}

func TestGate_Check_ReportsDenials(t *testing.T) {
	h := &recordingHandler{}
	gate := policy.NewGate(nil, policy.WithDenialHandler(h))

	assert.True(t, gate.Check(stubSubject{id: "a"}, policy.Rule{}))
	assert.False(t, gate.Check(stubSubject{id: "b"}, policy.Rule{Capability: "read"}))
	assert.Equal(t, []string{"capability"}, h.checks)

	assert.False(t, gate.Evaluate(stubSubject{id: "c"}, policy.Rule{Capability: "read"}).Allowed)
	assert.Len(t, h.checks, 1, "Evaluate has no side effects")
}

func TestRuleFromDeclaration(t *testing.T) {
	d := &entities.Declaration{Capability: "edit_posts", ThemeSupports: []string{"menus"}}
	rule := policy.RuleFromDeclaration(d)
	assert.Equal(t, "edit_posts", rule.Capability)
	assert.Equal(t, []string{"menus"}, rule.ThemeSupports)
	assert.Nil(t, rule.Callback)
}

func TestSlogDenialHandler_NilLogger(t *testing.T) {
	h := &policy.SlogDenialHandler{}
	assert.NotPanics(t, func() { h.OnDenial("capability", stubSubject{id: "x"}, "reason") })
}
