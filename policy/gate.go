package policy

import (
	"fmt"

	"github.com/reglet-dev/reglet-forms/capability"
	"github.com/reglet-dev/reglet-forms/entities"
)

// Gate is the default Policy: the AND of the capability rule, the required
// feature flags and the custom callback, evaluated in that order.
type Gate struct {
	checker       capability.Checker
	denialHandler DenialHandler
}

var _ Policy = (*Gate)(nil)

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithDenialHandler sets the handler notified of denials.
func WithDenialHandler(h DenialHandler) GateOption {
	return func(g *Gate) {
		if h != nil {
			g.denialHandler = h
		}
	}
}

// NewGate creates a gate for checker. A nil checker is the anonymous principal.
func NewGate(checker capability.Checker, opts ...GateOption) *Gate {
	if checker == nil {
		checker = capability.Anonymous()
	}
	g := &Gate{
		checker:       checker,
		denialHandler: &NopDenialHandler{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Checker returns the principal the gate evaluates against.
func (g *Gate) Checker() capability.Checker {
	return g.checker
}

// Evaluate implements Policy. The first failing check short-circuits.
func (g *Gate) Evaluate(subject entities.Subject, rule Rule) Decision {
	if rule.Capability != "" && !g.checker.HasCapability(rule.Capability) {
		return Decision{Check: "capability", Reason: fmt.Sprintf("missing capability %q", rule.Capability)}
	}
	for _, feature := range rule.ThemeSupports {
		if !g.checker.SupportsFeature(feature) {
			return Decision{Check: "theme_supports", Reason: fmt.Sprintf("feature %q not supported", feature)}
		}
	}
	if rule.Callback != nil && !rule.Callback(subject) {
		return Decision{Check: "callback", Reason: "capabilities callback denied access"}
	}
	return Decision{Allowed: true}
}

// Check implements Policy.
func (g *Gate) Check(subject entities.Subject, rule Rule) bool {
	d := g.Evaluate(subject, rule)
	if !d.Allowed {
		g.denialHandler.OnDenial(d.Check, subject, d.Reason)
	}
	return d.Allowed
}
