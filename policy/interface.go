// Package policy evaluates the capability gate that decides whether a
// component is visible to the acting principal.
package policy

import "github.com/reglet-dev/reglet-forms/entities"

// Rule is the gate a component declares.
type Rule struct {
	Callback      entities.GateCallback
	Capability    string
	ThemeSupports []string
}

// RuleFromDeclaration extracts the gate rule of a declaration.
func RuleFromDeclaration(d *entities.Declaration) Rule {
	return Rule{
		Capability:    d.Capability,
		ThemeSupports: d.ThemeSupports,
		Callback:      d.CapabilitiesCallback,
	}
}

// Decision is the outcome of a gate evaluation.
type Decision struct {
	// Check names the failing check: "capability", "theme_supports" or
	// "callback". Empty when allowed.
	Check   string
	Reason  string
	Allowed bool
}

// Policy enforces gate rules against the acting principal.
type Policy interface {
	// Check evaluates rule and reports a denial to the denial handler.
	Check(subject entities.Subject, rule Rule) bool

	// Evaluate returns the decision without side effects.
	Evaluate(subject entities.Subject, rule Rule) Decision
}

// DenialHandler is called when a gate check denies a component.
type DenialHandler interface {
	// OnDenial is called with the failing check, the denied subject and a reason.
	OnDenial(check string, subject entities.Subject, reason string)
}
