// Package entities defines the declaration records submitted at registration
// time, the document format they are loaded from, and the registry errors.
package entities

import "fmt"

// Kind classifies a component within the screen → section → control → field
// hierarchy.
type Kind string

const (
	KindScreen  Kind = "screen"
	KindSection Kind = "section"
	KindControl Kind = "control"
	KindField   Kind = "field"
)

// Kinds lists every kind in hierarchy order.
var Kinds = []Kind{KindScreen, KindSection, KindControl, KindField}

// ParseKind converts a string to a Kind. "form" is accepted as a screen.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "screen", "form":
		return KindScreen, nil
	case "section":
		return KindSection, nil
	case "control":
		return KindControl, nil
	case "field":
		return KindField, nil
	default:
		return "", fmt.Errorf("unknown component kind %q", s)
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindScreen, KindSection, KindControl, KindField:
		return true
	}
	return false
}

// ParentKind returns the container kind a component of kind k attaches to.
// Screens and fields have no parent container.
func (k Kind) ParentKind() (Kind, bool) {
	switch k {
	case KindSection:
		return KindScreen, true
	case KindControl:
		return KindSection, true
	}
	return "", false
}

// Plural returns the export key used for lists of k.
func (k Kind) Plural() string {
	return string(k) + "s"
}

func (k Kind) String() string {
	return string(k)
}
