// Package values holds the small value objects shared by every layer:
// namespaces, component identifiers and bracket-notation value paths.
package values

import (
	"errors"
	"fmt"
	"strings"
)

// AnySubtype asks a query to merge every subtype bucket of an object type.
const AnySubtype = "*"

// DefaultPriority is the sort priority of a component that declares none.
const DefaultPriority = 10

// ErrMissingObjectType is returned when a namespace is built without an object type.
var ErrMissingObjectType = errors.New("object type is required")

// Namespace scopes every registry lookup to an (object type, object subtype) pair.
type Namespace struct {
	ObjectType    string
	ObjectSubtype string
}

// NewNamespace validates objectType and defaults an empty subtype to the type's
// own bucket.
func NewNamespace(objectType, subtype string) (Namespace, error) {
	objectType = strings.TrimSpace(objectType)
	if objectType == "" {
		return Namespace{}, ErrMissingObjectType
	}
	if strings.ContainsAny(objectType, "/*") {
		return Namespace{}, fmt.Errorf("invalid object type %q: must not contain '/' or '*'", objectType)
	}

	subtype = strings.TrimSpace(subtype)
	if subtype == "" {
		subtype = objectType
	}
	if subtype != AnySubtype && strings.ContainsAny(subtype, "/*") {
		return Namespace{}, fmt.Errorf("invalid object subtype %q: must not contain '/' or '*'", subtype)
	}

	return Namespace{ObjectType: objectType, ObjectSubtype: subtype}, nil
}

// MustNewNamespace creates a Namespace or panics.
func MustNewNamespace(objectType, subtype string) Namespace {
	ns, err := NewNamespace(objectType, subtype)
	if err != nil {
		panic(err)
	}
	return ns
}

// IsAny reports whether the namespace addresses every subtype of its type.
func (n Namespace) IsAny() bool {
	return n.ObjectSubtype == AnySubtype
}

// IsDefaultSubtype reports whether the subtype is the type's own bucket.
func (n Namespace) IsDefaultSubtype() bool {
	return n.ObjectSubtype == n.ObjectType
}

// WithSubtype returns a copy of n scoped to subtype.
func (n Namespace) WithSubtype(subtype string) Namespace {
	if subtype == "" {
		subtype = n.ObjectType
	}
	return Namespace{ObjectType: n.ObjectType, ObjectSubtype: subtype}
}

// IsZero reports whether n is the zero value.
func (n Namespace) IsZero() bool {
	return n.ObjectType == ""
}

// String returns "type/subtype".
func (n Namespace) String() string {
	return n.ObjectType + "/" + n.ObjectSubtype
}
