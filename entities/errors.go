package entities

import (
	"errors"
	"fmt"

	"github.com/reglet-dev/reglet-forms/values"
)

// Sentinel errors for registration failures.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrIDRequired is returned when a component is added without an id.
	ErrIDRequired = errors.New("component id is required")

	// ErrIDExists is returned when an id is already registered in a namespace.
	ErrIDExists = errors.New("component id already exists")

	// ErrMissingParent is returned when a component that must live in a
	// container declares none.
	ErrMissingParent = errors.New("parent container is required")

	// ErrMissingObjectType is returned when no object type is given.
	ErrMissingObjectType = values.ErrMissingObjectType

	// ErrUnknownComponentType is returned when a declaration names a type with
	// no registered constructor.
	ErrUnknownComponentType = errors.New("unknown component type")

	// ErrInvalidDeclaration is returned when a declaration fails validation.
	ErrInvalidDeclaration = errors.New("invalid declaration")

	// ErrNotFound is returned when a lookup names an unregistered component.
	ErrNotFound = errors.New("component not found")
)

// ErrorCode is the machine-readable code of a RegistrationError.
type ErrorCode string

const (
	CodeIDRequired         ErrorCode = "id_required"
	CodeIDExists           ErrorCode = "id_exists"
	CodeMissingParent      ErrorCode = "missing_parent"
	CodeMissingObjectType  ErrorCode = "missing_object_type"
	CodeUnknownType        ErrorCode = "unknown_component_type"
	CodeInvalidDeclaration ErrorCode = "invalid_declaration"
)

var codeSentinels = map[ErrorCode]error{
	CodeIDRequired:         ErrIDRequired,
	CodeIDExists:           ErrIDExists,
	CodeMissingParent:      ErrMissingParent,
	CodeMissingObjectType:  ErrMissingObjectType,
	CodeUnknownType:        ErrUnknownComponentType,
	CodeInvalidDeclaration: ErrInvalidDeclaration,
}

// RegistrationError is the structured result of a rejected Add.
type RegistrationError struct {
	Err       error
	Namespace values.Namespace
	Code      ErrorCode
	Kind      Kind
	ID        string
	Message   string
}

// NewRegistrationError builds a RegistrationError for code.
func NewRegistrationError(code ErrorCode, kind Kind, ns values.Namespace, id, message string) *RegistrationError {
	return &RegistrationError{Code: code, Kind: kind, Namespace: ns, ID: id, Message: message}
}

func (e *RegistrationError) Error() string {
	msg := e.Message
	if msg == "" {
		if sentinel, ok := codeSentinels[e.Code]; ok {
			msg = sentinel.Error()
		} else {
			msg = string(e.Code)
		}
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Namespace, msg)
	}
	return fmt.Sprintf("%s %q in %s: %s", e.Kind, e.ID, e.Namespace, msg)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, entities.ErrIDExists)
func (e *RegistrationError) Is(target error) bool {
	return codeSentinels[e.Code] == target
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// UnknownTypeError indicates that no constructor is registered for a type tag.
type UnknownTypeError struct {
	Kind       Kind
	Type       string
	Suggestion string
}

func (e *UnknownTypeError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown %s type %q (did you mean %q?)", e.Kind, e.Type, e.Suggestion)
	}
	return fmt.Sprintf("unknown %s type %q", e.Kind, e.Type)
}

// Is implements error matching for errors.Is() checks.
func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownComponentType
}
