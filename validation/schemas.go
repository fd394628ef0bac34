// Package validation checks declaration options against per-type JSON
// schemas.
package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/reglet-dev/reglet-forms/entities"
)

// TextOptions are the options of text-like controls.
type TextOptions struct {
	Placeholder string `json:"placeholder,omitempty"`
	MaxLength   int    `json:"maxlength,omitempty" jsonschema:"minimum=1"`
	Rows        int    `json:"rows,omitempty" jsonschema:"minimum=1"`
}

// NumberOptions are the options of number controls.
type NumberOptions struct {
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Step *float64 `json:"step,omitempty" jsonschema:"exclusiveMinimum=0"`
}

// ChoiceOptions are the options of select and radio controls. Choices is a
// list of values or {value, label} objects, or a value to label object.
type ChoiceOptions struct {
	Choices any `json:"choices,omitempty"`
}

// Schemas holds a JSON schema per (kind, type tag).
type Schemas struct {
	schemas    map[string]string
	mu         sync.RWMutex
	strictMode bool
	reflector  *jsonschema.Reflector
}

// SchemasOption configures Schemas.
type SchemasOption func(*Schemas)

// WithStrictMode rejects options a reflected schema does not declare.
func WithStrictMode(strict bool) SchemasOption {
	return func(s *Schemas) {
		s.strictMode = strict
	}
}

// NewSchemas creates an empty schema set.
func NewSchemas(opts ...SchemasOption) *Schemas {
	s := &Schemas{
		schemas:    make(map[string]string),
		reflector:  new(jsonschema.Reflector),
		strictMode: true,
	}
	s.reflector.ExpandedStruct = true

	for _, opt := range opts {
		opt(s)
	}
	s.reflector.AllowAdditionalProperties = !s.strictMode
	return s
}

// DefaultSchemas returns schemas for the built-in control types.
func DefaultSchemas(opts ...SchemasOption) *Schemas {
	s := NewSchemas(opts...)
	for _, tag := range []string{"text", "textarea", "email", "url", "password"} {
		_ = s.Register(entities.KindControl, tag, TextOptions{})
	}
	_ = s.Register(entities.KindControl, "number", NumberOptions{})
	_ = s.Register(entities.KindControl, "select", ChoiceOptions{})
	_ = s.Register(entities.KindControl, "radio", ChoiceOptions{})
	return s
}

func schemaKey(kind entities.Kind, tag string) string {
	return string(kind) + "/" + tag
}

// Register adds the schema for (kind, tag). model is a Go struct reflected
// into a schema, or a raw schema as a string, []byte or map.
func (s *Schemas) Register(kind entities.Kind, tag string, model any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := schemaKey(kind, tag)
	if _, exists := s.schemas[key]; exists {
		return fmt.Errorf("options schema already registered: %s", key)
	}

	var schemaStr string
	switch v := model.(type) {
	case string:
		schemaStr = v
	case []byte:
		schemaStr = string(v)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal schema map: %w", err)
		}
		schemaStr = string(b)
	default:
		t := reflect.TypeOf(model)
		if t == nil || (t.Kind() != reflect.Struct && !(t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct)) {
			return fmt.Errorf("options schema for %s: unsupported model %T", key, model)
		}
		b, err := json.MarshalIndent(s.reflector.Reflect(model), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal generated schema: %w", err)
		}
		schemaStr = string(b)
	}

	s.schemas[key] = schemaStr
	return nil
}

// Get returns the schema for (kind, tag).
func (s *Schemas) Get(kind entities.Kind, tag string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.schemas[schemaKey(kind, tag)]
	return v, ok
}

// List returns every registered "kind/tag" key, sorted.
func (s *Schemas) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.schemas))
	for k := range s.schemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
