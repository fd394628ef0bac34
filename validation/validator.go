package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reglet-dev/reglet-forms/entities"
)

// Error is one schema violation.
type Error struct {
	Field   string
	Message string
}

// Result is the outcome of validating one options map.
type Result struct {
	Errors []Error
	Valid  bool
}

// OptionsError reports the violations of a rejected options map.
type OptionsError struct {
	Kind   entities.Kind
	Type   string
	Errors []Error
}

func (e *OptionsError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		if ve.Field == "" {
			parts[i] = ve.Message
			continue
		}
		parts[i] = ve.Field + ": " + ve.Message
	}
	return fmt.Sprintf("%s %q options: %s", e.Kind, e.Type, strings.Join(parts, "; "))
}

// OptionsValidator validates declaration options against Schemas. Types
// without a schema accept any options.
type OptionsValidator struct {
	schemas  *Schemas
	mu       sync.Mutex
	compiler *jsonschema.Compiler
	compiled map[string]*jsonschema.Schema
}

// NewOptionsValidator creates a validator over schemas.
func NewOptionsValidator(schemas *Schemas) *OptionsValidator {
	return &OptionsValidator{
		schemas:  schemas,
		compiler: jsonschema.NewCompiler(),
		compiled: make(map[string]*jsonschema.Schema),
	}
}

func (v *OptionsValidator) schema(kind entities.Kind, tag string) (*jsonschema.Schema, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := schemaKey(kind, tag)
	if sch, ok := v.compiled[key]; ok {
		return sch, true, nil
	}
	raw, ok := v.schemas.Get(kind, tag)
	if !ok {
		return nil, false, nil
	}
	url := "https://reglet.dev/forms/schemas/" + key + ".json"
	if err := v.compiler.AddResource(url, strings.NewReader(raw)); err != nil {
		return nil, true, fmt.Errorf("failed to add schema resource for %s: %w", key, err)
	}
	sch, err := v.compiler.Compile(url)
	if err != nil {
		return nil, true, fmt.Errorf("invalid schema for %s: %w", key, err)
	}
	v.compiled[key] = sch
	return sch, true, nil
}

// Check validates options and reports every violation.
func (v *OptionsValidator) Check(kind entities.Kind, tag string, options map[string]any) (*Result, error) {
	result := &Result{Valid: true}

	sch, ok, err := v.schema(kind, tag)
	if err != nil {
		return nil, err
	}
	if !ok {
		return result, nil
	}

	b, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}
	var obj any
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}

	if err := sch.Validate(obj); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, err
		}
		result.Errors = leaves(ve, result.Errors)
	}
	result.Valid = len(result.Errors) == 0
	return result, nil
}

// Validate implements the registry's options check.
func (v *OptionsValidator) Validate(kind entities.Kind, tag string, options map[string]any) error {
	res, err := v.Check(kind, tag, options)
	if err != nil {
		return err
	}
	if !res.Valid {
		return &OptionsError{Kind: kind, Type: tag, Errors: res.Errors}
	}
	return nil
}

func leaves(ve *jsonschema.ValidationError, out []Error) []Error {
	if len(ve.Causes) == 0 {
		return append(out, Error{Field: strings.TrimPrefix(ve.InstanceLocation, "/"), Message: ve.Message})
	}
	for _, c := range ve.Causes {
		out = leaves(c, out)
	}
	return out
}
