package entities

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Document bundles the declarations of one namespace for loading from a file.
type Document struct {
	Version       string        `json:"version" yaml:"version" validate:"required"`
	ObjectType    string        `json:"object_type" yaml:"object_type" validate:"required"`
	ObjectSubtype string        `json:"object_subtype,omitempty" yaml:"object_subtype,omitempty"`
	Screens       []Declaration `json:"screens,omitempty" yaml:"screens,omitempty" validate:"dive"`
	Sections      []Declaration `json:"sections,omitempty" yaml:"sections,omitempty" validate:"dive"`
	Controls      []Declaration `json:"controls,omitempty" yaml:"controls,omitempty" validate:"dive"`
	Fields        []Declaration `json:"fields,omitempty" yaml:"fields,omitempty" validate:"dive"`
}

// Count returns the number of top-level declarations in the document.
func (d *Document) Count() int {
	return len(d.Screens) + len(d.Sections) + len(d.Controls) + len(d.Fields)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct-level constraints on a declaration.
func (d *Declaration) Validate() error {
	return structError(validate.Struct(d))
}

// Validate checks struct-level constraints on a document and every
// declaration it carries.
func (d *Document) Validate() error {
	return structError(validate.Struct(d))
}

func structError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidDeclaration, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidDeclaration, strings.Join(msgs, "; "))
}
