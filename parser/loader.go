package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/template"
	"github.com/reglet-dev/reglet-forms/values"
)

// Registrar is the registration surface documents are loaded into.
type Registrar interface {
	Add(kind entities.Kind, ns values.Namespace, id string, decl *entities.Declaration) error
}

// Load validates doc and registers its declarations: fields first, then
// sections, screens and controls. Every failure is reported.
func Load(reg Registrar, doc *entities.Document) (values.Namespace, error) {
	if err := CheckVersion(doc.Version); err != nil {
		return values.Namespace{}, err
	}
	if err := doc.Validate(); err != nil {
		return values.Namespace{}, err
	}
	ns, err := values.NewNamespace(doc.ObjectType, doc.ObjectSubtype)
	if err != nil {
		return values.Namespace{}, err
	}

	groups := []struct {
		kind  entities.Kind
		decls []entities.Declaration
	}{
		{entities.KindField, doc.Fields},
		{entities.KindScreen, doc.Screens},
		{entities.KindSection, doc.Sections},
		{entities.KindControl, doc.Controls},
	}
	var errs []error
	for _, g := range groups {
		for i := range g.decls {
			d := &g.decls[i]
			if err := reg.Add(g.kind, ns, d.ID, d); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return ns, errors.Join(errs...)
}

// FileLoader reads documents from disk, optionally expanding template
// variables first.
type FileLoader struct {
	engine template.Engine
	vars   map[string]any
	yaml   DocumentParser
	json   DocumentParser
}

// LoaderOption configures a FileLoader.
type LoaderOption func(*FileLoader)

// WithTemplate expands documents with engine and vars before parsing.
func WithTemplate(engine template.Engine, vars map[string]any) LoaderOption {
	return func(l *FileLoader) {
		l.engine = engine
		l.vars = vars
	}
}

// WithYAMLParser replaces the YAML parser.
func WithYAMLParser(p DocumentParser) LoaderOption {
	return func(l *FileLoader) { l.yaml = p }
}

// NewFileLoader creates a FileLoader.
func NewFileLoader(opts ...LoaderOption) *FileLoader {
	l := &FileLoader{yaml: NewYAMLParser(), json: NewJSONParser()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Read parses the document at path. Files ending in .json are JSON; anything
// else is YAML.
func (l *FileLoader) Read(path string) (*entities.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if l.engine != nil {
		if data, err = l.engine.Render(data, l.vars); err != nil {
			return nil, err
		}
	}
	p := l.yaml
	if strings.EqualFold(filepath.Ext(path), ".json") {
		p = l.json
	}
	return p.Parse(data)
}

// LoadFile reads the document at path and loads it into reg.
func (l *FileLoader) LoadFile(reg Registrar, path string) (values.Namespace, error) {
	doc, err := l.Read(path)
	if err != nil {
		return values.Namespace{}, err
	}
	ns, err := Load(reg, doc)
	if err != nil {
		return ns, fmt.Errorf("load %s: %w", path, err)
	}
	return ns, nil
}
