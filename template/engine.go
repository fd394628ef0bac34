// Package template expands variables in declaration documents before they
// are parsed.
package template

import (
	"bytes"
	"fmt"
	"text/template"
)

// Engine renders a raw document with caller supplied variables.
type Engine interface {
	// Render processes raw bytes as a template. Variables are reachable as
	// {{ .vars.name }}.
	Render(raw []byte, vars map[string]any) ([]byte, error)
}

type engineConfig struct {
	strict bool
}

// Option configures a GoEngine.
type Option func(*engineConfig)

// WithStrict makes a missing variable an error. Enabled by default.
func WithStrict(enabled bool) Option {
	return func(c *engineConfig) {
		c.strict = enabled
	}
}

// GoEngine implements Engine with text/template.
type GoEngine struct {
	config engineConfig
}

// NewGoEngine creates a GoEngine.
func NewGoEngine(opts ...Option) *GoEngine {
	cfg := engineConfig{strict: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &GoEngine{config: cfg}
}

func (e *GoEngine) Render(raw []byte, vars map[string]any) ([]byte, error) {
	tmpl := template.New("document")
	if e.config.strict {
		tmpl = tmpl.Option("missingkey=error")
	}

	tmpl, err := tmpl.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{"vars": vars}); err != nil {
		return nil, fmt.Errorf("failed to execute document template: %w", err)
	}
	return buf.Bytes(), nil
}

var _ Engine = (*GoEngine)(nil)
