// Package render turns prepared component trees into markup.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"strings"

	"github.com/reglet-dev/reglet-forms/component"
	"github.com/reglet-dev/reglet-forms/entities"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// inputTypes render through the generic input template.
var inputTypes = map[string]bool{
	"text": true, "email": true, "url": true, "password": true,
	"number": true, "color": true, "date": true,
}

// attrOptions are declaration options copied onto input elements.
var attrOptions = []string{"placeholder", "maxlength", "rows", "min", "max", "step"}

// ControlData is what control templates are executed with.
type ControlData struct {
	Attrs       map[string]string
	ID          string
	InputID     string
	Name        string
	Type        string
	Label       string
	Description string
	Value       string
	Choices     []entities.Choice
	Checked     bool
}

type containerData struct {
	ID          string
	Label       string
	Description string
	Content     template.HTML
}

// HTMLRenderer writes prepared trees as HTML.
type HTMLRenderer struct {
	tmpl   *template.Template
	logger *slog.Logger
}

// Option configures an HTMLRenderer.
type Option func(*HTMLRenderer) error

// WithControlTemplate renders controls of type tag with text. The template
// is executed with ControlData.
func WithControlTemplate(tag, text string) Option {
	return func(r *HTMLRenderer) error {
		if _, err := r.tmpl.New("control/" + tag).Parse(text); err != nil {
			return fmt.Errorf("control template %q: %w", tag, err)
		}
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *HTMLRenderer) error {
		r.logger = l
		return nil
	}
}

// NewHTMLRenderer creates a renderer holding the built-in templates.
func NewHTMLRenderer(opts ...Option) (*HTMLRenderer, error) {
	tmpl, err := template.New("forms").ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r := &HTMLRenderer{tmpl: tmpl, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Render writes c and its prepared descendants to w. Inactive components
// render nothing.
func (r *HTMLRenderer) Render(ctx context.Context, w io.Writer, c component.Component, rc component.RenderContext) error {
	if !c.IsActive() {
		return nil
	}
	rc = rc.For(c)

	switch v := c.(type) {
	case *component.Control:
		return r.renderControl(ctx, w, v, rc)
	case component.Container:
		var content bytes.Buffer
		for _, child := range v.Children() {
			if err := r.Render(ctx, &content, child, rc); err != nil {
				return err
			}
		}
		name := "section"
		if v.Kind() == entities.KindScreen {
			name = "screen"
		}
		return r.tmpl.ExecuteTemplate(w, name, containerData{
			ID:          v.ID(),
			Label:       v.Label(),
			Description: v.Description(),
			Content:     template.HTML(content.String()),
		})
	}
	return fmt.Errorf("render %s %q: not renderable", c.Kind(), c.ID())
}

// RenderString renders c to a string.
func (r *HTMLRenderer) RenderString(ctx context.Context, c component.Component, rc component.RenderContext) (string, error) {
	var sb strings.Builder
	if err := r.Render(ctx, &sb, c, rc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (r *HTMLRenderer) renderControl(ctx context.Context, w io.Writer, c *component.Control, rc component.RenderContext) error {
	data := ControlData{
		ID:          c.ID(),
		InputID:     "forms-input-" + c.ID(),
		Type:        c.InputType(),
		Label:       c.Label(),
		Description: c.Description(),
		Choices:     c.Choices(),
		Attrs:       make(map[string]string),
	}
	for _, key := range attrOptions {
		if v, ok := c.Option(key); ok {
			data.Attrs[key] = fmt.Sprint(v)
		}
	}
	if f, ok := c.Field(""); ok {
		data.Name = f.ID()
		v, err := f.ValueForOutput(ctx, rc.ItemID)
		if err != nil {
			r.logger.Warn("control value unavailable", "control", c.ID(), "error", err)
		}
		data.Value = stringify(v)
		data.Checked = truthy(v)
	}

	name := "control/" + data.Type
	if inputTypes[data.Type] || r.tmpl.Lookup(name) == nil {
		name = "control/input"
		if !inputTypes[data.Type] {
			data.Type = "text"
		}
	}
	return r.tmpl.ExecuteTemplate(w, name, data)
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != "" && b != "0" && b != "false"
	case int:
		return b != 0
	case float64:
		return b != 0
	}
	return true
}
