// Package terminal edits prepared forms interactively in a terminal.
package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/reglet-dev/reglet-forms/component"
	"github.com/reglet-dev/reglet-forms/entities"
)

// Runner runs a built form. The default runs it on the terminal.
type Runner func(f *huh.Form) error

// Editor builds huh forms from prepared screens and sections.
type Editor struct {
	in         io.Reader
	out        io.Writer
	run        Runner
	accessible bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithRunner replaces the form runner.
func WithRunner(r Runner) Option {
	return func(e *Editor) { e.run = r }
}

// WithAccessible enables huh's accessible mode.
func WithAccessible(on bool) Option {
	return func(e *Editor) { e.accessible = on }
}

// WithIO sets the terminal input and output.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(e *Editor) {
		e.in = in
		e.out = out
	}
}

// NewEditor creates an Editor.
func NewEditor(opts ...Option) *Editor {
	e := &Editor{run: func(f *huh.Form) error { return f.Run() }}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsInteractive checks if we're running in an interactive terminal.
func (e *Editor) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

type answer struct {
	control *component.Control
	field   *component.Field
	text    string
	checked bool
	boolean bool
}

func (a *answer) value() any {
	if a.boolean {
		if a.checked {
			return "1"
		}
		return ""
	}
	return a.text
}

// Session is a built form and the answers it edits.
type Session struct {
	Form    *huh.Form
	answers []*answer
}

// Report lists the controls whose value was saved or rejected.
type Report struct {
	Saved    []string
	Rejected []string
}

// Build creates a form for c with one group per section. Fields start at
// their current value for rc.ItemID.
func (e *Editor) Build(ctx context.Context, c component.Container, rc component.RenderContext) (*Session, error) {
	rc = rc.For(c)
	s := &Session{}
	var groups []*huh.Group

	addGroup := func(title, desc string, controls []component.Component) error {
		var fields []huh.Field
		for _, child := range controls {
			ctl, ok := child.(*component.Control)
			if !ok || !ctl.IsActive() {
				continue
			}
			field, a, err := e.field(ctx, ctl, rc)
			if err != nil {
				return err
			}
			if field == nil {
				continue
			}
			s.answers = append(s.answers, a)
			fields = append(fields, field)
		}
		if len(fields) > 0 {
			groups = append(groups, huh.NewGroup(fields...).Title(title).Description(desc))
		}
		return nil
	}

	var direct []component.Component
	for _, child := range c.Children() {
		if !child.IsActive() {
			continue
		}
		if sec, ok := child.(component.Container); ok {
			if err := addGroup(sec.Label(), sec.Description(), sec.Children()); err != nil {
				return nil, err
			}
			continue
		}
		direct = append(direct, child)
	}
	if len(direct) > 0 {
		if err := addGroup(c.Label(), c.Description(), direct); err != nil {
			return nil, err
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%s %q has no editable controls", c.Kind(), c.ID())
	}

	form := huh.NewForm(groups...).WithAccessible(e.accessible)
	if e.in != nil {
		form = form.WithInput(e.in)
	}
	if e.out != nil {
		form = form.WithOutput(e.out)
	}
	s.Form = form
	return s, nil
}

func (e *Editor) field(ctx context.Context, ctl *component.Control, rc component.RenderContext) (huh.Field, *answer, error) {
	f, ok := ctl.Field("")
	if !ok || ctl.InputType() == "hidden" {
		return nil, nil, nil
	}
	current, err := f.Value(ctx, rc.ItemID)
	if err != nil {
		return nil, nil, err
	}
	a := &answer{control: ctl, field: f}
	if current != nil {
		a.text = fmt.Sprint(current)
	}
	title := ctl.Label()
	if title == "" {
		title = ctl.ID()
	}

	switch ctl.InputType() {
	case "checkbox":
		a.boolean = true
		a.checked = a.text != "" && a.text != "0" && a.text != "false"
		return huh.NewConfirm().Title(title).Description(ctl.Description()).Value(&a.checked), a, nil
	case "select", "radio":
		opts := make([]huh.Option[string], 0, len(ctl.Choices()))
		for _, ch := range ctl.Choices() {
			opts = append(opts, huh.NewOption(ch.Label, ch.Value).Selected(ch.Value == a.text))
		}
		return huh.NewSelect[string]().Title(title).Description(ctl.Description()).Options(opts...).Value(&a.text), a, nil
	case "textarea":
		return huh.NewText().Title(title).Description(ctl.Description()).Value(&a.text), a, nil
	default:
		in := huh.NewInput().Title(title).Description(ctl.Description()).Value(&a.text)
		if p, ok := ctl.Option("placeholder"); ok {
			in = in.Placeholder(fmt.Sprint(p))
		}
		if ctl.InputType() == "password" {
			in = in.EchoMode(huh.EchoModePassword)
		}
		return in, a, nil
	}
}

// Set overrides the answer of a control, as if typed.
func (s *Session) Set(controlID string, value any) error {
	for _, a := range s.answers {
		if a.control.ID() != controlID {
			continue
		}
		if a.boolean {
			b, ok := value.(bool)
			if !ok {
				return fmt.Errorf("control %q expects a bool, got %T", controlID, value)
			}
			a.checked = b
			return nil
		}
		a.text = fmt.Sprint(value)
		return nil
	}
	return fmt.Errorf("control %q: %w", controlID, entities.ErrNotFound)
}

// Values returns the current answers by control id.
func (s *Session) Values() map[string]any {
	out := make(map[string]any, len(s.answers))
	for _, a := range s.answers {
		out[a.control.ID()] = a.value()
	}
	return out
}

// Save saves every answer through its control's primary field.
func (s *Session) Save(ctx context.Context, itemID string) Report {
	var r Report
	for _, a := range s.answers {
		if a.field.Save(ctx, a.value(), itemID) {
			r.Saved = append(r.Saved, a.control.ID())
		} else {
			r.Rejected = append(r.Rejected, a.control.ID())
		}
	}
	return r
}

// Edit builds a form for c, runs it and saves the answers.
func (e *Editor) Edit(ctx context.Context, c component.Container, rc component.RenderContext) (Report, error) {
	s, err := e.Build(ctx, c, rc)
	if err != nil {
		return Report{}, err
	}
	if err := e.run(s.Form); err != nil {
		return Report{}, err
	}
	return s.Save(ctx, rc.For(c).ItemID), nil
}

// FormatNonInteractiveError explains how to edit without a terminal.
func (e *Editor) FormatNonInteractiveError(c component.Component) error {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("editing %s %q requires an interactive terminal\n\n", c.Kind(), c.ID()))
	msg.WriteString("To change values without a terminal:\n")
	msg.WriteString("  1. Run formctl serve and PUT field values over HTTP\n")
	msg.WriteString("  2. Edit the value store file directly\n")
	return fmt.Errorf("%s", msg.String())
}
