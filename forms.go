// Package forms is the application surface of the component registry:
// registration of screens (forms), sections, controls and fields, preparation,
// rendering, export and saving.
package forms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/reglet-dev/reglet-forms/binding"
	"github.com/reglet-dev/reglet-forms/capability"
	"github.com/reglet-dev/reglet-forms/component"
	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/export"
	"github.com/reglet-dev/reglet-forms/hooks"
	"github.com/reglet-dev/reglet-forms/parser"
	"github.com/reglet-dev/reglet-forms/policy"
	"github.com/reglet-dev/reglet-forms/registry"
	"github.com/reglet-dev/reglet-forms/render"
	"github.com/reglet-dev/reglet-forms/store"
	"github.com/reglet-dev/reglet-forms/template"
	"github.com/reglet-dev/reglet-forms/values"
)

// ErrNotPrepared is returned when a component exists but did not survive
// preparation.
var ErrNotPrepared = errors.New("component not prepared")

// Forms owns one registry and its collaborators for the lifetime of a
// request.
type Forms struct {
	reg        *registry.Registry
	dispatcher *binding.Dispatcher
	filters    *hooks.Filters
	gate       *policy.Gate
	renderer   *render.HTMLRenderer
	save       SaveFunc
	logger     *slog.Logger
	requestID  string
}

type config struct {
	principal    capability.Checker
	denial       policy.DenialHandler
	settings     store.Settings
	metadata     store.Metadata
	dispatchOpts []binding.Option
	types        *component.Types
	validator    registry.OptionsValidator
	renderOpts   []render.Option
	middleware   []Middleware
	logger       *slog.Logger
}

// Option configures Forms.
type Option func(*config)

// WithPrincipal sets the acting principal gates are evaluated against.
func WithPrincipal(c capability.Checker) Option {
	return func(cfg *config) { cfg.principal = c }
}

// WithDenialHandler receives gate denials.
func WithDenialHandler(h policy.DenialHandler) Option {
	return func(cfg *config) { cfg.denial = h }
}

// WithSettingsStore sets the key-value settings backend.
func WithSettingsStore(s store.Settings) Option {
	return func(cfg *config) { cfg.settings = s }
}

// WithMetadataStore sets the per-item metadata backend.
func WithMetadataStore(m store.Metadata) Option {
	return func(cfg *config) { cfg.metadata = m }
}

// WithDispatcherOptions passes extra options to the backend dispatcher.
func WithDispatcherOptions(opts ...binding.Option) Option {
	return func(cfg *config) { cfg.dispatchOpts = append(cfg.dispatchOpts, opts...) }
}

// WithTypes sets the component type table.
func WithTypes(t *component.Types) Option {
	return func(cfg *config) { cfg.types = t }
}

// WithOptionsValidator validates declaration options on registration.
func WithOptionsValidator(v registry.OptionsValidator) Option {
	return func(cfg *config) { cfg.validator = v }
}

// WithRenderOptions configures the HTML renderer.
func WithRenderOptions(opts ...render.Option) Option {
	return func(cfg *config) { cfg.renderOpts = append(cfg.renderOpts, opts...) }
}

// WithMiddleware wraps every Save.
func WithMiddleware(mws ...Middleware) Option {
	return func(cfg *config) { cfg.middleware = append(cfg.middleware, mws...) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) { cfg.logger = l }
}

// New creates Forms with an empty registry.
func New(opts ...Option) (*Forms, error) {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	dopts := []binding.Option{binding.WithLogger(cfg.logger)}
	if cfg.settings != nil {
		dopts = append(dopts, binding.WithSettings(cfg.settings))
	}
	if cfg.metadata != nil {
		dopts = append(dopts, binding.WithMetadata(cfg.metadata))
	}
	dispatcher := binding.NewDispatcher(append(dopts, cfg.dispatchOpts...)...)

	denial := cfg.denial
	if denial == nil {
		denial = &policy.SlogDenialHandler{Logger: cfg.logger}
	}
	gate := policy.NewGate(cfg.principal, policy.WithDenialHandler(denial))
	filters := hooks.NewFilters()

	ropts := []registry.Option{
		registry.WithPolicy(gate),
		registry.WithDispatcher(dispatcher),
		registry.WithFilters(filters),
		registry.WithLogger(cfg.logger),
	}
	if cfg.types != nil {
		ropts = append(ropts, registry.WithTypes(cfg.types))
	}
	if cfg.validator != nil {
		ropts = append(ropts, registry.WithValidator(cfg.validator))
	}

	renderer, err := render.NewHTMLRenderer(append([]render.Option{render.WithLogger(cfg.logger)}, cfg.renderOpts...)...)
	if err != nil {
		return nil, err
	}

	f := &Forms{
		reg:        registry.New(ropts...),
		dispatcher: dispatcher,
		filters:    filters,
		gate:       gate,
		renderer:   renderer,
		logger:     cfg.logger,
	}
	f.save = chain(func(ctx context.Context, fld *component.Field, value any, itemID string) bool {
		return fld.Save(ctx, value, itemID)
	}, cfg.middleware)
	f.requestID = uuid.NewString()
	return f, nil
}

// BeginRequest drops every registration and starts a new request. It
// returns the new request id.
func (f *Forms) BeginRequest() string {
	f.reg.Reset()
	f.requestID = uuid.NewString()
	f.logger.Debug("request started", "request_id", f.requestID)
	return f.requestID
}

// RequestID is the id of the current request.
func (f *Forms) RequestID() string { return f.requestID }

// Registry returns the underlying registry.
func (f *Forms) Registry() *registry.Registry { return f.reg }

// Dispatcher returns the field backend dispatcher.
func (f *Forms) Dispatcher() *binding.Dispatcher { return f.dispatcher }

// Filters returns the sanitize and output filters.
func (f *Forms) Filters() *hooks.Filters { return f.filters }

// Renderer returns the HTML renderer.
func (f *Forms) Renderer() *render.HTMLRenderer { return f.renderer }

func namespace(kind entities.Kind, objectType, subtype, id string) (values.Namespace, error) {
	ns, err := values.NewNamespace(objectType, subtype)
	if err == nil {
		return ns, nil
	}
	if errors.Is(err, values.ErrMissingObjectType) {
		return ns, entities.NewRegistrationError(entities.CodeMissingObjectType, kind, ns, id, "")
	}
	e := entities.NewRegistrationError(entities.CodeInvalidDeclaration, kind, ns, id, "")
	e.Err = err
	return ns, e
}

func (f *Forms) add(kind entities.Kind, objectType, id, subtype string, decl *entities.Declaration) error {
	ns, err := namespace(kind, objectType, subtype, id)
	if err != nil {
		return err
	}
	return f.reg.Add(kind, ns, id, decl)
}

// AddScreen registers a screen.
func (f *Forms) AddScreen(objectType, id, subtype string, decl *entities.Declaration) error {
	return f.add(entities.KindScreen, objectType, id, subtype, decl)
}

// AddForm registers a form. Forms are screens.
func (f *Forms) AddForm(objectType, id, subtype string, decl *entities.Declaration) error {
	return f.AddScreen(objectType, id, subtype, decl)
}

// AddSection registers a section.
func (f *Forms) AddSection(objectType, id, subtype string, decl *entities.Declaration) error {
	return f.add(entities.KindSection, objectType, id, subtype, decl)
}

// AddControl registers a control.
func (f *Forms) AddControl(objectType, id, subtype string, decl *entities.Declaration) error {
	return f.add(entities.KindControl, objectType, id, subtype, decl)
}

// AddField registers a field.
func (f *Forms) AddField(objectType, id, subtype string, decl *entities.Declaration) error {
	return f.add(entities.KindField, objectType, id, subtype, decl)
}

// LoadFile registers every declaration of a YAML or JSON document. vars
// expand {{ .vars.name }} references first.
func (f *Forms) LoadFile(path string, vars map[string]any) (values.Namespace, error) {
	var opts []parser.LoaderOption
	if vars != nil {
		opts = append(opts, parser.WithTemplate(template.NewGoEngine(), vars))
	}
	return parser.NewFileLoader(opts...).LoadFile(f.reg, path)
}

func (f *Forms) get(kind entities.Kind, objectType, id, subtype string) (component.Component, error) {
	ns, err := values.NewNamespace(objectType, subtype)
	if err != nil {
		return nil, err
	}
	return f.reg.Get(kind, ns, id)
}

// GetScreen returns a screen by id.
func (f *Forms) GetScreen(objectType, id, subtype string) (component.Container, error) {
	c, err := f.get(entities.KindScreen, objectType, id, subtype)
	if err != nil {
		return nil, err
	}
	ct, ok := c.(component.Container)
	if !ok {
		return nil, fmt.Errorf("screen %q: not a container", id)
	}
	return ct, nil
}

// GetForm returns a form by id.
func (f *Forms) GetForm(objectType, id, subtype string) (component.Container, error) {
	return f.GetScreen(objectType, id, subtype)
}

// GetSection returns a section by id.
func (f *Forms) GetSection(objectType, id, subtype string) (component.Component, error) {
	return f.get(entities.KindSection, objectType, id, subtype)
}

// GetControl returns a control by id.
func (f *Forms) GetControl(objectType, id, subtype string) (component.Component, error) {
	return f.get(entities.KindControl, objectType, id, subtype)
}

// GetField returns a field by id.
func (f *Forms) GetField(objectType, id, subtype string) (*component.Field, error) {
	c, err := f.get(entities.KindField, objectType, id, subtype)
	if err != nil {
		return nil, err
	}
	fld, ok := component.AsField(c)
	if !ok {
		return nil, fmt.Errorf("field %q: unsupported field kind %T", id, c)
	}
	return fld, nil
}

// GetSections lists sections, optionally only those of one screen. The
// any-subtype "*" merges all subtypes.
func (f *Forms) GetSections(objectType, subtype, parentID string) ([]component.Component, error) {
	ns, err := values.NewNamespace(objectType, subtype)
	if err != nil {
		return nil, err
	}
	return f.reg.Sections(ns, parentID)
}

// GetControls lists controls, optionally only those of one section.
func (f *Forms) GetControls(objectType, subtype, parentID string) ([]component.Component, error) {
	ns, err := values.NewNamespace(objectType, subtype)
	if err != nil {
		return nil, err
	}
	return f.reg.Controls(ns, parentID)
}

// Prepare runs the preparation pipeline for a namespace.
func (f *Forms) Prepare(objectType, subtype string) (*registry.Prepared, error) {
	ns, err := values.NewNamespace(objectType, subtype)
	if err != nil {
		return nil, err
	}
	return f.reg.Prepare(ns)
}

// IsPrepared reports whether a component may be exposed externally.
func (f *Forms) IsPrepared(objectType string, kind entities.Kind, id, subtype string) bool {
	ns, err := values.NewNamespace(objectType, subtype)
	if err != nil {
		return false
	}
	return f.reg.IsPrepared(ns, kind, id)
}

func (f *Forms) prepared(objectType, subtype string) (*registry.Prepared, error) {
	ns, err := values.NewNamespace(objectType, subtype)
	if err != nil {
		return nil, err
	}
	return f.reg.Prepared(ns)
}

// Render writes a prepared screen or top-level section for itemID.
func (f *Forms) Render(ctx context.Context, w io.Writer, objectType, id, subtype, itemID string) error {
	p, err := f.prepared(objectType, subtype)
	if err != nil {
		return err
	}
	c, ok := p.Container(id)
	if !ok {
		return fmt.Errorf("render %q in %s: %w", id, p.Namespace, ErrNotPrepared)
	}
	return f.renderer.Render(ctx, w, c, component.RenderContext{ItemID: itemID})
}

// Export builds the client payload of a namespace for itemID.
func (f *Forms) Export(ctx context.Context, objectType, subtype, itemID string) (*export.Payload, error) {
	p, err := f.prepared(objectType, subtype)
	if err != nil {
		return nil, err
	}
	return export.Build(ctx, p, f.renderer, component.RenderContext{ItemID: itemID})
}

// Save sanitizes and stores value through a field. It reports false when
// the field rejected the value.
func (f *Forms) Save(ctx context.Context, objectType, fieldID, subtype string, value any, itemID string) (bool, error) {
	fld, err := f.GetField(objectType, fieldID, subtype)
	if err != nil {
		return false, err
	}
	if RequestIDFrom(ctx) == "" {
		ctx = WithRequestID(ctx, f.requestID)
	}
	return f.save(ctx, fld, value, itemID), nil
}

// Value reads a field for itemID, sanitized for output.
func (f *Forms) Value(ctx context.Context, objectType, fieldID, subtype, itemID string) (any, error) {
	fld, err := f.GetField(objectType, fieldID, subtype)
	if err != nil {
		return nil, err
	}
	return fld.ValueForOutput(ctx, itemID)
}
