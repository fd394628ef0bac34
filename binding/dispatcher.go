package binding

import (
	"log/slog"

	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/store"
)

// Resolver is the extension point for object types the dispatcher does not
// know. It returns false to pass.
type Resolver func(objectType string, subject entities.Subject) (Backend, bool)

// Dispatcher maps object types to backends.
type Dispatcher struct {
	settings      store.Settings
	metadata      store.Metadata
	settingsTypes map[string]bool
	metaTypes     map[string]bool
	resolvers     []Resolver
	logger        *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSettings sets the settings store.
func WithSettings(s store.Settings) Option {
	return func(d *Dispatcher) { d.settings = s }
}

// WithMetadata sets the metadata store.
func WithMetadata(m store.Metadata) Option {
	return func(d *Dispatcher) { d.metadata = m }
}

// WithSettingsTypes adds object types whose fields live in the settings store.
func WithSettingsTypes(types ...string) Option {
	return func(d *Dispatcher) {
		for _, t := range types {
			d.settingsTypes[t] = true
		}
	}
}

// WithMetaTypes adds object types whose fields live in per-item metadata.
func WithMetaTypes(types ...string) Option {
	return func(d *Dispatcher) {
		for _, t := range types {
			d.metaTypes[t] = true
		}
	}
}

// WithResolver appends an extension resolver.
func WithResolver(r Resolver) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.resolvers = append(d.resolvers, r)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates a dispatcher. Without explicit stores both contracts
// are served by one in-memory store.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		settingsTypes: map[string]bool{"option": true, "settings": true, "theme_mod": true},
		metaTypes:     map[string]bool{"post": true, "term": true, "user": true, "comment": true},
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.settings == nil || d.metadata == nil {
		mem := store.NewMemory()
		if d.settings == nil {
			d.settings = mem
		}
		if d.metadata == nil {
			d.metadata = mem.Metadata()
		}
	}
	return d
}

// Settings returns the settings store.
func (d *Dispatcher) Settings() store.Settings {
	return d.settings
}

// Metadata returns the metadata store.
func (d *Dispatcher) Metadata() store.Metadata {
	return d.metadata
}

// Resolve selects the backend for a field of objectType. Declared value
// callbacks take precedence over any store.
func (d *Dispatcher) Resolve(objectType string, decl *entities.Declaration, subject entities.Subject) Backend {
	base := d.resolveStore(objectType, subject)
	if decl != nil && (decl.ValueCallback != nil || decl.UpdateValueCallback != nil) {
		return &CallbackBackend{
			Subject:  subject,
			Value:    decl.ValueCallback,
			Update:   decl.UpdateValueCallback,
			Fallback: base,
		}
	}
	return base
}

func (d *Dispatcher) resolveStore(objectType string, subject entities.Subject) Backend {
	switch {
	case d.settingsTypes[objectType]:
		return &SettingsBackend{Settings: d.settings}
	case d.metaTypes[objectType]:
		return &MetadataBackend{Metadata: d.metadata, Kind: objectType}
	}
	for _, r := range d.resolvers {
		if b, ok := r(objectType, subject); ok {
			return b
		}
	}
	d.logger.Debug("no backend claims object type", "object_type", objectType)
	return Unresolved{ObjectType: objectType}
}
