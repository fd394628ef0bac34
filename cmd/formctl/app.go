package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	forms "github.com/reglet-dev/reglet-forms"
	"github.com/reglet-dev/reglet-forms/capability"
	"github.com/reglet-dev/reglet-forms/capability/grantstore"
	"github.com/reglet-dev/reglet-forms/internal/config"
	"github.com/reglet-dev/reglet-forms/store/filestore"
	"github.com/reglet-dev/reglet-forms/store/sqlstore"
	"github.com/reglet-dev/reglet-forms/validation"
)

// app is one configured formctl run.
type app struct {
	cfg     config.Config
	forms   *forms.Forms
	logger  *slog.Logger
	closers []io.Closer
}

func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	a := &app{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.Level()})),
	}

	opts := []forms.Option{
		forms.WithLogger(a.logger),
		forms.WithOptionsValidator(validation.NewOptionsValidator(
			validation.DefaultSchemas(validation.WithStrictMode(cfg.Strict)),
		)),
		forms.WithMiddleware(
			forms.PanicRecoveryMiddleware(a.logger),
			forms.LoggingMiddleware(a.logger),
		),
	}

	storeOpts, err := a.storeOptions(ctx)
	if err != nil {
		return nil, err
	}
	opts = append(opts, storeOpts...)

	if cfg.Principal.GrantsFile != "" {
		p, err := loadPrincipal(cfg.Principal)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		opts = append(opts, forms.WithPrincipal(p))
	}

	f, err := forms.New(opts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.forms = f

	vars := cfg.TemplateVars()
	for _, doc := range cfg.Documents {
		ns, err := f.LoadFile(doc, vars)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("load %s: %w", doc, err)
		}
		a.logger.Debug("declarations loaded", "file", doc, "namespace", ns.String())
	}
	return a, nil
}

func (a *app) storeOptions(ctx context.Context) ([]forms.Option, error) {
	switch a.cfg.Store.Driver {
	case "yaml":
		fs := filestore.New(filestore.WithPath(a.cfg.Store.Path))
		return []forms.Option{forms.WithSettingsStore(fs), forms.WithMetadataStore(fs.Metadata())}, nil
	case "sqlite":
		st, err := sqlstore.Open(ctx, a.cfg.Store.Path, sqlstore.WithLogger(a.logger))
		if err != nil {
			return nil, fmt.Errorf("open value store: %w", err)
		}
		a.closers = append(a.closers, st)
		return []forms.Option{forms.WithSettingsStore(st), forms.WithMetadataStore(st.Metadata())}, nil
	default:
		return nil, nil
	}
}

func loadPrincipal(pc config.PrincipalConfig) (*capability.Principal, error) {
	reg, err := capability.LoadRegistry(grantstore.NewFileStore(grantstore.WithPath(pc.GrantsFile)))
	if err != nil {
		return nil, fmt.Errorf("load grants: %w", err)
	}
	p, ok := reg.Get(pc.Name)
	if !ok {
		return nil, fmt.Errorf("unknown principal %q (known: %s)", pc.Name, strings.Join(reg.Names(), ", "))
	}
	return p, nil
}

// Close releases the value store.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
