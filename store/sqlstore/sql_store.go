// Package sqlstore persists settings and per-item metadata in SQLite. Values
// are stored JSON-encoded, so nested maps come back as map[string]any and
// numbers as float64.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/reglet-dev/reglet-forms/store"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements store.Settings over a SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var (
	_ store.Settings = (*Store)(nil)
	_ store.Metadata = (*Metadata)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open opens (creating if needed) the database at dsn and applies pending
// migrations.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to sqlite database: %w", err)
	}

	s := &Store{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("preparing migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	version, _, _ := m.Version()
	s.logger.Debug("value store schema ready", "version", version)
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get implements store.Settings.
func (s *Store) Get(ctx context.Context, key string) (any, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	return scanValue(row)
}

// Set implements store.Settings.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding setting %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(encoded))
	if err != nil {
		return fmt.Errorf("writing setting %q: %w", key, err)
	}
	return nil
}

// Delete implements store.Settings.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting setting %q: %w", key, err)
	}
	return nil
}

// Metadata returns the per-item view of the same database.
func (s *Store) Metadata() *Metadata {
	return &Metadata{db: s.db}
}

// Metadata implements store.Metadata over the item_meta table.
type Metadata struct {
	db *sql.DB
}

// Get implements store.Metadata.
func (m *Metadata) Get(ctx context.Context, objectKind, itemID, key string) (any, bool, error) {
	row := m.db.QueryRowContext(ctx,
		`SELECT value FROM item_meta WHERE object_kind = ? AND item_id = ? AND meta_key = ?`,
		objectKind, itemID, key)
	return scanValue(row)
}

// Set implements store.Metadata.
func (m *Metadata) Set(ctx context.Context, objectKind, itemID, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s %s meta %q: %w", objectKind, itemID, key, err)
	}
	_, err = m.db.ExecContext(ctx,
		`INSERT INTO item_meta (object_kind, item_id, meta_key, value) VALUES (?, ?, ?, ?)
		 ON CONFLICT(object_kind, item_id, meta_key) DO UPDATE SET value = excluded.value`,
		objectKind, itemID, key, string(encoded))
	if err != nil {
		return fmt.Errorf("writing %s %s meta %q: %w", objectKind, itemID, key, err)
	}
	return nil
}

// Delete implements store.Metadata.
func (m *Metadata) Delete(ctx context.Context, objectKind, itemID, key string) error {
	_, err := m.db.ExecContext(ctx,
		`DELETE FROM item_meta WHERE object_kind = ? AND item_id = ? AND meta_key = ?`,
		objectKind, itemID, key)
	if err != nil {
		return fmt.Errorf("deleting %s %s meta %q: %w", objectKind, itemID, key, err)
	}
	return nil
}

func scanValue(row *sql.Row) (any, bool, error) {
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading value: %w", err)
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false, fmt.Errorf("decoding value: %w", err)
	}
	return v, true, nil
}
