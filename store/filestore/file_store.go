// Package filestore provides YAML file persistence for settings and per-item
// metadata.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/reglet-dev/reglet-forms/store"
	"gopkg.in/yaml.v3"
)

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	path     string
	dirPerm  os.FileMode
	filePerm os.FileMode
}

func defaultFileStoreConfig() fileStoreConfig {
	return fileStoreConfig{
		path:     filepath.Join(os.Getenv("HOME"), ".reglet-forms", "values.yaml"),
		dirPerm:  0o755,
		filePerm: 0o600,
	}
}

// Option configures a FileStore instance.
type Option func(*fileStoreConfig)

// WithPath sets the path to the values file.
func WithPath(path string) Option {
	return func(c *fileStoreConfig) {
		if path != "" {
			c.path = path
		}
	}
}

// WithFilePermissions sets the file permissions for the values file.
func WithFilePermissions(perm os.FileMode) Option {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the permissions of the directory holding the file.
func WithDirPermissions(perm os.FileMode) Option {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// document is the on-disk layout: settings by key, metadata by kind, item, key.
type document struct {
	Settings map[string]any                       `yaml:"settings,omitempty"`
	Metadata map[string]map[string]map[string]any `yaml:"metadata,omitempty"`
}

// FileStore keeps settings and metadata in one YAML file. Every write
// rewrites the file.
type FileStore struct {
	doc    *document
	config fileStoreConfig
	mu     sync.Mutex
}

var (
	_ store.Settings = (*FileStore)(nil)
	_ store.Metadata = (*Metadata)(nil)
)

// New creates a FileStore with the given options. The file is read on first
// access.
func New(opts ...Option) *FileStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// ConfigPath returns the path to the backing file.
func (s *FileStore) ConfigPath() string {
	return s.config.path
}

func (s *FileStore) load() (*document, error) {
	if s.doc != nil {
		return s.doc, nil
	}

	doc := &document{}
	data, err := os.ReadFile(s.config.path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read value store: %w", err)
	default:
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("failed to parse value store: %w", err)
		}
	}
	if doc.Settings == nil {
		doc.Settings = make(map[string]any)
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]map[string]map[string]any)
	}
	s.doc = doc
	return doc, nil
}

func (s *FileStore) flush() error {
	data, err := yaml.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("failed to marshal values: %w", err)
	}

	dir := filepath.Dir(s.config.path)
	if err := os.MkdirAll(dir, s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create value store directory: %w", err)
	}

	if err := os.WriteFile(s.config.path, data, s.config.filePerm); err != nil {
		return fmt.Errorf("failed to write value store: %w", err)
	}
	return nil
}

// Get implements store.Settings.
func (s *FileStore) Get(_ context.Context, key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc.Settings[key]
	return v, ok, nil
}

// Set implements store.Settings.
func (s *FileStore) Set(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Settings[key] = value
	return s.flush()
}

// Delete implements store.Settings.
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Settings[key]; !ok {
		return nil
	}
	delete(doc.Settings, key)
	return s.flush()
}

// Metadata returns the per-item view of the same file.
func (s *FileStore) Metadata() *Metadata {
	return &Metadata{s: s}
}

// Metadata adapts FileStore to store.Metadata.
type Metadata struct {
	s *FileStore
}

// Get implements store.Metadata.
func (m *Metadata) Get(_ context.Context, objectKind, itemID, key string) (any, bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	doc, err := m.s.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc.Metadata[objectKind][itemID][key]
	return v, ok, nil
}

// Set implements store.Metadata.
func (m *Metadata) Set(_ context.Context, objectKind, itemID, key string, value any) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	doc, err := m.s.load()
	if err != nil {
		return err
	}
	items, ok := doc.Metadata[objectKind]
	if !ok {
		items = make(map[string]map[string]any)
		doc.Metadata[objectKind] = items
	}
	keys, ok := items[itemID]
	if !ok {
		keys = make(map[string]any)
		items[itemID] = keys
	}
	keys[key] = value
	return m.s.flush()
}

// Delete implements store.Metadata.
func (m *Metadata) Delete(_ context.Context, objectKind, itemID, key string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	doc, err := m.s.load()
	if err != nil {
		return err
	}
	keys := doc.Metadata[objectKind][itemID]
	if _, ok := keys[key]; !ok {
		return nil
	}
	delete(keys, key)
	return m.s.flush()
}
