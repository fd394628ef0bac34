package store

import (
	"context"
	"sync"
)

// Memory is an in-process implementation of both Settings and Metadata.
// Its lifetime is that of the request that owns it.
type Memory struct {
	settings map[string]any
	meta     map[metaKey]any
	mu       sync.RWMutex
}

type metaKey struct {
	kind, item, key string
}

var (
	_ Settings = (*Memory)(nil)
	_ Metadata = (*MemoryMetadata)(nil)
)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		settings: make(map[string]any),
		meta:     make(map[metaKey]any),
	}
}

// Get implements Settings.
func (m *Memory) Get(_ context.Context, key string) (any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.settings[key]
	return v, ok, nil
}

// Set implements Settings.
func (m *Memory) Set(_ context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

// Delete implements Settings.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.settings, key)
	return nil
}

// Metadata returns the per-item view of the same store.
func (m *Memory) Metadata() *MemoryMetadata {
	return &MemoryMetadata{m: m}
}

// MemoryMetadata adapts Memory to the Metadata contract.
type MemoryMetadata struct {
	m *Memory
}

// Get implements Metadata.
func (mm *MemoryMetadata) Get(_ context.Context, objectKind, itemID, key string) (any, bool, error) {
	mm.m.mu.RLock()
	defer mm.m.mu.RUnlock()
	v, ok := mm.m.meta[metaKey{objectKind, itemID, key}]
	return v, ok, nil
}

// Set implements Metadata.
func (mm *MemoryMetadata) Set(_ context.Context, objectKind, itemID, key string, value any) error {
	mm.m.mu.Lock()
	defer mm.m.mu.Unlock()
	mm.m.meta[metaKey{objectKind, itemID, key}] = value
	return nil
}

// Delete implements Metadata.
func (mm *MemoryMetadata) Delete(_ context.Context, objectKind, itemID, key string) error {
	mm.m.mu.Lock()
	defer mm.m.mu.Unlock()
	delete(mm.m.meta, metaKey{objectKind, itemID, key})
	return nil
}
