// Package capability models the acting principal: which capabilities it was
// granted and which host features are switched on. Grants are doublestar
// patterns, so "manage_*" grants "manage_options".
package capability

import (
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Checker answers the two questions the capability gate asks.
type Checker interface {
	// HasCapability reports whether the principal holds capability. The empty
	// capability is always held.
	HasCapability(capability string) bool

	// SupportsFeature reports whether the host has feature switched on.
	SupportsFeature(feature string) bool
}

// GrantSet is the persisted form of a principal's grants.
type GrantSet struct {
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Features     []string `json:"features,omitempty" yaml:"features,omitempty"`
}

// IsEmpty reports whether the set grants nothing.
func (g *GrantSet) IsEmpty() bool {
	return g == nil || (len(g.Capabilities) == 0 && len(g.Features) == 0)
}

// Clone returns an independent copy.
func (g *GrantSet) Clone() *GrantSet {
	if g == nil {
		return &GrantSet{}
	}
	return &GrantSet{
		Capabilities: slices.Clone(g.Capabilities),
		Features:     slices.Clone(g.Features),
	}
}

// Merge adds every grant of other to g.
func (g *GrantSet) Merge(other *GrantSet) {
	if other == nil {
		return
	}
	g.Capabilities = append(g.Capabilities, other.Capabilities...)
	g.Features = append(g.Features, other.Features...)
}

// Deduplicate sorts and removes duplicate entries.
func (g *GrantSet) Deduplicate() {
	slices.Sort(g.Capabilities)
	g.Capabilities = slices.Compact(g.Capabilities)
	slices.Sort(g.Features)
	g.Features = slices.Compact(g.Features)
}

// Principal is an acting user or service.
type Principal struct {
	name   string
	grants GrantSet
}

var _ Checker = (*Principal)(nil)

// NewPrincipal creates a principal holding grants.
func NewPrincipal(name string, grants GrantSet) *Principal {
	clean := grants.Clone()
	clean.Deduplicate()
	return &Principal{name: name, grants: *clean}
}

// Anonymous returns a principal with no grants.
func Anonymous() *Principal {
	return &Principal{name: "anonymous"}
}

// Name returns the principal's name.
func (p *Principal) Name() string {
	return p.name
}

// Grants returns a copy of the principal's grants.
func (p *Principal) Grants() GrantSet {
	return *p.grants.Clone()
}

// HasCapability implements Checker.
func (p *Principal) HasCapability(capability string) bool {
	if capability == "" {
		return true
	}
	return matchAny(p.grants.Capabilities, capability)
}

// SupportsFeature implements Checker.
func (p *Principal) SupportsFeature(feature string) bool {
	if feature == "" {
		return true
	}
	return matchAny(p.grants.Features, feature)
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if pattern == name {
			return true
		}
		// Malformed patterns never match.
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Registry holds the principals known to the host, by name.
type Registry struct {
	principals map[string]*Principal
	mu         sync.RWMutex
}

// NewRegistry creates a new, empty principal registry.
func NewRegistry() *Registry {
	return &Registry{
		principals: make(map[string]*Principal),
	}
}

// Register adds or replaces a principal.
func (r *Registry) Register(p *Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.principals[p.Name()] = p
}

// Get retrieves a principal by name.
// Returns nil and false if no principal is registered.
func (r *Registry) Get(name string) (*Principal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.principals[name]
	return p, ok
}

// Names returns the registered principal names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.principals))
	for name := range r.principals {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GrantStore persists and retrieves principals' grants.
type GrantStore interface {
	Load() (map[string]GrantSet, error)
	Save(grants map[string]GrantSet) error
	ConfigPath() string
}

// LoadRegistry builds a Registry from every principal in store.
func LoadRegistry(store GrantStore) (*Registry, error) {
	grants, err := store.Load()
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for name, gs := range grants {
		reg.Register(NewPrincipal(name, gs))
	}
	return reg, nil
}
