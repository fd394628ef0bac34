// Package hooks provides ordered filter chains keyed by slash-separated names.
// Filters are attached with doublestar patterns, so a filter on
// "sanitize/post/**" sees every post field.
package hooks

import (
	"fmt"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/reglet-dev/reglet-forms/entities"
	"github.com/reglet-dev/reglet-forms/values"
)

// Filter transforms a value. Filters run in (priority, registration) order and
// each receives the previous filter's result.
type Filter func(value any, s entities.Subject) any

type entry struct {
	fn       Filter
	pattern  string
	priority int
	seq      int
}

// Filters is a set of filter chains.
type Filters struct {
	entries []entry
	seq     int
	mu      sync.RWMutex
}

// NewFilters creates an empty filter set.
func NewFilters() *Filters {
	return &Filters{}
}

// Add attaches fn to every key matching pattern.
func (f *Filters) Add(pattern string, priority int, fn Filter) error {
	if fn == nil {
		return fmt.Errorf("filter for %q is nil", pattern)
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid filter pattern %q", pattern)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	e := entry{fn: fn, pattern: pattern, priority: priority, seq: f.seq}
	idx, _ := slices.BinarySearchFunc(f.entries, e, compareEntries)
	f.entries = slices.Insert(f.entries, idx, e)
	return nil
}

func compareEntries(a, b entry) int {
	if a.priority != b.priority {
		return a.priority - b.priority
	}
	return a.seq - b.seq
}

// Apply runs every filter matching key over value.
func (f *Filters) Apply(key string, value any, s entities.Subject) any {
	for _, fn := range f.matching(key) {
		value = fn(value, s)
	}
	return value
}

// Has reports whether any filter matches key.
func (f *Filters) Has(key string) bool {
	return len(f.matching(key)) > 0
}

// Len returns the number of attached filters.
func (f *Filters) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

func (f *Filters) matching(key string) []Filter {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []Filter
	for _, e := range f.entries {
		if e.pattern == key {
			out = append(out, e.fn)
			continue
		}
		if ok, err := doublestar.Match(e.pattern, key); err == nil && ok {
			out = append(out, e.fn)
		}
	}
	return out
}

// SanitizeKey is the filter key run on values before they are stored.
func SanitizeKey(ns values.Namespace, id string) string {
	return key("sanitize", ns, id)
}

// OutputKey is the filter key run on values exposed to clients.
func OutputKey(ns values.Namespace, id string) string {
	return key("output", ns, id)
}

func key(hook string, ns values.Namespace, id string) string {
	return hook + "/" + ns.ObjectType + "/" + ns.ObjectSubtype + "/" + id
}
