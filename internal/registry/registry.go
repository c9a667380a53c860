// Package registry provides a registry of named date styles so the output
// date format can be chosen by name at run time.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Style renders a parsed timestamp for the report.
type Style interface {
	// Name returns the style's unique identifier (e.g. "long").
	Name() string

	// Pattern returns the strftime pattern the style renders with.
	// Used for usage text and for archiving which format a run used.
	Pattern() string

	// Format renders t. It must be a pure function of t.
	Format(t time.Time) string
}

// Registry holds the registered styles keyed by name.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Style
}

// New creates a new Registry instance.
func New() *Registry {
	return &Registry{
		byName: make(map[string]Style),
	}
}

// Global default registry.
var defaultRegistry = New()

// Default returns the global registry instance.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a style to the default registry.
// Called during init() by the packages that provide styles.
func Register(s Style) {
	if err := defaultRegistry.Register(s); err != nil {
		panic(err)
	}
}

// Register adds a style to the registry. Names must be unique.
func (r *Registry) Register(s Style) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if name == "" {
		return fmt.Errorf("registry: style has empty name")
	}
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("registry: style %q already registered", name)
	}
	r.byName[name] = s
	return nil
}

// Lookup returns the style registered under name.
func (r *Registry) Lookup(name string) (Style, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byName[name]
	return s, ok
}

// Names returns all registered style names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered styles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
