package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotRegistered is returned when no factory exists for a plugin name.
var ErrNotRegistered = errors.New("plugin not registered")

// Registry manages plugin factory registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory to the registry.
// Returns an error if a factory with the same name already exists.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if factory == nil {
		return fmt.Errorf("cannot register nil factory for plugin %s", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("plugin %s already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister is like Register but panics on error. Intended for init-time registration.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]
	return f, ok
}

// Has checks if a factory with the given name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns all registered plugin names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes a factory from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; !ok {
		return fmt.Errorf("plugin %s: %w", name, ErrNotRegistered)
	}
	delete(r.factories, name)
	return nil
}

// Count returns the number of registered factories.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.factories)
}

// Invoke runs the named factory with options and validates its result.
// A panicking factory is reported as an error rather than crashing the caller.
// Errors are always *PluginError.
func (r *Registry) Invoke(name string, options map[string]any) (d Descriptor, err error) {
	factory, ok := r.Lookup(name)
	if !ok {
		return Descriptor{}, NewPluginError(name, "lookup", ErrNotRegistered)
	}
	if options == nil {
		options = map[string]any{}
	}

	defer func() {
		if rec := recover(); rec != nil {
			d = Descriptor{}
			err = NewPluginError(name, "factory", fmt.Errorf("panic: %v", rec))
		}
	}()

	d, err = factory(options)
	if err != nil {
		return Descriptor{}, NewPluginError(name, "factory", err)
	}
	if d.Name == "" {
		d.Name = name
	}
	if err := d.Validate(); err != nil {
		return Descriptor{}, NewPluginError(name, "validate", err)
	}
	return d, nil
}

// globalRegistry is the default plugin registry used throughout the application.
var globalRegistry = NewRegistry()

// DefaultRegistry returns the global plugin registry.
func DefaultRegistry() *Registry {
	return globalRegistry
}

// Register adds a factory to the global registry.
func Register(name string, factory Factory) error {
	return globalRegistry.Register(name, factory)
}

// MustRegister adds a factory to the global registry and panics on error.
func MustRegister(name string, factory Factory) {
	globalRegistry.MustRegister(name, factory)
}
