// Package plugin provides the plugin factory registry used when resolving a build configuration.
// A configuration names plugins; each name maps to a Factory that turns the declared
// options into an opaque Descriptor handed to the build pipeline.
package plugin

import (
	"fmt"
	"sort"
)

// Descriptor is an opaque handle for a build-time source transformation.
// The resolver never inspects it beyond checking that it is named.
type Descriptor struct {
	// Name is the plugin identifier (e.g., "vue").
	Name string `json:"name" yaml:"name"`

	// Version is the plugin implementation version, if the factory reports one.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Options are the effective plugin options after the factory applied its defaults.
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// Factory builds a Descriptor from the options declared in the configuration.
// options is never nil.
type Factory func(options map[string]any) (Descriptor, error)

// String returns a human-readable representation of the descriptor.
func (d Descriptor) String() string {
	if d.Version == "" {
		return d.Name
	}
	return fmt.Sprintf("%s@%s", d.Name, d.Version)
}

// Validate checks if the descriptor is usable by the build pipeline.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	for _, k := range d.OptionKeys() {
		if k == "" {
			return fmt.Errorf("plugin %s reported an empty option name", d.Name)
		}
	}
	return nil
}

// OptionKeys returns the option names in sorted order.
func (d Descriptor) OptionKeys() []string {
	keys := make([]string, 0, len(d.Options))
	for k := range d.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
