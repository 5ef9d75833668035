// Package vue provides the single-file-component framework plugin factory.
//
// Importing the package registers the factory under the name "vue" in the
// default plugin registry.
package vue

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/buildconf/internal/plugin"
	"git.home.luguber.info/inful/buildconf/internal/util/sets"
)

const (
	// Name is the registry name of the plugin.
	Name = "vue"

	// Version is reported in the plugin descriptor.
	Version = "5.2.1"
)

// DefaultInclude matches single-file components.
var DefaultInclude = []string{"**/*.vue"}

// Options are the supported plugin options.
type Options struct {
	Include       []string
	Exclude       []string
	CustomElement bool
	IsProduction  bool
}

var knownOptions = sets.New("include", "exclude", "customElement", "isProduction")

// ParseOptions decodes the raw option map declared in the configuration.
// Unknown keys and values of the wrong type are rejected.
func ParseOptions(raw map[string]any) (Options, error) {
	if unknown := sets.MissingKeys(raw, knownOptions); len(unknown) > 0 {
		return Options{}, fmt.Errorf("unknown option(s): %s", strings.Join(unknown, ", "))
	}

	opts := Options{Include: append([]string(nil), DefaultInclude...)}
	var err error
	if v, ok := raw["include"]; ok {
		if opts.Include, err = stringList("include", v); err != nil {
			return Options{}, err
		}
		if len(opts.Include) == 0 {
			return Options{}, fmt.Errorf("include must not be empty")
		}
	}
	if v, ok := raw["exclude"]; ok {
		if opts.Exclude, err = stringList("exclude", v); err != nil {
			return Options{}, err
		}
	}
	if v, ok := raw["customElement"]; ok {
		if opts.CustomElement, err = boolean("customElement", v); err != nil {
			return Options{}, err
		}
	}
	if v, ok := raw["isProduction"]; ok {
		if opts.IsProduction, err = boolean("isProduction", v); err != nil {
			return Options{}, err
		}
	}
	return opts, nil
}

// Factory builds the plugin descriptor. It satisfies plugin.Factory.
func Factory(raw map[string]any) (plugin.Descriptor, error) {
	opts, err := ParseOptions(raw)
	if err != nil {
		return plugin.Descriptor{}, err
	}
	options := map[string]any{
		"include":       opts.Include,
		"customElement": opts.CustomElement,
		"isProduction":  opts.IsProduction,
	}
	if len(opts.Exclude) > 0 {
		options["exclude"] = opts.Exclude
	}
	return plugin.Descriptor{Name: Name, Version: Version, Options: options}, nil
}

// Register adds the factory to r.
func Register(r *plugin.Registry) error {
	return r.Register(Name, Factory)
}

func stringList(key string, v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []string:
		return append([]string(nil), t...), nil
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a string or list of strings, got %T", key, v)
	}
}

func boolean(key string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean, got %T", key, v)
	}
	return b, nil
}

func init() {
	plugin.MustRegister(Name, Factory)
}
