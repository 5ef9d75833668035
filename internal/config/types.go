package config

import (
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/buildconf/internal/plugin"
)

// DefaultMode is used when neither the configuration nor the caller names a mode.
const DefaultMode = "development"

// BuildConfiguration is the effective, validated build settings for one build
// or dev-server session. It is never mutated after Resolve returns it.
type BuildConfiguration struct {
	// BasePath is the URL path prefix under which built assets are served.
	// It always begins and ends with "/".
	BasePath string `json:"basePath" yaml:"basePath"`

	// Plugins are applied in this exact order.
	Plugins []plugin.Descriptor `json:"plugins" yaml:"plugins"`

	// Aliases map a module-path prefix to an absolute directory.
	Aliases map[string]string `json:"aliases" yaml:"aliases"`

	Root       string `json:"root" yaml:"root"`
	Mode       string `json:"mode" yaml:"mode"`
	ConfigFile string `json:"configFile,omitempty" yaml:"configFile,omitempty"`
}

// AliasKeys returns alias keys in sorted order.
func (c *BuildConfiguration) AliasKeys() []string {
	keys := make([]string, 0, len(c.Aliases))
	for k := range c.Aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResolveImport rewrites a module specifier through the alias table.
// A key matches when the specifier equals it or continues with "/" after it;
// the longest matching key wins.
func (c *BuildConfiguration) ResolveImport(specifier string) (string, bool) {
	best := ""
	for key := range c.Aliases {
		if len(key) <= len(best) {
			continue
		}
		if aliasMatches(key, specifier) {
			best = key
		}
	}
	if best == "" {
		return "", false
	}
	rest := strings.TrimPrefix(specifier[len(best):], "/")
	if rest == "" {
		return c.Aliases[best], true
	}
	return filepath.Join(c.Aliases[best], filepath.FromSlash(rest)), true
}

func aliasMatches(key, specifier string) bool {
	if specifier == key {
		return true
	}
	if strings.HasSuffix(key, "/") {
		return strings.HasPrefix(specifier, key)
	}
	return strings.HasPrefix(specifier, key+"/")
}

// PluginNames returns plugin names in declaration order.
func (c *BuildConfiguration) PluginNames() []string {
	names := make([]string, len(c.Plugins))
	for i, p := range c.Plugins {
		names[i] = p.Name
	}
	return names
}

// Source is a decoded but unresolved configuration.
type Source struct {
	// Dir is the absolute directory of the configuration file. Relative paths
	// in the source resolve against it.
	Dir string

	// File is the configuration file path, empty for in-memory sources.
	File string

	// Base is nil when the source does not declare a base path.
	Base *string

	Mode   string
	Root   string
	EnvDir string

	Plugins []PluginEntry
	Aliases []AliasEntry

	// Unknown lists unrecognized keys (dotted paths) for diagnostics.
	Unknown []string

	// Expanded is set when the raw text referenced environment variables.
	Expanded bool
}

// PluginEntry is one declared plugin factory invocation.
type PluginEntry struct {
	Name    string
	Options map[string]any
	Line    int
}

// AliasEntry is one declared alias in declaration order.
type AliasEntry struct {
	Find        string
	Replacement string
	Line        int
}
