package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	cerrors "git.home.luguber.info/inful/buildconf/internal/errors"
	"git.home.luguber.info/inful/buildconf/internal/util/sets"
)

const (
	tagString = "!!str"
	tagNull   = "!!null"
	tagBool   = "!!bool"
)

// DecodeSource parses configuration text into a Source. Dir and File are left
// for the caller to fill in. Type mismatches and duplicate keys are reported as
// ConfigurationError with the offending field and line.
func DecodeSource(data []byte) (*Source, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, cerrors.Wrap(err, cerrors.KindMalformed, "", "configuration is not valid YAML")
	}

	src := &Source{}
	if len(doc.Content) == 0 {
		return src, nil // empty document: all defaults
	}
	root := deref(doc.Content[0])
	if root.Kind == yaml.ScalarNode && root.ShortTag() == tagNull {
		return src, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, wrongType("", "mapping", root)
	}

	err := eachPair(root, "", func(key string, value *yaml.Node) error {
		switch key {
		case "base":
			s, present, err := optionalString("base", value)
			if err != nil {
				return err
			}
			if present {
				src.Base = &s
			}
		case "mode":
			s, _, err := optionalString("mode", value)
			if err != nil {
				return err
			}
			src.Mode = s
		case "root":
			s, _, err := optionalString("root", value)
			if err != nil {
				return err
			}
			src.Root = s
		case "envDir":
			s, _, err := optionalString("envDir", value)
			if err != nil {
				return err
			}
			src.EnvDir = s
		case "plugins":
			entries, err := decodePlugins(value)
			if err != nil {
				return err
			}
			src.Plugins = entries
		case "resolve":
			return decodeResolve(src, value)
		default:
			src.Unknown = append(src.Unknown, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return src, nil
}

func decodeResolve(src *Source, node *yaml.Node) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return wrongType("resolve", "mapping", node)
	}
	return eachPair(node, "resolve", func(key string, value *yaml.Node) error {
		if key != "alias" {
			src.Unknown = append(src.Unknown, "resolve."+key)
			return nil
		}
		aliases, err := decodeAliases(value)
		if err != nil {
			return err
		}
		src.Aliases = aliases
		return nil
	})
}

// decodeAliases accepts either a mapping of prefix to path or a list of
// {find, replacement} entries. Duplicate keys are rejected in both forms.
func decodeAliases(node *yaml.Node) ([]AliasEntry, error) {
	const field = "resolve.alias"
	var out []AliasEntry
	seen := sets.New[string]()
	add := func(find string, replacement *yaml.Node, line int) error {
		if find == "" {
			return cerrors.Malformed(field, "alias key must not be empty").WithContext("line", line)
		}
		if !seen.AddNew(find) {
			return cerrors.DuplicateAlias(find).WithContext("line", line)
		}
		if !isString(replacement) {
			return wrongType(field+"."+find, "string", replacement)
		}
		out = append(out, AliasEntry{Find: find, Replacement: replacement.Value, Line: line})
		return nil
	}

	switch {
	case isNull(node):
		return nil, nil
	case node.Kind == yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			k := node.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, wrongType(field, "string key", k)
			}
			if err := add(k.Value, deref(node.Content[i+1]), k.Line); err != nil {
				return nil, err
			}
		}
	case node.Kind == yaml.SequenceNode:
		for i, item := range node.Content {
			item = deref(item)
			itemField := fmt.Sprintf("%s[%d]", field, i)
			if item.Kind != yaml.MappingNode {
				return nil, wrongType(itemField, "mapping with find and replacement", item)
			}
			var find, replacement *yaml.Node
			err := eachPair(item, itemField, func(key string, value *yaml.Node) error {
				switch key {
				case "find":
					find = value
				case "replacement":
					replacement = value
				default:
					return cerrors.Malformed(itemField+"."+key, "unknown alias entry key").WithContext("line", value.Line)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			if find == nil || replacement == nil {
				return nil, cerrors.Malformed(itemField, "alias entry requires find and replacement").WithContext("line", item.Line)
			}
			if !isString(find) {
				return nil, wrongType(itemField+".find", "string", find)
			}
			if err := add(find.Value, replacement, item.Line); err != nil {
				return nil, err
			}
		}
	default:
		return nil, wrongType(field, "mapping or list", node)
	}
	return out, nil
}

// decodePlugins flattens nested lists and drops null/false entries, keeping
// declaration order.
func decodePlugins(node *yaml.Node) ([]PluginEntry, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, wrongType("plugins", "list", node)
	}
	var out []PluginEntry
	var walk func(n *yaml.Node, field string) error
	walk = func(n *yaml.Node, field string) error {
		for i, item := range n.Content {
			item = deref(item)
			itemField := fmt.Sprintf("%s[%d]", field, i)
			switch {
			case isNull(item):
				continue
			case item.Kind == yaml.ScalarNode && item.ShortTag() == tagBool:
				if strings.EqualFold(item.Value, "false") {
					continue
				}
				return wrongType(itemField, "plugin name, mapping or false", item)
			case isString(item):
				if item.Value == "" {
					return cerrors.Malformed(itemField, "plugin name must not be empty").WithContext("line", item.Line)
				}
				out = append(out, PluginEntry{Name: item.Value, Options: map[string]any{}, Line: item.Line})
			case item.Kind == yaml.SequenceNode:
				if err := walk(item, itemField); err != nil {
					return err
				}
			case item.Kind == yaml.MappingNode:
				entry, err := decodePluginMapping(item, itemField)
				if err != nil {
					return err
				}
				out = append(out, entry)
			default:
				return wrongType(itemField, "plugin name or mapping", item)
			}
		}
		return nil
	}
	if err := walk(node, "plugins"); err != nil {
		return nil, err
	}
	return out, nil
}

func decodePluginMapping(node *yaml.Node, field string) (PluginEntry, error) {
	entry := PluginEntry{Options: map[string]any{}, Line: node.Line}
	err := eachPair(node, field, func(key string, value *yaml.Node) error {
		switch key {
		case "name":
			if !isString(value) {
				return wrongType(field+".name", "string", value)
			}
			entry.Name = value.Value
		case "options":
			if isNull(value) {
				return nil
			}
			if value.Kind != yaml.MappingNode {
				return wrongType(field+".options", "mapping", value)
			}
			if err := value.Decode(&entry.Options); err != nil {
				return cerrors.Wrap(err, cerrors.KindMalformed, field+".options", "cannot decode plugin options")
			}
		default:
			return cerrors.Malformed(field+"."+key, "unknown plugin entry key").WithContext("line", value.Line)
		}
		return nil
	})
	if err != nil {
		return PluginEntry{}, err
	}
	if entry.Name == "" {
		return PluginEntry{}, cerrors.Malformed(field+".name", "plugin name is required").WithContext("line", node.Line)
	}
	return entry, nil
}

// eachPair walks a mapping node, rejecting duplicate and non-scalar keys.
func eachPair(node *yaml.Node, field string, fn func(key string, value *yaml.Node) error) error {
	seen := sets.New[string]()
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], deref(node.Content[i+1])
		if k.Kind != yaml.ScalarNode {
			return wrongType(field, "string key", k)
		}
		if !seen.AddNew(k.Value) {
			return cerrors.Malformed(joinField(field, k.Value), "duplicate key").WithContext("line", k.Line)
		}
		if err := fn(k.Value, v); err != nil {
			return err
		}
	}
	return nil
}

func optionalString(field string, node *yaml.Node) (string, bool, error) {
	if isNull(node) {
		return "", false, nil
	}
	if !isString(node) {
		return "", false, wrongType(field, "string", node)
	}
	return node.Value, true, nil
}

// deref follows YAML alias nodes (*anchor references) to their target.
func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == tagNull)
}

func isString(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.ScalarNode && n.ShortTag() == tagString
}

func wrongType(field, want string, n *yaml.Node) *cerrors.ConfigurationError {
	return cerrors.WrongType(field, want, describeNode(n)).WithContext("line", n.Line)
}

func describeNode(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		return strings.TrimPrefix(n.ShortTag(), "!!")
	default:
		return "unknown"
	}
}

func joinField(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
