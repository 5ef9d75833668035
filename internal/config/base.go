package config

import (
	"fmt"
	"strings"

	cerrors "git.home.luguber.info/inful/buildconf/internal/errors"
)

// DefaultBasePath is used when the configuration does not declare a base.
const DefaultBasePath = "/"

// NormalizeBase canonicalizes a declared base path so that it begins and ends
// with "/". It returns warnings describing any adjustment. Empty, "." and "./"
// mean the root. Absolute URLs are rejected: assets are always served under a
// path on the build's own origin.
func NormalizeBase(raw string) (string, []string, error) {
	trimmed := strings.TrimSpace(raw)
	switch trimmed {
	case "", ".", "./":
		return DefaultBasePath, nil, nil
	}
	if strings.HasPrefix(trimmed, "//") || strings.Contains(trimmed, "://") {
		return "", nil, cerrors.Malformed("base", "base must be a path, not a URL").WithContext("value", raw)
	}
	if strings.ContainsAny(trimmed, "?#") {
		return "", nil, cerrors.Malformed("base", "base must not contain a query or fragment").WithContext("value", raw)
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == ".." {
			return "", nil, cerrors.Malformed("base", "base must not contain '..' segments").WithContext("value", raw)
		}
	}

	var warnings []string
	out := trimmed
	if strings.HasPrefix(out, "./") {
		out = strings.TrimPrefix(out, ".")
	}
	if !strings.HasPrefix(out, "/") {
		out = "/" + out
		warnings = append(warnings, fmt.Sprintf("base %q should start with a slash; using %q", raw, out))
	}
	if !strings.HasSuffix(out, "/") {
		out += "/"
		warnings = append(warnings, fmt.Sprintf("base %q should end with a slash; using %q", raw, out))
	}
	return out, warnings, nil
}
