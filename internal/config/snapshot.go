package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
)

// Snapshot computes a stable hash of the resolved configuration. Plugins are
// hashed in declaration order since reordering changes build output; aliases
// are hashed in key order. ConfigFile is excluded because it does not affect
// build output.
func (c *BuildConfiguration) Snapshot() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) { h.Write([]byte(strings.Join(parts, "="))); h.Write([]byte{0}) }
	w("base", c.BasePath)
	w("mode", c.Mode)
	w("root", c.Root)
	for i, p := range c.Plugins {
		// json.Marshal sorts map keys, so options encode deterministically.
		opts, err := json.Marshal(p.Options)
		if err != nil {
			opts = []byte("!" + err.Error())
		}
		w("plugin", strconv.Itoa(i), p.Name, p.Version, string(opts))
	}
	for _, k := range c.AliasKeys() {
		w("alias", k, c.Aliases[k])
	}
	return hex.EncodeToString(h.Sum(nil))
}
