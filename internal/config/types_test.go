package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/buildconf/internal/plugin"
)

func TestResolveImport(t *testing.T) {
	cfg := &BuildConfiguration{Aliases: map[string]string{
		"@":           "/project/src",
		"@components": "/project/src/components",
		"~/":          "/project/assets/",
		"vue":         "/project/vendor/vue",
	}}

	tests := []struct {
		specifier string
		want      string
		ok        bool
	}{
		{"@", "/project/src", true},
		{"@/main.ts", "/project/src/main.ts", true},
		{"@/views/Home.vue", "/project/src/views/Home.vue", true},
		{"@components/Button.vue", "/project/src/components/Button.vue", true},
		{"@componentsX", "", false},
		{"~/logo.png", "/project/assets/logo.png", true},
		{"vue", "/project/vendor/vue", true},
		{"vue-router", "", false},
		{"./relative", "", false},
	}
	for _, tt := range tests {
		got, ok := cfg.ResolveImport(tt.specifier)
		assert.Equal(t, tt.ok, ok, tt.specifier)
		if tt.ok {
			assert.Equal(t, filepath.FromSlash(tt.want), got, tt.specifier)
		}
	}
}

func TestAliasKeysSorted(t *testing.T) {
	cfg := &BuildConfiguration{Aliases: map[string]string{"b": "/b", "@": "/s", "a": "/a"}}
	assert.Equal(t, []string{"@", "a", "b"}, cfg.AliasKeys())
}

func TestPluginNames(t *testing.T) {
	cfg := &BuildConfiguration{Plugins: []plugin.Descriptor{{Name: "vue"}, {Name: "legacy"}}}
	assert.Equal(t, []string{"vue", "legacy"}, cfg.PluginNames())
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	_, err := FindConfigFile(dir)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "buildconf.json"), []byte(`{"base": "/x/"}`), 0o644))
	got, err := FindConfigFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "buildconf.json"), got)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "buildconf.yaml"), []byte("base: /y/\n"), 0o644))
	got, err = FindConfigFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "buildconf.yaml"), got)
}

func TestLoadJSONConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0o755))
	path := filepath.Join(dir, "buildconf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"base": "/app/", "plugins": ["vue"], "resolve": {"alias": {"@": "./src"}}}`), 0o644))

	cfg, err := newTestResolver(t).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/app/", cfg.BasePath)
	assert.Equal(t, []string{"vue"}, cfg.PluginNames())
	assert.Equal(t, filepath.Join(dir, "src"), cfg.Aliases["@"])
}
