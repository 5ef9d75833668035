package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buildconf.yaml")

	require.NoError(t, Init(path, false))

	cfg, err := newTestResolver(t).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/", cfg.BasePath)
	assert.Equal(t, []string{"vue"}, cfg.PluginNames())
	assert.Equal(t, filepath.Join(dir, "src"), cfg.Aliases["@"])
}

func TestInitRefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buildconf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base: /keep/\n"), 0o644))

	err := Init(path, false)
	require.Error(t, err)
	data, _ := os.ReadFile(path)
	assert.Equal(t, "base: /keep/\n", string(data))

	require.NoError(t, Init(path, true))
	data, _ = os.ReadFile(path)
	assert.Contains(t, string(data), "vue")
}
