package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "git.home.luguber.info/inful/buildconf/internal/errors"
	"git.home.luguber.info/inful/buildconf/internal/retry"
)

type reloadResult struct {
	cfg *BuildConfiguration
	err error
}

func startWatcher(t *testing.T, path string, policy ...retry.Policy) <-chan reloadResult {
	t.Helper()
	results := make(chan reloadResult, 8)
	w, err := NewWatcher(path, newTestResolver(t), func(cfg *BuildConfiguration, err error) {
		results <- reloadResult{cfg: cfg, err: err}
	})
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)
	if len(policy) > 0 {
		require.NoError(t, w.SetRetryPolicy(policy[0]))
	}

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, w.Stop())
	})
	return results
}

func waitReload(t *testing.T, results <-chan reloadResult) reloadResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
		return reloadResult{}
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	path := newProject(t, "base: /v1/\n", "src")
	initial, err := newTestResolver(t).Load(path)
	require.NoError(t, err)

	results := startWatcher(t, path)
	require.NoError(t, os.WriteFile(path, []byte("base: /v2/\n"), 0o644))

	r := waitReload(t, results)
	require.NoError(t, r.err)
	assert.Equal(t, "/v2/", r.cfg.BasePath)
	assert.Equal(t, "/v1/", initial.BasePath, "previously resolved values are never mutated")
}

func TestWatcherReportsInvalidReload(t *testing.T) {
	path := newProject(t, "base: /v1/\n")
	results := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("base: 7\n"), 0o644))

	r := waitReload(t, results)
	assert.Nil(t, r.cfg)
	assert.True(t, cerrors.IsKind(r.err, cerrors.KindMalformed))
}

func TestWatcherReloadsOnEnvChange(t *testing.T) {
	path := newProject(t, "base: ${PUBLIC_BASE}\n")
	results := startWatcher(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte("PUBLIC_BASE=/env/\n"), 0o644))

	r := waitReload(t, results)
	require.NoError(t, r.err)
	assert.Equal(t, "/env/", r.cfg.BasePath)
}

func TestWatcherReloadsOnDeclaredEnvDirChange(t *testing.T) {
	path := newProject(t, "envDir: env\nbase: ${B}\n", "env")
	envFile := filepath.Join(filepath.Dir(path), "env", ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("B=/one/\n"), 0o644))
	results := startWatcher(t, path)

	require.NoError(t, os.WriteFile(envFile, []byte("B=/two/\n"), 0o644))

	r := waitReload(t, results)
	require.NoError(t, r.err)
	assert.Equal(t, "/two/", r.cfg.BasePath)
}

func TestWatcherFollowsMovedEnvDir(t *testing.T) {
	path := newProject(t, "envDir: first\nbase: ${B}\n", "first", "second")
	dir := filepath.Dir(path)
	results := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("envDir: second\nbase: ${B}\n"), 0o644))
	r := waitReload(t, results)
	require.NoError(t, r.err)
	assert.Equal(t, "/", r.cfg.BasePath)

	// Drain reloads queued by the config write before editing the new env dir.
	time.Sleep(100 * time.Millisecond)
	for len(results) > 0 {
		<-results
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "second", ".env"), []byte("B=/moved/\n"), 0o644))
	r = waitReload(t, results)
	require.NoError(t, r.err)
	assert.Equal(t, "/moved/", r.cfg.BasePath)
}

func TestWatcherRejectsInvalidRetryPolicy(t *testing.T) {
	path := newProject(t, "base: /\n")
	w, err := NewWatcher(path, newTestResolver(t), func(*BuildConfiguration, error) {})
	require.NoError(t, err)
	assert.Error(t, w.SetRetryPolicy(retry.Policy{}))
	require.NoError(t, w.Stop())
}

func TestWatcherWaitsForReplacedFile(t *testing.T) {
	path := newProject(t, "base: /v1/\n")
	results := startWatcher(t, path, retry.NewPolicy(retry.BackoffFixed, 50*time.Millisecond, 50*time.Millisecond, 40))

	require.NoError(t, os.Remove(path))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte("X=1\n"), 0o644))
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("base: /v2/\n"), 0o644))

	r := waitReload(t, results)
	require.NoError(t, r.err)
	assert.Equal(t, "/v2/", r.cfg.BasePath)
}

func TestWatcherReportsMissingFileAfterRetries(t *testing.T) {
	path := newProject(t, "base: /v1/\n")
	results := startWatcher(t, path, retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, 2))

	require.NoError(t, os.Remove(path))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte("X=1\n"), 0o644))

	r := waitReload(t, results)
	assert.True(t, cerrors.IsKind(r.err, cerrors.KindNotFound))
}

func TestWatcherRequiresCallback(t *testing.T) {
	_, err := NewWatcher("buildconf.yaml", nil, nil)
	assert.Error(t, err)
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	path := newProject(t, "base: /\n")
	w, err := NewWatcher(path, newTestResolver(t), func(*BuildConfiguration, error) {})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	assert.Error(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
