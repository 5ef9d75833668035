package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	cerrors "git.home.luguber.info/inful/buildconf/internal/errors"
	"git.home.luguber.info/inful/buildconf/internal/logfields"
	"git.home.luguber.info/inful/buildconf/internal/metrics"
	"git.home.luguber.info/inful/buildconf/internal/retry"
)

// DefaultDebounce coalesces bursts of editor writes into one reload.
const DefaultDebounce = 300 * time.Millisecond

// ChangeFunc receives each reload result. Exactly one of cfg and err is non-nil.
type ChangeFunc func(cfg *BuildConfiguration, err error)

// Watcher re-resolves a configuration file whenever it or one of its .env
// files changes. Every reload produces a new BuildConfiguration; values
// previously delivered are never modified.
type Watcher struct {
	configPath string
	resolver   *Resolver
	onChange   ChangeFunc
	recorder   metrics.Recorder
	logger     *slog.Logger
	watcher    *fsnotify.Watcher
	debounce   time.Duration
	retry      retry.Policy

	envMu  sync.Mutex
	envDir string // watched env directory when it differs from the config directory

	mu         sync.Mutex
	started    bool
	cancel     context.CancelFunc
	stopChan   chan struct{}
	reloadChan chan struct{}
	wg         sync.WaitGroup
}

// NewWatcher creates a watcher for configPath. It does not start watching
// until Start is called.
func NewWatcher(configPath string, resolver *Resolver, onChange ChangeFunc) (*Watcher, error) {
	if resolver == nil {
		resolver = NewResolver()
	}
	if onChange == nil {
		return nil, fmt.Errorf("change callback is required")
	}
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		configPath: absPath,
		resolver:   resolver,
		onChange:   onChange,
		recorder:   resolver.recorder,
		logger:     resolver.logger,
		watcher:    fw,
		debounce:   DefaultDebounce,
		retry:      retry.DefaultPolicy(),
		stopChan:   make(chan struct{}),
		reloadChan: make(chan struct{}, 1),
	}, nil
}

// SetDebounce changes the debounce interval. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// SetRetryPolicy controls how long a reload waits for a configuration file
// that is briefly missing while an editor replaces it. Call before Start.
func (w *Watcher) SetRetryPolicy(p retry.Policy) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid retry policy: %w", err)
	}
	w.retry = p
	return nil
}

// Start watches the configuration directory (more reliable than watching the
// file, since editors often replace it) until ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return fmt.Errorf("watcher already started")
	}

	configDir := filepath.Dir(w.configPath)
	if err := w.watcher.Add(configDir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", configDir, err)
	}
	if err := w.syncEnvDir(); err != nil {
		w.logger.Warn("Environment directory not watched", logfields.Error(err))
	}
	w.started = true
	ctx, w.cancel = context.WithCancel(ctx)

	w.logger.Info("Starting configuration watcher", logfields.ConfigPath(w.configPath))
	w.wg.Add(2)
	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutines to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	select {
	case <-w.stopChan:
		w.mu.Unlock()
		return nil
	default:
		close(w.stopChan)
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) relevant(name string) bool {
	base := filepath.Base(name)
	return filepath.Clean(name) == w.configPath || strings.HasPrefix(base, ".env")
}

// watchLoop monitors file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event.Name) {
				continue
			}
			switch {
			case event.Op.Has(fsnotify.Write), event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Rename):
				w.logger.Debug("Configuration change detected", slog.String("file", event.Name), slog.String("op", event.Op.String()))
				w.triggerReload()
			case event.Op.Has(fsnotify.Remove):
				w.logger.Warn("Configuration file removed", slog.String("file", event.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", logfields.Error(err))
		}
	}
}

// reloadLoop handles debounced configuration reloads
func (w *Watcher) reloadLoop(ctx context.Context) {
	defer w.wg.Done()
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.reloadChan:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload(ctx)
		}
	}
}

// triggerReload triggers a debounced configuration reload
func (w *Watcher) triggerReload() {
	select {
	case w.reloadChan <- struct{}{}:
	default:
		// reload already pending
	}
}

func (w *Watcher) reload(ctx context.Context) {
	w.recorder.IncReload()
	w.logger.Info("Reloading configuration", logfields.ConfigPath(w.configPath))
	var cfg *BuildConfiguration
	err := retry.Do(ctx, w.retry, transientLoadError, func() error {
		var err error
		cfg, err = w.resolver.Load(w.configPath)
		return err
	})
	if syncErr := w.syncEnvDir(); syncErr != nil {
		w.logger.Warn("Environment directory not watched", logfields.Error(syncErr))
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("Failed to reload configuration", logfields.Error(err))
	}
	w.onChange(cfg, err)
}

// syncEnvDir watches the env directory the configuration currently selects,
// dropping the previous one when it moved.
func (w *Watcher) syncEnvDir() error {
	configDir := filepath.Dir(w.configPath)
	dir := w.resolver.EnvDir(w.configPath)
	if dir == configDir {
		dir = ""
	}

	w.envMu.Lock()
	defer w.envMu.Unlock()
	if dir == w.envDir {
		return nil
	}
	if w.envDir != "" {
		_ = w.watcher.Remove(w.envDir)
	}
	w.envDir = ""
	if dir == "" {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	w.envDir = dir
	w.logger.Debug("Watching environment directory", logfields.EnvFile(dir))
	return nil
}

// transientLoadError reports failures worth retrying: the file vanishes for a
// moment while editors save by rename.
func transientLoadError(err error) bool {
	return cerrors.IsKind(err, cerrors.KindNotFound)
}
