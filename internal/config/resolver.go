package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	cerrors "git.home.luguber.info/inful/buildconf/internal/errors"
	"git.home.luguber.info/inful/buildconf/internal/logfields"
	"git.home.luguber.info/inful/buildconf/internal/metrics"
	"git.home.luguber.info/inful/buildconf/internal/plugin"
)

// Resolver turns configuration sources into BuildConfiguration values.
// A Resolver holds no per-resolution state and may be reused.
type Resolver struct {
	registry *plugin.Registry
	logger   *slog.Logger
	recorder metrics.Recorder
	mode     string
	envDir   string
	lookup   func(string) (string, bool)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistry sets the plugin registry (default: plugin.DefaultRegistry()).
func WithRegistry(r *plugin.Registry) Option {
	return func(res *Resolver) { res.registry = r }
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(res *Resolver) { res.logger = l }
}

// WithRecorder sets the metrics recorder (default: metrics.NoopRecorder).
func WithRecorder(r metrics.Recorder) Option {
	return func(res *Resolver) { res.recorder = r }
}

// WithMode overrides the mode declared in the configuration.
func WithMode(mode string) Option {
	return func(res *Resolver) { res.mode = mode }
}

// WithEnvDir overrides the directory .env files are read from.
func WithEnvDir(dir string) Option {
	return func(res *Resolver) { res.envDir = dir }
}

// WithLookupEnv replaces os.LookupEnv as the process environment source.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(res *Resolver) { res.lookup = fn }
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, o := range opts {
		o(r)
	}
	if r.registry == nil {
		r.registry = plugin.DefaultRegistry()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.recorder == nil {
		r.recorder = metrics.NoopRecorder{}
	}
	if r.lookup == nil {
		r.lookup = os.LookupEnv
	}
	return r
}

// Resolve validates src and produces its BuildConfiguration. It performs no
// I/O other than checking that referenced directories exist. All failures are
// *errors.ConfigurationError.
func (r *Resolver) Resolve(src *Source) (*BuildConfiguration, error) {
	start := time.Now()
	logger := r.logger.With(logfields.ResolutionID(uuid.NewString()))
	if src != nil && src.File != "" {
		logger = logger.With(logfields.ConfigPath(src.File))
	}

	cfg, err := r.resolve(src, logger)
	elapsed := time.Since(start)
	r.recorder.ObserveResolveDuration(elapsed)
	if err != nil {
		kind := ""
		if ce, ok := cerrors.As(err); ok {
			kind = string(ce.Kind)
		}
		r.recorder.IncResolveOutcome(metrics.OutcomeFailure, kind)
		logger.Debug("Configuration resolution failed", logfields.Error(err), logfields.Duration(elapsed))
		return nil, err
	}

	r.recorder.IncResolveOutcome(metrics.OutcomeSuccess, "")
	r.recorder.SetPluginCount(len(cfg.Plugins))
	r.recorder.SetAliasCount(len(cfg.Aliases))
	logger.Info("Resolved build configuration",
		logfields.Base(cfg.BasePath),
		logfields.Mode(cfg.Mode),
		slog.Int("plugins", len(cfg.Plugins)),
		slog.Int("aliases", len(cfg.Aliases)),
		logfields.Duration(elapsed))
	return cfg, nil
}

func (r *Resolver) resolve(src *Source, logger *slog.Logger) (*BuildConfiguration, error) {
	if src == nil {
		return nil, cerrors.Malformed("", "configuration source is nil")
	}
	if !filepath.IsAbs(src.Dir) {
		return nil, cerrors.Malformed("", "configuration directory must be absolute").WithContext("dir", src.Dir)
	}
	dir := filepath.Clean(src.Dir)

	for _, key := range src.Unknown {
		logger.Warn("Ignoring unknown configuration key", logfields.Field(key))
	}

	base := DefaultBasePath
	if src.Base != nil {
		b, warnings, err := NormalizeBase(*src.Base)
		if err != nil {
			return nil, err
		}
		for _, w := range warnings {
			logger.Warn("Normalized base path", slog.String("detail", w))
		}
		base = b
	}

	mode := firstNonEmpty(r.mode, src.Mode, DefaultMode)

	root := dir
	if src.Root != "" {
		root = absUnder(dir, src.Root)
		if err := requireDir(root); err != nil {
			return nil, cerrors.Wrap(err, cerrors.KindMalformed, "root", "root is not an existing directory").
				WithContext("path", root)
		}
	}

	plugins, err := r.resolvePlugins(src.Plugins, logger)
	if err != nil {
		return nil, err
	}

	aliases, err := resolveAliases(dir, src.Aliases, src.Expanded, logger)
	if err != nil {
		return nil, err
	}

	return &BuildConfiguration{
		BasePath:   base,
		Plugins:    plugins,
		Aliases:    aliases,
		Root:       root,
		Mode:       mode,
		ConfigFile: src.File,
	}, nil
}

// resolvePlugins invokes each factory in declaration order.
func (r *Resolver) resolvePlugins(entries []PluginEntry, logger *slog.Logger) ([]plugin.Descriptor, error) {
	out := make([]plugin.Descriptor, 0, len(entries))
	for i, e := range entries {
		d, err := r.registry.Invoke(e.Name, e.Options)
		if err != nil {
			var ce *cerrors.ConfigurationError
			if errors.Is(err, plugin.ErrNotRegistered) {
				ce = cerrors.UnknownPlugin(i, e.Name).WithContext("available", r.registry.Names())
			} else {
				ce = cerrors.PluginFailed(i, e.Name, err)
			}
			if e.Line > 0 {
				ce.WithContext("line", e.Line)
			}
			return nil, ce
		}
		logger.Debug("Resolved plugin", logfields.Plugin(d.String()), slog.Int("index", i), slog.Any("options", d.OptionKeys()))
		out = append(out, d)
	}
	return out, nil
}

const expansionHint = "configuration text is expanded from the environment; write $$ for a literal $"

// resolveAliases makes every target absolute relative to dir and checks it is
// an existing directory. Keys must be unique.
func resolveAliases(dir string, entries []AliasEntry, expanded bool, logger *slog.Logger) (map[string]string, error) {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Find == "" {
			return nil, cerrors.Malformed("resolve.alias", "alias key must not be empty")
		}
		if _, dup := out[e.Find]; dup {
			return nil, cerrors.DuplicateAlias(e.Find)
		}
		if e.Replacement == "" {
			return nil, cerrors.AliasUnresolvable(e.Find, e.Replacement, errors.New("empty target"))
		}
		target := absUnder(dir, e.Replacement)
		if err := requireDir(target); err != nil {
			ce := cerrors.AliasUnresolvable(e.Find, target, err)
			if expanded {
				ce.WithContext("hint", expansionHint)
			}
			return nil, ce
		}
		logger.Debug("Resolved alias", logfields.Alias(e.Find), logfields.AliasTarget(target))
		out[e.Find] = target
	}
	return out, nil
}

// absUnder resolves p against dir unless it is already absolute.
func absUnder(dir, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

func requireDir(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("not a directory")
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
