package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	cerrors "git.home.luguber.info/inful/buildconf/internal/errors"
	"git.home.luguber.info/inful/buildconf/internal/logfields"
)

// ConfigFileNames are searched, in order, by FindConfigFile.
var ConfigFileNames = []string{"buildconf.yaml", "buildconf.yml", "buildconf.json"}

// Load reads, expands and resolves the configuration file at path.
func Load(path string, opts ...Option) (*BuildConfiguration, error) {
	return NewResolver(opts...).Load(path)
}

// Load reads, expands and resolves the configuration file at path. Relative
// paths inside the file resolve against the file's directory.
func (r *Resolver) Load(path string) (*BuildConfiguration, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, cerrors.ConfigUnreadable(path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cerrors.ConfigNotFound(abs)
		}
		return nil, cerrors.ConfigUnreadable(abs, err)
	}
	src, err := r.decode(data, filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	src.File = abs
	return r.Resolve(src)
}

// Parse resolves in-memory configuration text as if it had been read from a
// file in dir.
func (r *Resolver) Parse(data []byte, dir string) (*BuildConfiguration, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.KindMalformed, "", "cannot make configuration directory absolute")
	}
	src, err := r.decode(data, abs)
	if err != nil {
		return nil, err
	}
	return r.Resolve(src)
}

// Parse resolves in-memory configuration text as if it had been read from a
// file in dir.
func Parse(data []byte, dir string, opts ...Option) (*BuildConfiguration, error) {
	return NewResolver(opts...).Parse(data, dir)
}

// decode loads the env files selected by the configuration header, expands
// variables and decodes the result.
func (r *Resolver) decode(data []byte, dir string) (*Source, error) {
	h := readHeader(data)
	envDir := r.envDirFor(dir, h)

	mode := r.mode
	if mode == "" && h.Mode != "" {
		// mode may come from .env or .env.local, so those are read first.
		base, err := LoadEnv(envDir, "", r.lookup)
		if err != nil {
			return nil, err
		}
		mode = base.Expand(h.Mode)
	}
	mode = firstNonEmpty(mode, DefaultMode)

	env, err := LoadEnv(envDir, mode, r.lookup)
	if err != nil {
		return nil, err
	}
	for _, f := range env.Files {
		r.logger.Debug("Loaded environment file", logfields.EnvFile(f), logfields.Mode(mode))
	}

	src, err := DecodeSource([]byte(env.Expand(string(data))))
	if err != nil {
		return nil, err
	}
	src.Dir = dir
	src.Expanded = strings.Contains(string(data), "$")
	if r.mode == "" && src.Mode != "" && src.Mode != mode {
		return nil, cerrors.Malformed("mode", "mode changed during variable expansion").
			WithContext("selected", mode).
			WithContext("declared", src.Mode)
	}
	return src, nil
}

// envDirFor returns the absolute directory .env files are read from. A
// declared envDir may reference process environment variables only, since
// it decides which .env files exist.
func (r *Resolver) envDirFor(dir string, h header) string {
	switch {
	case r.envDir != "":
		return absUnder(dir, r.envDir)
	case h.EnvDir != "":
		declared := os.Expand(h.EnvDir, func(key string) string {
			v, _ := r.lookup(key)
			return v
		})
		if declared != "" {
			return absUnder(dir, declared)
		}
	}
	return dir
}

// EnvDir returns the directory .env files for the configuration at path are
// read from. Unreadable files report the configuration's own directory.
func (r *Resolver) EnvDir(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Dir(path)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return filepath.Dir(abs)
	}
	return r.envDirFor(filepath.Dir(abs), readHeader(data))
}

// header holds the fields needed before variable expansion.
type header struct {
	Mode   string `yaml:"mode"`
	EnvDir string `yaml:"envDir"`
}

// readHeader extracts mode and envDir from unexpanded text. Parse errors are
// ignored here; the full decode reports them.
func readHeader(data []byte) header {
	var h header
	if err := yaml.Unmarshal(data, &h); err != nil {
		return header{}
	}
	return h
}

// FindConfigFile returns the first of ConfigFileNames present in dir.
func FindConfigFile(dir string) (string, error) {
	for _, name := range ConfigFileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", cerrors.ConfigNotFound(dir).WithContext("candidates", ConfigFileNames)
}
