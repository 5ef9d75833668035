package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	cerrors "git.home.luguber.info/inful/buildconf/internal/errors"
)

// EnvFiles returns the .env file names consulted for mode, lowest precedence first.
func EnvFiles(mode string) []string {
	files := []string{".env", ".env.local"}
	if mode != "" {
		files = append(files, ".env."+mode, ".env."+mode+".local")
	}
	return files
}

// Env is the merged variable set used to expand a configuration file.
type Env struct {
	// Files lists the env files that were actually loaded, in load order.
	Files []string

	vars   map[string]string
	lookup func(string) (string, bool)
}

// LoadEnv reads the mode's .env files from dir. Later files override earlier
// ones; variables already present in the process environment (as seen through
// lookup) override every file. Missing files are skipped.
func LoadEnv(dir, mode string, lookup func(string) (string, bool)) (*Env, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := &Env{vars: make(map[string]string), lookup: lookup}
	for _, name := range EnvFiles(mode) {
		path := filepath.Join(dir, name)
		vars, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, cerrors.EnvFileFailed(path, err)
		}
		for k, v := range vars {
			env.vars[k] = v
		}
		env.Files = append(env.Files, path)
	}
	return env, nil
}

// Lookup returns the effective value of key.
func (e *Env) Lookup(key string) (string, bool) {
	if e.lookup != nil {
		if v, ok := e.lookup(key); ok {
			return v, true
		}
	}
	v, ok := e.vars[key]
	return v, ok
}

// Expand replaces ${VAR} and $VAR references in text. Undefined variables
// expand to the empty string; "$$" yields a literal "$".
func (e *Env) Expand(text string) string {
	return os.Expand(text, func(key string) string {
		if key == "$" {
			return "$"
		}
		v, _ := e.Lookup(key)
		return v
	})
}
