package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/buildconf/internal/config"
	"git.home.luguber.info/inful/buildconf/internal/plugin"
	// Registers the built-in vue plugin in the default registry.
	_ "git.home.luguber.info/inful/buildconf/internal/plugin/vue"
)

// Global context passed to subcommands.
type Global struct {
	Logger   *slog.Logger
	Registry *plugin.Registry
	Stdout   io.Writer
}

// NewGlobal returns the process-wide command context.
func NewGlobal() *Global {
	return &Global{
		Logger:   slog.Default(),
		Registry: plugin.DefaultRegistry(),
		Stdout:   os.Stdout,
	}
}

// CLI definition & global flags.
type CLI struct {
	Config   string           `short:"c" help:"Configuration file path (default: buildconf.yaml, buildconf.yml or buildconf.json in the current directory)"`
	Verbose  bool             `short:"v" help:"Enable verbose logging"`
	LogLevel string           `name:"log-level" env:"BUILDCONF_LOG_LEVEL" enum:"debug,info,warn,error" default:"info" help:"Log level (debug, info, warn, error)"`
	Mode     string           `short:"m" env:"BUILDCONF_MODE" help:"Build mode; selects .env.<mode> files and overrides the mode in the file"`
	EnvDir   string           `name:"env-dir" help:"Directory holding .env files (default: the configuration file's directory)"`
	Version  kong.VersionFlag `name:"version" help:"Show version and exit"`

	Resolve ResolveCmd `cmd:"" help:"Resolve the configuration and print the effective settings"`
	Check   CheckCmd   `cmd:"" help:"Validate the configuration without printing it"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Watch   WatchCmd   `cmd:"" help:"Re-resolve the configuration whenever it or its .env files change"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.Level()})))
	return nil
}

// Level returns the effective log level. --verbose wins over --log-level.
func (c *CLI) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ConfigPath returns --config, or the first configuration file found in the
// working directory.
func (c *CLI) ConfigPath() (string, error) {
	if c.Config != "" {
		return c.Config, nil
	}
	return config.FindConfigFile(".")
}

// resolver builds a resolver honoring the global flags.
func (c *CLI) resolver(g *Global, extra ...config.Option) *config.Resolver {
	opts := []config.Option{
		config.WithRegistry(g.Registry),
		config.WithLogger(g.Logger),
		config.WithMode(c.Mode),
		config.WithEnvDir(c.EnvDir),
	}
	return config.NewResolver(append(opts, extra...)...)
}

// load discovers and resolves the configuration file.
func (c *CLI) load(g *Global) (*config.BuildConfiguration, error) {
	path, err := c.ConfigPath()
	if err != nil {
		return nil, err
	}
	return c.resolver(g).Load(path)
}
