package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"git.home.luguber.info/inful/buildconf/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Output directory for generated config file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	// If the user specified an output directory, place the config there as "buildconf.yaml".
	if i.Output != "" {
		return RunInit(g.Stdout, filepath.Join(i.Output, config.ConfigFileNames[0]), i.Force)
	}
	if root.Config != "" {
		return RunInit(g.Stdout, root.Config, i.Force)
	}
	return RunInit(g.Stdout, config.ConfigFileNames[0], i.Force)
}

func RunInit(out io.Writer, configPath string, force bool) error {
	_, _ = fmt.Fprintf(out, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		_, _ = fmt.Fprintln(out, "Initialization failed")
		return err
	}
	_, _ = fmt.Fprintln(out, "initialized successfully")
	return nil
}
