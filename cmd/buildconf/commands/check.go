package commands

import (
	"fmt"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct{}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.load(g)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.Stdout, "%s: ok (base %s, %d plugins, %d aliases, snapshot %s)\n",
		cfg.ConfigFile, cfg.BasePath, len(cfg.Plugins), len(cfg.Aliases), cfg.Snapshot()[:12])
	return err
}
