package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/buildconf/internal/config"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	Format string `short:"f" enum:"json,yaml" default:"json" help:"Output format (json, yaml)"`
}

func (r *ResolveCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.load(g)
	if err != nil {
		return err
	}
	return WriteConfiguration(g.Stdout, cfg, r.Format)
}

// WriteConfiguration prints cfg in the requested format.
func WriteConfiguration(w io.Writer, cfg *config.BuildConfiguration, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
