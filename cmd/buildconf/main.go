package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/buildconf/cmd/buildconf/commands"
	"git.home.luguber.info/inful/buildconf/internal/errors"
	"git.home.luguber.info/inful/buildconf/internal/version"
)

func main() {
	var cli commands.CLI
	parser, err := kong.New(&cli,
		kong.Name("buildconf"),
		kong.Description("Resolve and validate front-end build configuration files."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "buildconf: %v\n", err)
		os.Exit(errors.ExitGeneral)
	}

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		parser.Errorf("%v", err)
		os.Exit(errors.ExitUsage)
	}

	global := commands.NewGlobal()
	adapter := errors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
	adapter.HandleError(ctx.Run(global, &cli))
}
