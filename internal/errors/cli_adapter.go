package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// Exit codes returned by the CLI.
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitUsage       = 2
	ExitConfigError = 7
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
		exit:    os.Exit,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	if IsConfigurationError(err) {
		return ExitConfigError
	}
	return ExitGeneral
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	ce, ok := As(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if !a.verbose {
		return ce.Error()
	}

	var b strings.Builder
	b.WriteString(ce.Error())
	b.WriteString(fmt.Sprintf("\n  kind: %s", ce.Kind))
	keys := make([]string, 0, len(ce.Context))
	for k := range ce.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("\n  %s: %v", k, ce.Context[k]))
	}
	return b.String()
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	if a.verbose {
		a.logError(err)
	}

	fmt.Fprintf(a.out, "%s\n", a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

// logError logs an error with its classification attributes.
func (a *CLIErrorAdapter) logError(err error) {
	if ce, ok := As(err); ok {
		attrs := []slog.Attr{
			slog.String("kind", string(ce.Kind)),
		}
		if ce.Field != "" {
			attrs = append(attrs, slog.String("field", ce.Field))
		}
		a.logger.LogAttrs(context.Background(), slog.LevelError, ce.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}
