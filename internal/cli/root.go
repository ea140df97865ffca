// Package cli implements the gutoautopecas command line: the HTTP server
// and the maintenance commands that share its configuration.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"gutoautopecas/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "gutoautopecas",
		Short:         "Guto Auto Peças site and admin panel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewResetDefaultsCommand(opts))
	cmd.AddCommand(NewHashPasswordCommand())

	return cmd
}

// setupLogger installs the default structured logger: JSON in production,
// text in development.
func setupLogger(cfg *config.Config, verbose bool) {
	level := slog.LevelInfo
	if verbose || cfg.IsDev() {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, hopts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, hopts)
	}
	slog.SetDefault(slog.New(handler))
}
