package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"gutoautopecas/internal/config"
	"gutoautopecas/internal/content"
	"gutoautopecas/internal/database"
	"gutoautopecas/internal/gateway"
	"gutoautopecas/internal/snapshot"
)

// NewResetDefaultsCommand creates the reset-defaults command, the
// command line version of the admin panel's reset button.
func NewResetDefaultsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-defaults",
		Short: "Restore the default site content in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			setupLogger(cfg, rootOpts.Verbose)
			ctx := cmd.Context()

			db, err := database.Connect(ctx, cfg.DSN(), cfg.StartupAttempts)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(ctx, db); err != nil {
				return err
			}

			gw := gateway.NewRetrying(gateway.NewSQLGateway(db), cfg.RetryAttempts, cfg.RetryBaseDelay)
			site, snap, err := openSite(cfg, gw)
			if err != nil {
				return err
			}
			if snap != nil {
				defer snap.Close()
			}

			if err := site.ResetAll(ctx); err != nil {
				return fmt.Errorf("reset defaults: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "site content reset to defaults")
			return nil
		},
	}
}

// openSite creates the content store over gw, with the offline snapshot
// when one is configured. snap is nil otherwise.
func openSite(cfg *config.Config, gw gateway.Gateway) (site *content.Store, snap *snapshot.Store, err error) {
	if cfg.SnapshotPath == "" {
		slog.Warn("offline snapshot disabled")
		return content.New(gw), nil, nil
	}
	snap, err = snapshot.Open(cfg.SnapshotPath)
	if err != nil {
		return nil, nil, err
	}
	return content.New(gw, content.WithSnapshot(snap)), snap, nil
}
