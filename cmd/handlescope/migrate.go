package main

import (
	"fmt"

	"github.com/phrazzld/handlescope/internal/platform/sqldb"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|reset|status|version]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{sqldb.MigrateUp, sqldb.MigrateDown, sqldb.MigrateReset, sqldb.MigrateStatus, sqldb.MigrateVersion},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, dialect, err := sqldb.Open(ctx, opts.cfg.Database, opts.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					opts.logger.Error("error closing database connection", "error", err)
				}
			}()

			if err := sqldb.Migrate(ctx, db, dialect, args[0], opts.logger); err != nil {
				return err
			}

			version, err := sqldb.SchemaVersion(ctx, db, dialect)
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
}
