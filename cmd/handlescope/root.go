package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/handlescope/internal/config"
	"github.com/phrazzld/handlescope/internal/platform/logger"
	"github.com/spf13/cobra"
)

// rootOptions holds global flags and the state PersistentPreRunE loads
// for subcommands.
type rootOptions struct {
	ConfigFile string
	LogLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "handlescope",
		Short:         "Task service with per-request database handles",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(opts.ConfigFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if opts.LogLevel != "" {
				if _, ok := logger.ParseLevel(opts.LogLevel); !ok {
					return fmt.Errorf("invalid log level %q", opts.LogLevel)
				}
				cfg.Server.LogLevel = opts.LogLevel
			}

			l, err := logger.Setup(cfg.Server)
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}

			opts.cfg = cfg
			opts.logger = l
			l.Debug("configuration loaded",
				slog.Int("port", cfg.Server.Port),
				slog.String("log_level", cfg.Server.LogLevel),
				slog.String("database_driver", cfg.Database.Driver),
				slog.Any("namespaces", cfg.UnitOfWork.Namespaces))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default: ./config.yaml or /etc/handlescope/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override the configured log level (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}
