package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the todos table if it does not exist, then exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(a.cfg.Log.Level, cmd.OutOrStdout())

			repo, err := openRepo(a.cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer repo.Close()

			if err := repo.EnsureSchema(cmd.Context()); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
			logger.Info("schema_ready", slog.String("db_driver", a.cfg.Database.Driver))
			return nil
		},
	}
}
