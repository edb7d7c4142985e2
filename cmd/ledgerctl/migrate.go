package main

import (
	"fmt"

	"github.com/spf13/cobra"

	applog "pgledger/internal/log"
	"pgledger/internal/storage"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := storage.Migrate(a.dbPath)
			if err != nil {
				return fmt.Errorf("migrate %s: %w", a.dbPath, err)
			}
			a.logger.Info("Schema migrated",
				applog.FieldOperation, applog.OpMigrate,
				"version", status.Version,
				"dirty", status.Dirty)
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", status.Version, status.Dirty)
			return nil
		},
	}
}
