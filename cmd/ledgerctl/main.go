// Command ledgerctl administers the pgledger database from a shell.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pgledger/internal/cli"
	"pgledger/internal/config"
	applog "pgledger/internal/log"
)

var Version = "dev"

type app struct {
	cfg    *config.Config
	logger *applog.Logger
	dbPath string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Administer the pgledger income ledger",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			if a.dbPath == "" {
				a.dbPath = cfg.SQLiteDBPath
			}
			a.logger = applog.New(applog.Config{
				Level:     applog.ParseLevel(cfg.LogLevel),
				Component: applog.ComponentCLI,
				Output:    cmd.ErrOrStderr(),
			})
			applog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (default $SQLITE_DB_PATH)")

	root.AddCommand(migrateCmd(a))
	root.AddCommand(incomeCmd(a))
	root.AddCommand(summaryCmd(a))
	root.AddCommand(duesCmd(a))
	return root
}

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
