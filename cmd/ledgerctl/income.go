package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pgledger/internal/cli"
	"pgledger/internal/services"
	"pgledger/internal/storage"
)

func incomeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Manage income postings",
	}
	cmd.AddCommand(incomeClearCmd(a))
	return cmd
}

func incomeClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every income posting",
		Long: `Delete every income posting. Customers, fee payments and expenses are kept.

The deletion cannot be undone. When AMQP is configured an income.cleared event
is published so the spreadsheet mirror is emptied too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the income ledger without --yes")
			}

			repo, err := storage.NewSQLiteRepository(a.dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			publisher, client := cli.InitPublisher(a.logger, a.cfg)
			defer client.Close()

			removed, err := services.NewIncomeService(repo, publisher).ClearAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d income postings\n", removed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the irreversible deletion")
	return cmd
}
