package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pgledger/internal/core"
	"pgledger/internal/services"
	"pgledger/internal/storage"
)

func summaryCmd(a *app) *cobra.Command {
	var monthly, asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print income and expense totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := storage.NewSQLiteRepository(a.dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if !monthly {
				totals, err := repo.Totals(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, map[string]core.Money{
						"totalIncome":  totals.Income,
						"totalExpense": totals.Expense,
						"net":          totals.Net(),
					})
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "income\t%s\n", totals.Income)
				fmt.Fprintf(tw, "expense\t%s\n", totals.Expense)
				fmt.Fprintf(tw, "net\t%s\n", totals.Net())
				return tw.Flush()
			}

			income, err := repo.MonthlyIncome(ctx)
			if err != nil {
				return err
			}
			expense, err := repo.MonthlyExpense(ctx)
			if err != nil {
				return err
			}
			rows := mergeMonths(income, expense)
			if asJSON {
				return writeJSON(out, rows)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "MONTH\tINCOME\tEXPENSE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Month, r.Income, r.Expense)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&monthly, "monthly", false, "break totals down by month")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

type monthRow struct {
	Month   string     `json:"month"`
	Income  core.Money `json:"totalIncome"`
	Expense core.Money `json:"totalExpense"`
}

// mergeMonths joins two month-ordered series; a month missing on one side counts as 0.
func mergeMonths(income, expense []core.MonthTotal) []monthRow {
	rows := make([]monthRow, 0, len(income)+len(expense))
	i, j := 0, 0
	for i < len(income) || j < len(expense) {
		switch {
		case j >= len(expense) || (i < len(income) && income[i].Month < expense[j].Month):
			rows = append(rows, monthRow{Month: income[i].Month, Income: income[i].Total})
			i++
		case i >= len(income) || expense[j].Month < income[i].Month:
			rows = append(rows, monthRow{Month: expense[j].Month, Expense: expense[j].Total})
			j++
		default:
			rows = append(rows, monthRow{Month: income[i].Month, Income: income[i].Total, Expense: expense[j].Total})
			i++
			j++
		}
	}
	return rows
}

func duesCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "dues",
		Short: "List customers who have not paid the monthly fee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := core.Today().MonthOf()
			if month != "" {
				parsed, err := core.ParseMonth(month)
				if err != nil {
					return fmt.Errorf("--month %q: %w", month, err)
				}
				m = parsed
			}

			repo, err := storage.NewSQLiteRepository(a.dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			dues, err := services.OutstandingFees(cmd.Context(), repo, m)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tJOINED\tMONTH")
			for _, d := range dues {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", d.Customer.ID, d.Customer.Name, d.Customer.JoiningDate, d.Month)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: current month)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
