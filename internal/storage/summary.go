package storage

import (
	"context"

	"pgledger/internal/core"
)

// Summary reads sum in decimal on the Go side; the TEXT amounts never pass through SQL arithmetic.

func (r *SQLiteRepository) TotalIncome(ctx context.Context) (core.Money, error) {
	rows, err := r.queries.IncomeAmountsByDate(ctx)
	if err != nil {
		return core.Zero, &core.StorageError{Op: "total income", Err: err}
	}
	_, amounts, err := decodeDatedAmounts("income", rows)
	if err != nil {
		return core.Zero, err
	}
	return core.Sum(amounts...), nil
}

func (r *SQLiteRepository) TotalExpense(ctx context.Context) (core.Money, error) {
	rows, err := r.queries.ExpenseAmountsByDate(ctx)
	if err != nil {
		return core.Zero, &core.StorageError{Op: "total expense", Err: err}
	}
	_, amounts, err := decodeDatedAmounts("expense", rows)
	if err != nil {
		return core.Zero, err
	}
	return core.Sum(amounts...), nil
}

// MonthlyIncome groups income by YYYY-MM, oldest month first.
func (r *SQLiteRepository) MonthlyIncome(ctx context.Context) ([]core.MonthTotal, error) {
	rows, err := r.queries.IncomeAmountsByDate(ctx)
	if err != nil {
		return nil, &core.StorageError{Op: "monthly income", Err: err}
	}
	dates, amounts, err := decodeDatedAmounts("income", rows)
	if err != nil {
		return nil, err
	}
	return core.GroupByMonth(dates, amounts), nil
}

// MonthlyExpense groups expenses by YYYY-MM, oldest month first.
func (r *SQLiteRepository) MonthlyExpense(ctx context.Context) ([]core.MonthTotal, error) {
	rows, err := r.queries.ExpenseAmountsByDate(ctx)
	if err != nil {
		return nil, &core.StorageError{Op: "monthly expense", Err: err}
	}
	dates, amounts, err := decodeDatedAmounts("expense", rows)
	if err != nil {
		return nil, err
	}
	return core.GroupByMonth(dates, amounts), nil
}

// Totals returns both ledger totals in one call for the CLI.
func (r *SQLiteRepository) Totals(ctx context.Context) (core.Totals, error) {
	income, err := r.TotalIncome(ctx)
	if err != nil {
		return core.Totals{}, err
	}
	expense, err := r.TotalExpense(ctx)
	if err != nil {
		return core.Totals{}, err
	}
	return core.Totals{Income: income, Expense: expense}, nil
}

func decodeDatedAmounts(table string, rows []DatedAmountRow) ([]string, []core.Money, error) {
	dates := make([]string, 0, len(rows))
	amounts := make([]core.Money, 0, len(rows))
	for _, row := range rows {
		m, err := core.ParseMoney(row.Amount)
		if err != nil {
			return nil, nil, decodeError(table, row.ID, err)
		}
		dates = append(dates, row.Date)
		amounts = append(amounts, m)
	}
	return dates, amounts, nil
}
