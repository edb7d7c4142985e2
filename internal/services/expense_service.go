package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"pgledger/internal/core"
	applog "pgledger/internal/log"
)

// ExpenseStore is the storage needed for expenses. Expenses never touch the income ledger.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	ListExpenses(ctx context.Context, month *core.Month) ([]core.Expense, error)
}

// ExpenseService records expenses and owns the lifetime of the shared storage handle.
type ExpenseService struct {
	storage ExpenseStore
	closers []io.Closer
}

// NewExpenseService builds the service; closers are released by Close in order.
func NewExpenseService(storage ExpenseStore, closers ...io.Closer) *ExpenseService {
	return &ExpenseService{
		storage: storage,
		closers: closers,
	}
}

// CreateExpense validates and saves an expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	id, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense recorded",
		applog.FieldComponent, applog.ComponentExpense,
		applog.FieldOperation, applog.OpCreate,
		"expense_id", id,
		applog.FieldDate, e.Date.String(),
		applog.FieldAmount, e.Amount.String())
	return id, nil
}

// ListExpenses returns all expenses, or only those of month when it is non-nil.
func (s *ExpenseService) ListExpenses(ctx context.Context, month *core.Month) ([]core.Expense, error) {
	expenses, err := s.storage.ListExpenses(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// Close closes storage and AMQP connections
func (s *ExpenseService) Close() error {
	var errs []error
	for _, c := range s.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
