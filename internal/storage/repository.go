package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pgledger/internal/core"
	applog "pgledger/internal/log"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const transactionRollbackError = "error rolling back transaction"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// Ensure interface conformance
var _ core.LedgerStore = (*SQLiteRepository)(nil)

// dsn enables foreign keys, waits on locks instead of failing, and makes every
// transaction take the write lock up front so check-and-insert sequences serialize.
func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations first, on their own connection
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer connection; the storage engine serializes conflicting writes.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InTx implements core.LedgerStore. fn's writes commit together or not at all.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(tx core.LedgerTx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &core.StorageError{Op: "begin", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(ctx, tx)
			panic(p)
		}
	}()

	if err := fn(&ledgerTx{q: r.queries.WithTx(tx)}); err != nil {
		rollback(ctx, tx)
		return err
	}

	if err := tx.Commit(); err != nil {
		rollback(ctx, tx)
		return &core.StorageError{Op: "commit", Err: err}
	}
	return nil
}

func rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.ErrorContext(ctx, transactionRollbackError,
			applog.FieldComponent, applog.ComponentStorage,
			applog.FieldError, err)
	}
}

// ClearIncome implements core.LedgerStore. It removes every posting.
func (r *SQLiteRepository) ClearIncome(ctx context.Context) (int64, error) {
	removed, err := r.queries.DeleteAllIncome(ctx)
	if err != nil {
		return 0, &core.StorageError{Op: "clear income", Err: err}
	}
	slog.WarnContext(ctx, "Income ledger cleared",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpClear,
		applog.FieldRemoved, removed)
	return removed, nil
}

// ledgerTx implements core.LedgerTx on top of a single *sql.Tx.
type ledgerTx struct {
	q *Queries
}

func (t *ledgerTx) InsertCustomer(ctx context.Context, c core.Customer) (int64, error) {
	id, err := t.q.CreateCustomer(ctx, CreateCustomerParams{
		Name:                  c.Name,
		JoiningDate:           c.JoiningDate.String(),
		SecurityDeposit:       c.Deposit.String(),
		SecurityDepositAmount: c.DepositAmount.String(),
		Food:                  c.Food,
		RegistrationFee:       c.RegistrationFee.String(),
	})
	if err != nil {
		return 0, &core.StorageError{Op: "insert customer", Err: err}
	}

	slog.InfoContext(ctx, "Customer saved to SQLite",
		"id", id,
		"name", c.Name,
		"joining_date", c.JoiningDate.String())

	return id, nil
}

func (t *ledgerTx) CustomerName(ctx context.Context, id int64) (string, error) {
	name, err := t.q.GetCustomerName(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrCustomerNotFound
	}
	if err != nil {
		return "", &core.StorageError{Op: "get customer name", Err: err}
	}
	return name, nil
}

func (t *ledgerTx) InsertFeePayment(ctx context.Context, p core.FeePayment) (int64, core.InsertOutcome, error) {
	id, err := t.q.CreatePaymentIfAbsent(ctx, CreatePaymentParams{
		CustomerID: p.CustomerID,
		Month:      p.Month.String(),
		Amount:     p.Amount.String(),
		PaidDate:   p.PaidDate.String(),
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		slog.WarnContext(ctx, "Fee payment already exists",
			"customer_id", p.CustomerID,
			"month", p.Month.String())
		return 0, core.InsertConflict, nil
	case isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE):
		return 0, core.InsertConflict, nil
	case isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY):
		return 0, core.InsertConflict, core.ErrCustomerNotFound
	case err != nil:
		return 0, core.InsertConflict, &core.StorageError{Op: "insert fee payment", Err: err}
	}

	slog.InfoContext(ctx, "Fee payment saved to SQLite",
		"id", id,
		"customer_id", p.CustomerID,
		"month", p.Month.String(),
		"amount", p.Amount.String())

	return id, core.InsertCreated, nil
}

func (t *ledgerTx) InsertPosting(ctx context.Context, p core.Posting) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	var ref sql.NullInt64
	if p.Origin.Kind.Derived() {
		ref = sql.NullInt64{Int64: p.Origin.Ref, Valid: true}
	}

	id, err := t.q.CreateIncome(ctx, CreateIncomeParams{
		Date:        p.Date.String(),
		Source:      p.Source,
		Amount:      p.Amount.String(),
		Description: p.Description,
		OriginKind:  string(p.Origin.Kind),
		OriginRef:   ref,
	})
	if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE) {
		return 0, fmt.Errorf("%w: %s", core.ErrDuplicatePosting, p.Origin)
	}
	if err != nil {
		return 0, &core.StorageError{Op: "insert posting", Err: err}
	}

	slog.InfoContext(ctx, "Income posting saved to SQLite",
		"id", id,
		"source", p.Source,
		"origin", p.Origin.String(),
		"amount", p.Amount.String(),
		"date", p.Date.String())

	return id, nil
}

func isConstraint(err error, code int) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == code
}

// ListCustomers returns every customer in creation order.
func (r *SQLiteRepository) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	rows, err := r.queries.ListCustomers(ctx)
	if err != nil {
		return nil, &core.StorageError{Op: "list customers", Err: err}
	}

	customers := make([]core.Customer, 0, len(rows))
	for _, row := range rows {
		c := core.Customer{
			ID:      row.ID,
			Name:    row.Name,
			Deposit: core.ParseDepositFlag(row.SecurityDeposit),
			Food:    row.Food,
		}
		if c.JoiningDate, err = core.ParseDate(row.JoiningDate); err != nil {
			return nil, decodeError("customer", row.ID, err)
		}
		if c.DepositAmount, err = core.ParseMoney(row.SecurityDepositAmount); err != nil {
			return nil, decodeError("customer", row.ID, err)
		}
		if c.RegistrationFee, err = core.ParseMoney(row.RegistrationFee); err != nil {
			return nil, decodeError("customer", row.ID, err)
		}
		customers = append(customers, c)
	}
	return customers, nil
}

// ListIncome returns every income posting in insertion order.
func (r *SQLiteRepository) ListIncome(ctx context.Context) ([]core.Posting, error) {
	rows, err := r.queries.ListIncome(ctx)
	if err != nil {
		return nil, &core.StorageError{Op: "list income", Err: err}
	}

	postings := make([]core.Posting, 0, len(rows))
	for _, row := range rows {
		p := core.Posting{
			ID:          row.ID,
			Source:      row.Source,
			Description: row.Description,
			Origin:      core.Origin{Kind: core.PostingKind(row.OriginKind), Ref: row.OriginRef.Int64},
		}
		if p.Date, err = core.ParseDate(row.Date); err != nil {
			return nil, decodeError("income", row.ID, err)
		}
		if p.Amount, err = core.ParseMoney(row.Amount); err != nil {
			return nil, decodeError("income", row.ID, err)
		}
		postings = append(postings, p)
	}
	return postings, nil
}

// ListFeePayments returns every fee payment in insertion order.
func (r *SQLiteRepository) ListFeePayments(ctx context.Context) ([]core.FeePayment, error) {
	rows, err := r.queries.ListPayments(ctx)
	if err != nil {
		return nil, &core.StorageError{Op: "list fee payments", Err: err}
	}

	payments := make([]core.FeePayment, 0, len(rows))
	for _, row := range rows {
		p := core.FeePayment{ID: row.ID, CustomerID: row.CustomerID}
		if p.Month, err = core.ParseMonth(row.Month); err != nil {
			return nil, decodeError("payment", row.ID, err)
		}
		if p.Amount, err = core.ParseMoney(row.Amount); err != nil {
			return nil, decodeError("payment", row.ID, err)
		}
		if p.PaidDate, err = core.ParseDate(row.PaidDate); err != nil {
			return nil, decodeError("payment", row.ID, err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}

// CreateExpense stores a single expense. Expenses never produce postings.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		Date:     e.Date.String(),
		Category: e.Category,
		Amount:   e.Amount.String(),
		Note:     e.Note,
	})
	if err != nil {
		return 0, &core.StorageError{Op: "insert expense", Err: err}
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"category", e.Category,
		"amount", e.Amount.String(),
		"date", e.Date.String())

	return id, nil
}

// ListExpenses returns expenses, optionally restricted to one month.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, month *core.Month) ([]core.Expense, error) {
	var (
		rows []ExpenseRow
		err  error
	)
	if month != nil {
		rows, err = r.queries.ListExpensesByMonth(ctx, month.String())
	} else {
		rows, err = r.queries.ListExpenses(ctx)
	}
	if err != nil {
		return nil, &core.StorageError{Op: "list expenses", Err: err}
	}

	expenses := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e := core.Expense{ID: row.ID, Category: row.Category, Note: row.Note}
		if e.Date, err = core.ParseDate(row.Date); err != nil {
			return nil, decodeError("expense", row.ID, err)
		}
		if e.Amount, err = core.ParseMoney(row.Amount); err != nil {
			return nil, decodeError("expense", row.ID, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

func decodeError(table string, id int64, err error) error {
	return &core.StorageError{Op: fmt.Sprintf("decode %s %d", table, id), Err: err}
}
