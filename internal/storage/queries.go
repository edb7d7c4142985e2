package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Row types mirror the tables; amounts stay canonical decimal strings.
type (
	CustomerRow struct {
		ID                    int64
		Name                  string
		JoiningDate           string
		SecurityDeposit       string
		SecurityDepositAmount string
		Food                  string
		RegistrationFee       string
	}

	ExpenseRow struct {
		ID       int64
		Date     string
		Category string
		Amount   string
		Note     string
	}

	IncomeRow struct {
		ID          int64
		Date        string
		Source      string
		Amount      string
		Description string
		OriginKind  string
		OriginRef   sql.NullInt64
	}

	PaymentRow struct {
		ID         int64
		CustomerID int64
		Month      string
		Amount     string
		PaidDate   string
	}

	DatedAmountRow struct {
		ID     int64
		Date   string
		Amount string
	}
)

const createCustomer = `INSERT INTO customers
    (name, joining_date, security_deposit, security_deposit_amount, food, registration_fee)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`

type CreateCustomerParams struct {
	Name                  string
	JoiningDate           string
	SecurityDeposit       string
	SecurityDepositAmount string
	Food                  string
	RegistrationFee       string
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createCustomer,
		arg.Name,
		arg.JoiningDate,
		arg.SecurityDeposit,
		arg.SecurityDepositAmount,
		arg.Food,
		arg.RegistrationFee,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getCustomerName = `SELECT name FROM customers WHERE id = ?`

func (q *Queries) GetCustomerName(ctx context.Context, id int64) (string, error) {
	row := q.db.QueryRowContext(ctx, getCustomerName, id)
	var name string
	err := row.Scan(&name)
	return name, err
}

const listCustomers = `SELECT id, name, joining_date, security_deposit, security_deposit_amount, food, registration_fee
FROM customers
ORDER BY id`

func (q *Queries) ListCustomers(ctx context.Context) ([]CustomerRow, error) {
	rows, err := q.db.QueryContext(ctx, listCustomers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CustomerRow
	for rows.Next() {
		var i CustomerRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.JoiningDate,
			&i.SecurityDeposit,
			&i.SecurityDepositAmount,
			&i.Food,
			&i.RegistrationFee,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createPaymentIfAbsent = `INSERT INTO payments (customer_id, month, amount, paid_date)
VALUES (?, ?, ?, ?)
ON CONFLICT (customer_id, month) DO NOTHING
RETURNING id`

type CreatePaymentParams struct {
	CustomerID int64
	Month      string
	Amount     string
	PaidDate   string
}

// CreatePaymentIfAbsent returns sql.ErrNoRows when the (customer_id, month) pair already exists.
func (q *Queries) CreatePaymentIfAbsent(ctx context.Context, arg CreatePaymentParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createPaymentIfAbsent,
		arg.CustomerID,
		arg.Month,
		arg.Amount,
		arg.PaidDate,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listPayments = `SELECT id, customer_id, month, amount, paid_date
FROM payments
ORDER BY id`

func (q *Queries) ListPayments(ctx context.Context) ([]PaymentRow, error) {
	rows, err := q.db.QueryContext(ctx, listPayments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PaymentRow
	for rows.Next() {
		var i PaymentRow
		if err := rows.Scan(&i.ID, &i.CustomerID, &i.Month, &i.Amount, &i.PaidDate); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createIncome = `INSERT INTO income (date, source, amount, description, origin_kind, origin_ref)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`

type CreateIncomeParams struct {
	Date        string
	Source      string
	Amount      string
	Description string
	OriginKind  string
	OriginRef   sql.NullInt64
}

func (q *Queries) CreateIncome(ctx context.Context, arg CreateIncomeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createIncome,
		arg.Date,
		arg.Source,
		arg.Amount,
		arg.Description,
		arg.OriginKind,
		arg.OriginRef,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listIncome = `SELECT id, date, source, amount, description, origin_kind, origin_ref
FROM income
ORDER BY id`

func (q *Queries) ListIncome(ctx context.Context) ([]IncomeRow, error) {
	rows, err := q.db.QueryContext(ctx, listIncome)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []IncomeRow
	for rows.Next() {
		var i IncomeRow
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.Source,
			&i.Amount,
			&i.Description,
			&i.OriginKind,
			&i.OriginRef,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteAllIncome = `DELETE FROM income`

func (q *Queries) DeleteAllIncome(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllIncome)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createExpense = `INSERT INTO expense (date, category, amount, note)
VALUES (?, ?, ?, ?)
RETURNING id`

type CreateExpenseParams struct {
	Date     string
	Category string
	Amount   string
	Note     string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createExpense, arg.Date, arg.Category, arg.Amount, arg.Note)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listExpenses = `SELECT id, date, category, amount, note
FROM expense
ORDER BY date, id`

const listExpensesByMonth = `SELECT id, date, category, amount, note
FROM expense
WHERE substr(date, 1, 7) = ?
ORDER BY date, id`

func (q *Queries) ListExpenses(ctx context.Context) ([]ExpenseRow, error) {
	return q.scanExpenses(q.db.QueryContext(ctx, listExpenses))
}

func (q *Queries) ListExpensesByMonth(ctx context.Context, month string) ([]ExpenseRow, error) {
	return q.scanExpenses(q.db.QueryContext(ctx, listExpensesByMonth, month))
}

func (q *Queries) scanExpenses(rows *sql.Rows, err error) ([]ExpenseRow, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		var i ExpenseRow
		if err := rows.Scan(&i.ID, &i.Date, &i.Category, &i.Amount, &i.Note); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const incomeAmountsByDate = `SELECT id, date, amount FROM income ORDER BY date, id`

const expenseAmountsByDate = `SELECT id, date, amount FROM expense ORDER BY date, id`

func (q *Queries) IncomeAmountsByDate(ctx context.Context) ([]DatedAmountRow, error) {
	return q.scanDatedAmounts(q.db.QueryContext(ctx, incomeAmountsByDate))
}

func (q *Queries) ExpenseAmountsByDate(ctx context.Context) ([]DatedAmountRow, error) {
	return q.scanDatedAmounts(q.db.QueryContext(ctx, expenseAmountsByDate))
}

func (q *Queries) scanDatedAmounts(rows *sql.Rows, err error) ([]DatedAmountRow, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DatedAmountRow
	for rows.Next() {
		var i DatedAmountRow
		if err := rows.Scan(&i.ID, &i.Date, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
