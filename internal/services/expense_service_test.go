package services

import (
	"context"
	"errors"
	"testing"

	"pgledger/internal/core"
)

type memExpenses struct {
	saved []core.Expense
	err   error
}

func (m *memExpenses) CreateExpense(_ context.Context, e core.Expense) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.saved = append(m.saved, e)
	return int64(len(m.saved)), nil
}

func (m *memExpenses) ListExpenses(_ context.Context, month *core.Month) ([]core.Expense, error) {
	var out []core.Expense
	for _, e := range m.saved {
		if month == nil || e.Date.MonthOf() == *month {
			out = append(out, e)
		}
	}
	return out, m.err
}

type closeCounter struct{ n int }

func (c *closeCounter) Close() error {
	c.n++
	return nil
}

func TestExpenseService_CreateExpense(t *testing.T) {
	store := &memExpenses{}
	service := NewExpenseService(store)

	id, err := service.CreateExpense(context.Background(), core.Expense{Date: core.NewDate(2024, 3, 2), Category: "Food", Amount: core.MustMoney("12.5")})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if id != 1 {
		t.Errorf("expected id 1, got %d", id)
	}

	if _, err := service.CreateExpense(context.Background(), core.Expense{Category: "Food"}); !core.IsValidation(err) {
		t.Errorf("expected validation error for missing date, got %v", err)
	}
	if len(store.saved) != 1 {
		t.Errorf("invalid expense must not be stored, got %d rows", len(store.saved))
	}
}

func TestExpenseService_StorageError(t *testing.T) {
	boom := errors.New("boom")
	service := NewExpenseService(&memExpenses{err: boom})
	_, err := service.CreateExpense(context.Background(), core.Expense{Date: core.NewDate(2024, 3, 2), Amount: core.MustMoney("1")})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}

func TestExpenseService_ListByMonth(t *testing.T) {
	store := &memExpenses{}
	service := NewExpenseService(store)
	for _, d := range []core.Date{core.NewDate(2024, 1, 5), core.NewDate(2024, 2, 5)} {
		if _, err := service.CreateExpense(context.Background(), core.Expense{Date: d, Amount: core.MustMoney("1")}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	feb, _ := core.ParseMonth("2024-02")
	got, err := service.ListExpenses(context.Background(), &feb)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected 1 February expense, got %d (%v)", len(got), err)
	}
}

func TestExpenseService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		service := NewExpenseService(nil, nil)
		if err := service.Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})

	t.Run("closes everything", func(t *testing.T) {
		a, b := &closeCounter{}, &closeCounter{}
		if err := NewExpenseService(nil, a, b).Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if a.n != 1 || b.n != 1 {
			t.Fatalf("expected each closer called once, got %d and %d", a.n, b.n)
		}
	})
}
