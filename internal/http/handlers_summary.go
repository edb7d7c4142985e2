package http

import (
	"context"
	"net/http"

	"pgledger/internal/core"
	applog "pgledger/internal/log"
)

const (
	keyIncome  = "income"
	keyExpense = "expense"
)

func (s *Server) total(ctx context.Context, key string) (core.Money, error) {
	return s.totals.Get(ctx, key, func(ctx context.Context) (core.Money, error) {
		ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
		defer cancel()
		if key == keyIncome {
			return s.deps.Ledger.TotalIncome(ctx)
		}
		return s.deps.Ledger.TotalExpense(ctx)
	})
}

func (s *Server) byMonth(ctx context.Context, key string) ([]core.MonthTotal, error) {
	return s.monthly.Get(ctx, key, func(ctx context.Context) ([]core.MonthTotal, error) {
		ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
		defer cancel()
		if key == keyIncome {
			return s.deps.Ledger.MonthlyIncome(ctx)
		}
		return s.deps.Ledger.MonthlyExpense(ctx)
	})
}

func summaryFailure(ctx context.Context, err error) *Response {
	applog.FromContext(ctx).ErrorContext(ctx, "Summary failed",
		applog.FieldOperation, applog.OpSummarize,
		applog.FieldError, err)
	return JSONError(http.StatusInternalServerError, "summary unavailable")
}

func (s *Server) handleTotalIncome(w http.ResponseWriter, r *http.Request) {
	total, err := s.total(r.Context(), keyIncome)
	if err != nil {
		summaryFailure(r.Context(), err).Write(w)
		return
	}
	JSON(http.StatusOK, struct {
		TotalIncome core.Money `json:"totalIncome"`
	}{total}).Write(w)
}

func (s *Server) handleTotalExpense(w http.ResponseWriter, r *http.Request) {
	total, err := s.total(r.Context(), keyExpense)
	if err != nil {
		summaryFailure(r.Context(), err).Write(w)
		return
	}
	JSON(http.StatusOK, struct {
		TotalExpense core.Money `json:"totalExpense"`
	}{total}).Write(w)
}

type monthlyIncomeRow struct {
	Month       string     `json:"month"`
	TotalIncome core.Money `json:"totalIncome"`
}

type monthlyExpenseRow struct {
	Month        string     `json:"month"`
	TotalExpense core.Money `json:"totalExpense"`
}

func (s *Server) handleMonthlyIncome(w http.ResponseWriter, r *http.Request) {
	months, err := s.byMonth(r.Context(), keyIncome)
	if err != nil {
		summaryFailure(r.Context(), err).Write(w)
		return
	}
	rows := make([]monthlyIncomeRow, 0, len(months))
	for _, m := range months {
		rows = append(rows, monthlyIncomeRow{Month: m.Month, TotalIncome: m.Total})
	}
	JSON(http.StatusOK, rows).Write(w)
}

func (s *Server) handleMonthlyExpense(w http.ResponseWriter, r *http.Request) {
	months, err := s.byMonth(r.Context(), keyExpense)
	if err != nil {
		summaryFailure(r.Context(), err).Write(w)
		return
	}
	rows := make([]monthlyExpenseRow, 0, len(months))
	for _, m := range months {
		rows = append(rows, monthlyExpenseRow{Month: m.Month, TotalExpense: m.Total})
	}
	JSON(http.StatusOK, rows).Write(w)
}
