package http

import (
	"net/http"

	applog "pgledger/internal/log"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p, bad := parseBody(w, r)
	if bad != nil {
		bad.Write(w)
		return
	}

	expense, err := p.Expense()
	if err != nil {
		failure(r.Context(), err, "Error saving expense").Write(w)
		return
	}
	if _, err := s.deps.Expenses.CreateExpense(r.Context(), expense); err != nil {
		failure(r.Context(), err, "Error saving expense").Write(w)
		return
	}
	s.invalidateSummaries()
	Text(http.StatusOK, "Expense saved").Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r)
	if err != nil {
		failure(r.Context(), err, "Error listing expenses").Write(w)
		return
	}

	expenses, err := s.deps.Expenses.ListExpenses(r.Context(), month)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "List expenses failed",
			applog.FieldOperation, applog.OpList,
			applog.FieldError, err)
		Text(http.StatusInternalServerError, "Error listing expenses").Write(w)
		return
	}
	JSON(http.StatusOK, expenses).Write(w)
}
