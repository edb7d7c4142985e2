package http

import (
	"net/http"

	"pgledger/internal/core"
	applog "pgledger/internal/log"
	"pgledger/internal/services"
)

const (
	msgCustomerSaved  = "Customer saved & income recorded ✅"
	msgDatabaseError  = "Database error ❌"
	msgFeeRecorded    = "Monthly fee recorded ✅"
	msgFeeAlreadyPaid = "Fee already paid for this month ❌"
	msgFeeError       = "Error recording monthly fee ❌"
	msgIncomeSaved    = "Income saved ✅"
	msgIncomeError    = "Error saving income"
	msgIncomeCleaned  = "Income table cleaned"
)

func (s *Server) handleOnboard(w http.ResponseWriter, r *http.Request) {
	p, bad := parseBody(w, r)
	if bad != nil {
		bad.Write(w)
		return
	}

	customer, postings, err := s.deps.Onboarding.Onboard(r.Context(), p.OnboardingRequest())
	if err != nil {
		failure(r.Context(), err, msgDatabaseError).Write(w)
		return
	}
	if len(postings) > 0 {
		s.invalidateSummaries()
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Customer onboarded",
		applog.FieldCustomerID, customer.ID,
		"postings", len(postings))
	Text(http.StatusOK, msgCustomerSaved).Write(w)
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.deps.Ledger.ListCustomers(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "List customers failed",
			applog.FieldOperation, applog.OpList,
			applog.FieldError, err)
		JSONError(http.StatusInternalServerError, err.Error()).Write(w)
		return
	}
	JSON(http.StatusOK, customers).Write(w)
}

// handleFeePayment answers a duplicate with 200: it is an expected outcome, not a failure.
func (s *Server) handleFeePayment(w http.ResponseWriter, r *http.Request) {
	p, bad := parseBody(w, r)
	if bad != nil {
		bad.Write(w)
		return
	}

	outcome, err := s.deps.Fees.RecordPayment(r.Context(), p.FeePaymentRequest())
	if err != nil {
		failure(r.Context(), err, msgFeeError).Write(w)
		return
	}

	if outcome.Status == core.FeeAlreadyPaid {
		Text(http.StatusOK, msgFeeAlreadyPaid).Write(w)
		return
	}
	s.invalidateSummaries()
	Text(http.StatusOK, msgFeeRecorded).Write(w)
}

type feeDueRow struct {
	CustomerID int64      `json:"customer_id"`
	Name       string     `json:"name"`
	Month      core.Month `json:"month"`
}

// handleFeeDues lists customers with no payment for ?month= (default: current month).
func (s *Server) handleFeeDues(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r)
	if err != nil {
		failure(r.Context(), err, msgDatabaseError).Write(w)
		return
	}
	if month == nil {
		current := core.Today().MonthOf()
		month = &current
	}

	dues, err := services.OutstandingFees(r.Context(), s.deps.Ledger, *month)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Fee dues failed", applog.FieldError, err)
		JSONError(http.StatusInternalServerError, msgDatabaseError).Write(w)
		return
	}

	rows := make([]feeDueRow, 0, len(dues))
	for _, d := range dues {
		rows = append(rows, feeDueRow{CustomerID: d.Customer.ID, Name: d.Customer.Name, Month: d.Month})
	}
	JSON(http.StatusOK, rows).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	p, bad := parseBody(w, r)
	if bad != nil {
		bad.Write(w)
		return
	}

	entry, err := p.ManualIncome()
	if err != nil {
		failure(r.Context(), err, msgIncomeError).Write(w)
		return
	}
	if _, err := s.deps.Income.PostManual(r.Context(), entry); err != nil {
		failure(r.Context(), err, msgIncomeError).Write(w)
		return
	}
	s.invalidateSummaries()
	Text(http.StatusOK, msgIncomeSaved).Write(w)
}

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	postings, err := s.deps.Ledger.ListIncome(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "List income failed",
			applog.FieldOperation, applog.OpList,
			applog.FieldError, err)
		JSONError(http.StatusInternalServerError, err.Error()).Write(w)
		return
	}
	JSON(http.StatusOK, postings).Write(w)
}

// handleClearIncome wipes every posting. It stays on GET for compatibility with existing clients.
func (s *Server) handleClearIncome(w http.ResponseWriter, r *http.Request) {
	removed, err := s.deps.Income.ClearAll(r.Context())
	if err != nil {
		failure(r.Context(), err, "Error cleaning income table").Write(w)
		return
	}
	s.invalidateSummaries()
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Income table cleaned via HTTP",
		applog.FieldOperation, applog.OpClear,
		applog.FieldRemoved, removed)
	Text(http.StatusOK, msgIncomeCleaned).Write(w)
}
