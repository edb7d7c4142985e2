package services

import (
	"context"
	"fmt"
	"log/slog"

	"pgledger/internal/core"
	applog "pgledger/internal/log"
)

// OnboardingService registers customers together with their onboarding income.
type OnboardingService struct {
	store  core.LedgerStore
	income *IncomeService
}

func NewOnboardingService(store core.LedgerStore, income *IncomeService) *OnboardingService {
	return &OnboardingService{store: store, income: income}
}

// Onboard inserts the customer and its derived postings as one unit.
// If any posting fails the customer row is rolled back too.
func (s *OnboardingService) Onboard(ctx context.Context, req core.OnboardingRequest) (core.Customer, []core.Posting, error) {
	c, err := req.Resolve()
	if err != nil {
		return core.Customer{}, nil, err
	}

	var postings []core.Posting
	err = s.store.InTx(ctx, func(tx core.LedgerTx) error {
		id, err := tx.InsertCustomer(ctx, c)
		if err != nil {
			return err
		}
		c.ID = id

		postings, err = s.income.PostFromOnboarding(ctx, tx, c)
		return err
	})
	if err != nil {
		return core.Customer{}, nil, fmt.Errorf("onboard customer: %w", err)
	}

	slog.InfoContext(ctx, "Customer onboarded",
		applog.FieldComponent, applog.ComponentOnboard,
		applog.FieldCustomerID, c.ID,
		applog.FieldDate, c.JoiningDate.String(),
		"postings", len(postings))

	s.income.Announce(ctx, postings...)
	return c, postings, nil
}
