package services

import (
	"context"
	"fmt"
	"log/slog"

	"pgledger/internal/core"
)

// IncomeService is the only writer of the income ledger.
// Derived postings are created inside the caller's transaction; manual postings and
// clears open their own.
type IncomeService struct {
	store     core.LedgerStore
	publisher core.EventPublisher
}

// NewIncomeService wires the ledger store and an optional event publisher (nil disables events).
func NewIncomeService(store core.LedgerStore, publisher core.EventPublisher) *IncomeService {
	return &IncomeService{
		store:     store,
		publisher: publisher,
	}
}

// PostFromOnboarding creates the deposit and registration fee postings for a freshly
// inserted customer. A zero amount produces no posting.
func (s *IncomeService) PostFromOnboarding(ctx context.Context, tx core.LedgerTx, c core.Customer) ([]core.Posting, error) {
	if c.ID <= 0 {
		return nil, fmt.Errorf("post onboarding income: %w", core.ErrPostingUntraceable)
	}

	var candidates []core.Posting
	if bool(c.Deposit) && c.DepositAmount.IsPositive() {
		candidates = append(candidates, core.DepositPosting(c))
	}
	if c.RegistrationFee.IsPositive() {
		candidates = append(candidates, core.RegistrationPosting(c))
	}

	postings := make([]core.Posting, 0, len(candidates))
	for _, p := range candidates {
		id, err := tx.InsertPosting(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", p.Origin, err)
		}
		p.ID = id
		postings = append(postings, p)
	}
	return postings, nil
}

// PostFromFeePayment creates the monthly fee posting for a payment inserted in the same transaction.
func (s *IncomeService) PostFromFeePayment(ctx context.Context, tx core.LedgerTx, payment core.FeePayment, customerName string) (core.Posting, error) {
	if payment.ID <= 0 {
		return core.Posting{}, fmt.Errorf("post monthly fee: %w", core.ErrPostingUntraceable)
	}

	p := core.MonthlyFeePosting(payment, customerName)
	id, err := tx.InsertPosting(ctx, p)
	if err != nil {
		return core.Posting{}, fmt.Errorf("post %s: %w", p.Origin, err)
	}
	p.ID = id
	return p, nil
}

// PostManual records a directly entered income. Manual entries are never deduplicated.
func (s *IncomeService) PostManual(ctx context.Context, m core.ManualIncome) (core.Posting, error) {
	if err := m.Validate(); err != nil {
		return core.Posting{}, err
	}

	p := core.ManualPosting(m)
	err := s.store.InTx(ctx, func(tx core.LedgerTx) error {
		id, err := tx.InsertPosting(ctx, p)
		if err != nil {
			return err
		}
		p.ID = id
		return nil
	})
	if err != nil {
		return core.Posting{}, fmt.Errorf("save manual income: %w", err)
	}

	s.Announce(ctx, p)
	return p, nil
}

// ClearAll deletes every posting, derived or manual. There is no undo.
func (s *IncomeService) ClearAll(ctx context.Context) (int64, error) {
	removed, err := s.store.ClearIncome(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear income: %w", err)
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping clear message")
		return removed, nil
	}
	if err := s.publisher.PublishCleared(ctx, removed); err != nil {
		slog.ErrorContext(ctx, "Failed to publish clear message",
			"removed", removed, "error", err)
		// Don't fail the request - the ledger is already cleared
	}
	return removed, nil
}

// Announce publishes committed postings. Publish failures are logged only.
func (s *IncomeService) Announce(ctx context.Context, postings ...core.Posting) {
	if len(postings) == 0 {
		return
	}
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping posting messages", "count", len(postings))
		return
	}
	for _, p := range postings {
		if err := s.publisher.PublishPosting(ctx, p); err != nil {
			slog.ErrorContext(ctx, "Failed to publish posting message",
				"id", p.ID, "origin", p.Origin.String(), "error", err)
		}
	}
}
