package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"pgledger/internal/amqp"
	"pgledger/internal/core"
	"pgledger/internal/sheets/memory"
)

type staticLedger struct {
	postings []core.Posting
	err      error
}

func (l *staticLedger) ListIncome(context.Context) ([]core.Posting, error) {
	return l.postings, l.err
}

func samplePosting(id int64) core.Posting {
	return core.Posting{
		ID:          id,
		Date:        core.NewDate(2024, 2, 1),
		Source:      core.SourceMonthlyFee,
		Amount:      core.MustMoney("3000"),
		Description: "Monthly fee from Asha (2024-02)",
		Origin:      core.Origin{Kind: core.KindMonthlyFee, Ref: id},
	}
}

func TestHandleEvent_PostedThenCleared(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(&staticLedger{}, mirror, mirror)
	ctx := context.Background()

	if err := w.HandleEvent(ctx, amqp.NewPostedEvent(samplePosting(1))); err != nil {
		t.Fatalf("posted: %v", err)
	}
	if rows := mirror.Rows(); len(rows) != 1 {
		t.Fatalf("expected 1 mirrored row, got %d", len(rows))
	}

	if err := w.HandleEvent(ctx, amqp.NewClearedEvent(1)); err != nil {
		t.Fatalf("cleared: %v", err)
	}
	if rows := mirror.Rows(); len(rows) != 0 {
		t.Fatalf("expected empty mirror, got %d", len(rows))
	}
}

func TestHandleEvent_Unknown(t *testing.T) {
	w := NewMirrorWorker(&staticLedger{}, memory.New(), nil)
	if err := w.HandleEvent(context.Background(), &amqp.LedgerEvent{Type: "expense.synced"}); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestReconcile(t *testing.T) {
	mirror := memory.New()
	ledger := &staticLedger{postings: []core.Posting{samplePosting(1), samplePosting(2)}}
	w := NewMirrorWorker(ledger, mirror, mirror)
	ctx := context.Background()

	// Mirror missed event 2 and saw event 1 twice.
	mirror.AppendPosting(ctx, samplePosting(1))
	mirror.AppendPosting(ctx, samplePosting(1))

	rebuilt, err := w.Reconcile(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !rebuilt {
		t.Fatal("expected a rebuild")
	}
	ids, _ := mirror.MirroredIDs(ctx)
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("unexpected mirror ids %v", ids)
	}

	rebuilt, err = w.Reconcile(ctx)
	if err != nil || rebuilt {
		t.Fatalf("second reconcile should be a no-op, got rebuilt=%v err=%v", rebuilt, err)
	}
}

func TestReconcile_LedgerError(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(&staticLedger{err: errors.New("db down")}, mirror, mirror)
	if _, err := w.Reconcile(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunReconciler_StopsOnCancel(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(&staticLedger{postings: []core.Posting{samplePosting(7)}}, mirror, mirror)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunReconciler(ctx, 10*time.Millisecond) }()

	deadline := time.After(2 * time.Second)
	for {
		ids, _ := mirror.MirroredIDs(context.Background())
		if len(ids) == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("reconciler never rebuilt the mirror")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reconciler did not stop")
	}
}
