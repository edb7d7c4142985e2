package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"pgledger/internal/core"
	"pgledger/internal/services"
	"pgledger/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seed(t *testing.T, dbPath string) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	income := services.NewIncomeService(repo, nil)
	if _, _, err := services.NewOnboardingService(repo, income).Onboard(ctx, core.OnboardingRequest{
		Name:            "Asha",
		JoiningDate:     "2024-01-15",
		SecurityDeposit: "Yes",
		DepositAmount:   "5000",
		RegistrationFee: "1000",
	}); err != nil {
		t.Fatalf("onboard: %v", err)
	}
	if _, err := repo.CreateExpense(ctx, core.Expense{Date: core.NewDate(2024, 2, 3), Category: "Power", Amount: core.MustMoney("1200.25")}); err != nil {
		t.Fatalf("expense: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")
	out, err := run(t, "--db", db, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "schema version 1") {
		t.Errorf("output = %q", out)
	}
}

func TestSummary(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")
	seed(t, db)

	out, err := run(t, "--db", db, "summary")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"income   6000", "expense  1200.25", "net      4799.75"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output %q missing %q", out, want)
		}
	}

	out, err = run(t, "--db", db, "summary", "--monthly", "--json")
	if err != nil {
		t.Fatalf("summary --monthly: %v", err)
	}
	if !strings.Contains(out, `"month": "2024-01"`) || !strings.Contains(out, `"totalExpense": 1200.25`) {
		t.Errorf("monthly output = %q", out)
	}
}

func TestIncomeClearRequiresConfirmation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")
	seed(t, db)

	if _, err := run(t, "--db", db, "income", "clear"); err == nil {
		t.Fatal("clear without --yes should fail")
	}

	out, err := run(t, "--db", db, "income", "clear", "--yes")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !strings.Contains(out, "removed 2 income postings") {
		t.Errorf("output = %q", out)
	}
}

func TestDues(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")
	seed(t, db)

	out, err := run(t, "--db", db, "dues", "--month", "2024-03")
	if err != nil {
		t.Fatalf("dues: %v", err)
	}
	if !strings.Contains(out, "Asha") {
		t.Errorf("dues output = %q", out)
	}

	out, err = run(t, "--db", db, "dues", "--month", "2023-12")
	if err != nil {
		t.Fatalf("dues before joining: %v", err)
	}
	if strings.Contains(out, "Asha") {
		t.Errorf("customer listed before joining: %q", out)
	}

	if _, err := run(t, "--db", db, "dues", "--month", "March"); err == nil {
		t.Error("bad month should fail")
	}
}

func TestMergeMonths(t *testing.T) {
	income := []core.MonthTotal{{Month: "2024-01", Total: core.MustMoney("10")}, {Month: "2024-03", Total: core.MustMoney("30")}}
	expense := []core.MonthTotal{{Month: "2024-02", Total: core.MustMoney("5")}, {Month: "2024-03", Total: core.MustMoney("7")}}

	rows := mergeMonths(income, expense)
	if len(rows) != 3 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[1].Month != "2024-02" || !rows[1].Income.IsZero() || rows[1].Expense.String() != "5" {
		t.Errorf("row 2024-02 = %+v", rows[1])
	}
	if rows[2].Income.String() != "30" || rows[2].Expense.String() != "7" {
		t.Errorf("row 2024-03 = %+v", rows[2])
	}
}
