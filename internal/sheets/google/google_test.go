package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"pgledger/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type recordedCall struct {
	method string
	path   string
	body   string
}

// fakeSheets serves the handful of values endpoints the mirror uses.
func fakeSheets(t *testing.T, getValues [][]any) (*Client, *[]recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recordedCall{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, ":append"):
			io.WriteString(w, `{"updates":{"updatedRange":"Income!A2:F2"}}`)
		case strings.HasSuffix(r.URL.Path, ":clear"):
			io.WriteString(w, `{}`)
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]any{"values": getValues})
		default:
			io.WriteString(w, `{}`)
		}
	}))
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return newWithService(svc, "sheet-id", ""), &calls
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Options{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "x", ServiceAccountFile: "/does/not/exist.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected file error, got %v", err)
	}
}

func TestAppendPosting(t *testing.T) {
	c, calls := fakeSheets(t, nil)
	p := core.Posting{
		ID:          5,
		Date:        core.NewDate(2024, 2, 1),
		Source:      core.SourceMonthlyFee,
		Amount:      core.MustMoney("1234.5678"),
		Description: "Monthly fee from Asha (2024-02)",
		Origin:      core.Origin{Kind: core.KindMonthlyFee, Ref: 2},
	}

	ref, err := c.AppendPosting(context.Background(), p)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "Income!A2:F2" {
		t.Errorf("unexpected ref %q", ref)
	}
	if len(*calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(*calls))
	}
	call := (*calls)[0]
	if !strings.Contains(call.path, "/values/Income!A:F:append") {
		t.Errorf("unexpected path %s", call.path)
	}
	if !strings.Contains(call.body, `"1234.5678"`) || !strings.Contains(call.body, `"monthly_fee"`) {
		t.Errorf("unexpected body %s", call.body)
	}
}

func TestAppendPosting_InvalidPosting(t *testing.T) {
	c, calls := fakeSheets(t, nil)
	_, err := c.AppendPosting(context.Background(), core.Posting{Source: core.SourceMonthlyFee})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(*calls) != 0 {
		t.Errorf("invalid posting must not reach the API, got %d calls", len(*calls))
	}
}

func TestClearKeepsHeader(t *testing.T) {
	c, calls := fakeSheets(t, nil)
	if err := c.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(*calls) != 1 || !strings.Contains((*calls)[0].path, "Income!A2:F:clear") {
		t.Fatalf("unexpected calls %+v", *calls)
	}
}

func TestMirroredIDs(t *testing.T) {
	c, _ := fakeSheets(t, [][]any{
		{"Date", "Source", "Amount", "Description", "Kind", "ID"},
		{"2024-01-10", "Registration Fee", "500", "", "registration_fee", "2"},
	})
	ids, err := c.MirroredIDs(context.Background())
	if err != nil {
		t.Fatalf("mirrored ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestReplaceAll(t *testing.T) {
	c, calls := fakeSheets(t, nil)
	postings := []core.Posting{
		{ID: 1, Date: core.NewDate(2024, 1, 1), Source: "Misc", Amount: core.MustMoney("1"), Origin: core.Origin{Kind: core.KindManual}},
		{ID: 2, Date: core.NewDate(2024, 1, 2), Source: "Misc", Amount: core.MustMoney("2"), Origin: core.Origin{Kind: core.KindManual}},
	}
	if err := c.ReplaceAll(context.Background(), postings); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(*calls) != 2 {
		t.Fatalf("expected clear + append, got %d calls", len(*calls))
	}
	if !strings.HasSuffix((*calls)[0].path, ":clear") || !strings.HasSuffix((*calls)[1].path, ":append") {
		t.Fatalf("unexpected call order %+v", *calls)
	}
}

func TestNilService(t *testing.T) {
	c := &Client{sheetName: "Income"}
	if err := c.Clear(context.Background()); err == nil {
		t.Error("expected error with nil service")
	}
	if _, err := c.MirroredIDs(context.Background()); err == nil {
		t.Error("expected error with nil service")
	}
}
