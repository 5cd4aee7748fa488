package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets serves the handful of Sheets endpoints the client uses.
type fakeSheets struct {
	mu   sync.Mutex
	tabs map[string][][]string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		rng := req.Requests[0].DeleteDimension.Range
		rows := f.tabs["2025 Transactions"]
		f.tabs["2025 Transactions"] = append(rows[:rng.StartIndex], rows[rng.EndIndex:]...)
		_, _ = w.Write([]byte(`{}`))
	case strings.Contains(path, "/values/"):
		rng := path[strings.Index(path, "/values/")+len("/values/"):]
		sheet, a1, _ := strings.Cut(rng, "!")
		rows := f.tabs[sheet]
		if r.Method == http.MethodPut {
			var vr gsheet.ValueRange
			_ = json.NewDecoder(r.Body).Decode(&vr)
			start := strings.TrimPrefix(strings.Split(a1, ":")[0], "A")
			n, _ := strconv.Atoi(start)
			for len(rows) < n {
				rows = append(rows, nil)
			}
			rows[n-1] = toStrings(vr.Values[0])
			f.tabs[sheet] = rows
			_, _ = w.Write([]byte(`{}`))
			return
		}
		var values [][]string
		for _, row := range rows {
			if a1 == "A:A" {
				values = append(values, row[:1])
			} else {
				values = append(values, row)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": values})
	default:
		_, _ = w.Write([]byte(`{"sheets":[{"properties":{"sheetId":0,"title":"2025 Transactions"}}]}`))
	}
}

func newTestClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{tabs: map[string][][]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return New(svc, "sheet-id", ""), fake
}

func sampleTx(id, desc string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Amount:      decimal.RequireFromString("42.5"),
		Type:        core.Expense,
		Category:    core.CategoryBazar,
		Description: desc,
		Date:        time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		AccountID:   core.Cash,
	}
}

func TestUpsertAppendsThenReplaces(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)

	ref, err := c.Upsert(ctx, sampleTx("a", "rice"))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if ref != "2025 Transactions!A2:H2" {
		t.Fatalf("unexpected ref %q", ref)
	}
	if _, err := c.Upsert(ctx, sampleTx("b", "oil")); err != nil {
		t.Fatalf("upsert b: %v", err)
	}
	ref, err = c.Upsert(ctx, sampleTx("a", "basmati rice"))
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if ref != "2025 Transactions!A2:H2" {
		t.Fatalf("expected in-place update, got %q", ref)
	}

	rows := fake.tabs["2025 Transactions"]
	if len(rows) != 3 || rows[0][0] != "ID" {
		t.Fatalf("unexpected rows %v", rows)
	}

	txs, err := c.ListTransactions(ctx, 2025)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 || txs[0].Description != "basmati rice" || !txs[0].Amount.Equal(decimal.RequireFromString("42.5")) {
		t.Fatalf("unexpected list %+v", txs)
	}
}

func TestDeleteRemovesRow(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)
	for _, id := range []string{"a", "b"} {
		if _, err := c.Upsert(ctx, sampleTx(id, id)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := c.Delete(ctx, "a", date); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows := fake.tabs["2025 Transactions"]
	if len(rows) != 2 || rows[1][0] != "b" {
		t.Fatalf("unexpected rows after delete %v", rows)
	}
	if err := c.Delete(ctx, "missing", date); err != nil {
		t.Fatalf("deleting a missing row should succeed, got %v", err)
	}
}

func TestNilServiceFails(t *testing.T) {
	c := &Client{spreadsheetID: "x", sheetBase: "Transactions", now: time.Now}
	if _, err := c.Upsert(context.Background(), sampleTx("a", "x")); err == nil {
		t.Fatal("expected error with nil service")
	}
	if err := c.Delete(context.Background(), "a", time.Time{}); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	old := os.Getenv("GOOGLE_SPREADSHEET_ID")
	defer os.Setenv("GOOGLE_SPREADSHEET_ID", old)
	os.Unsetenv("GOOGLE_SPREADSHEET_ID")

	_, err := NewFromEnv(context.Background())
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestYearPrefixedName(t *testing.T) {
	cases := map[string]string{
		"Transactions":      "2025 Transactions",
		"2024 Transactions": "2024 Transactions",
		" Ledger ":          "2025 Ledger",
		"":                  "",
	}
	for in, want := range cases {
		if got := yearPrefixedName(in, 2025); got != want {
			t.Errorf("yearPrefixedName(%q) = %q want %q", in, got, want)
		}
	}
}

func TestRowRoundTrip(t *testing.T) {
	tx := sampleTx("t1", "transfer")
	tx.Type = core.Transfer
	tx.TargetAccountID = core.Savings
	back, ok := decodeRow(toStrings(encodeRow(tx)))
	if !ok {
		t.Fatal("expected row to decode")
	}
	if back.ID != "t1" || back.TargetAccountID != core.Savings || !back.Date.Equal(tx.Date) {
		t.Fatalf("unexpected row %+v", back)
	}
	if _, ok := decodeRow(toStrings(header)); ok {
		t.Fatal("header must not decode")
	}
	if _, ok := decodeRow([]string{"x", "", "expense"}); ok {
		t.Fatal("short row must not decode")
	}
	comma := toStrings(encodeRow(sampleTx("t2", "x")))
	comma[colAmount] = "42,5"
	if back, ok := decodeRow(comma); !ok || !back.Amount.Equal(decimal.RequireFromString("42.5")) {
		t.Fatalf("comma amount: %+v %v", back, ok)
	}
}
