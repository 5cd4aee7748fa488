package ledger

import (
	"testing"
	"time"

	"smartspend/internal/core"
)

func TestFilterByPeriodBoundary(t *testing.T) {
	last := time.Date(2025, 1, 31, 23, 59, 59, 999999999, time.UTC)
	txs := []core.Transaction{{ID: "a", Amount: d("1"), Type: core.Expense, Date: last, AccountID: core.Cash}}

	for _, now := range []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 23, 59, 59, 999999999, time.UTC),
		time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
	} {
		if got := FilterByPeriod(txs, ThisMonth, now); len(got) != 1 {
			t.Fatalf("now=%s: expected inclusion", now)
		}
	}
	if got := FilterByPeriod(txs, ThisMonth, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)); len(got) != 0 {
		t.Fatalf("expected exclusion in next month")
	}
	if got := FilterByPeriod(txs, ThisYear, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)); len(got) != 1 {
		t.Fatalf("expected inclusion in same year")
	}
	if got := FilterByPeriod(txs, ThisYear, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)); len(got) != 0 {
		t.Fatalf("expected exclusion in next year")
	}
}

func TestFilterByPeriodUsesReferenceLocation(t *testing.T) {
	dhaka := time.FixedZone("BDT", 6*3600)
	// 2025-01-31T20:00Z is already February 1st in Dhaka.
	txs := []core.Transaction{{ID: "a", Amount: d("1"), Type: core.Expense, Date: time.Date(2025, 1, 31, 20, 0, 0, 0, time.UTC), AccountID: core.Cash}}
	if got := FilterByPeriod(txs, ThisMonth, time.Date(2025, 2, 10, 0, 0, 0, 0, dhaka)); len(got) != 1 {
		t.Fatalf("expected inclusion in February local time")
	}
}

func TestFilterByPeriodExcludesUndated(t *testing.T) {
	txs := []core.Transaction{{ID: "a", Amount: d("1"), Type: core.Income, AccountID: core.Cash}}
	for _, p := range []Period{ThisMonth, ThisYear, AllTime} {
		if got := FilterByPeriod(txs, p, time.Now()); len(got) != 0 {
			t.Fatalf("%s: undated transaction should be excluded", p)
		}
	}
}

func TestFilterByAccount(t *testing.T) {
	txs := scenario()
	if got := FilterByAccount(txs, AllAccounts); len(got) != 3 {
		t.Fatalf("all: got %d", len(got))
	}
	cases := map[core.AccountID]int{core.Salary: 2, core.Cash: 2, core.Savings: 0}
	for acc, want := range cases {
		if got := FilterByAccount(txs, ForAccount(acc)); len(got) != want {
			t.Fatalf("%s: got %d want %d", acc, len(got), want)
		}
	}
}

func TestParseFilters(t *testing.T) {
	if f, err := ParseAccountFilter(""); err != nil || !f.All() {
		t.Fatalf("empty: %q %v", f, err)
	}
	if f, err := ParseAccountFilter("Cash"); err != nil || f.Account() != core.Cash {
		t.Fatalf("cash: %q %v", f, err)
	}
	if _, err := ParseAccountFilter("bank"); err != ErrInvalidAccountFilter {
		t.Fatalf("bank: %v", err)
	}
	if p, err := ParsePeriod(""); err != nil || p != ThisMonth {
		t.Fatalf("period default: %q %v", p, err)
	}
	if _, err := ParsePeriod("week"); err != ErrInvalidPeriod {
		t.Fatalf("week: %v", err)
	}
}

func TestFilterByCategory(t *testing.T) {
	txs := scenario()
	if got := FilterByCategory(txs, " Bazar & Groceries"); len(got) != 1 {
		t.Fatalf("got %d", len(got))
	}
}
