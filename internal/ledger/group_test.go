package ledger

import (
	"testing"
	"time"

	"smartspend/internal/core"
)

func TestGroupByMinute(t *testing.T) {
	txs := []core.Transaction{
		expense("1", core.Cash, core.CategoryBazar, "rice", "2024-03-01T10:00:00Z"),
		expense("2", core.Cash, core.CategoryBazar, "oil", "2024-03-01T10:00:30Z"),
		expense("3", core.Cash, core.CategoryBazar, "fish", "2024-03-01T10:01:05Z"),
	}
	groups := GroupByKey(txs, MinuteKey)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Key != "2024-03-01T10:01" || len(groups[0].Transactions) != 1 {
		t.Fatalf("unexpected first group %+v", groups[0])
	}
	if groups[1].Key != "2024-03-01T10:00" || len(groups[1].Transactions) != 2 {
		t.Fatalf("unexpected second group %+v", groups[1])
	}
	if groups[1].Transactions[0].Description != "rice" || groups[1].Transactions[1].Description != "oil" {
		t.Fatalf("members should keep input order")
	}
	assertDec(t, "bucket total", groups[1].Total(), "3")
}

func TestGroupByKeyKeepsEveryRecord(t *testing.T) {
	txs := append(scenario(),
		expense("4", core.Cash, core.CategoryFood, "tea", "2025-03-03T18:00:00Z"),
		expense("5", core.Cash, core.CategoryFood, "tea", "2024-11-03T18:00:00Z"),
	)
	for name, key := range map[string]KeyFunc{"day": DayKey, "minute": MinuteKey, "month": MonthKey} {
		seen := map[string]int{}
		for _, g := range GroupByKey(txs, key) {
			for _, tx := range g.Transactions {
				seen[tx.ID]++
			}
		}
		if len(seen) != len(txs) {
			t.Fatalf("%s: got %d distinct records, want %d", name, len(seen), len(txs))
		}
		for id, n := range seen {
			if n != 1 {
				t.Fatalf("%s: %s seen %d times", name, id, n)
			}
		}
	}
}

func TestGroupKeysDescending(t *testing.T) {
	txs := []core.Transaction{
		expense("1", core.Cash, "x", "a", "2024-11-03T18:00:00Z"),
		expense("1", core.Cash, "x", "b", "2025-01-03T18:00:00Z"),
		expense("1", core.Cash, "x", "c", "2024-12-03T18:00:00Z"),
		{ID: "undated", Amount: d("1"), Type: core.Expense, AccountID: core.Cash},
	}
	groups := GroupByKey(txs, MonthKey)
	want := []string{"2025-01", "2024-12", "2024-11"}
	if len(groups) != len(want) {
		t.Fatalf("got %d groups", len(groups))
	}
	for i, k := range want {
		if groups[i].Key != k {
			t.Fatalf("group %d key %q want %q", i, groups[i].Key, k)
		}
	}
}

func TestDayKeyUsesOwnLocation(t *testing.T) {
	dhaka := time.FixedZone("BDT", 6*3600)
	ts := time.Date(2025, 2, 1, 1, 0, 0, 0, dhaka)
	if got := DayKey(ts); got != "2025-02-01" {
		t.Fatalf("got %q", got)
	}
}

func TestTopNByDescription(t *testing.T) {
	txs := []core.Transaction{
		expense("10", core.Cash, core.CategoryBazar, "Milk", "2025-01-01T00:00:00Z"),
		expense("20", core.Cash, core.CategoryBazar, "milk ", "2025-01-02T00:00:00Z"),
		expense("30", core.Cash, core.CategoryBazar, "MILK", "2025-01-03T00:00:00Z"),
		expense("45", core.Cash, core.CategoryBazar, "Eggs", "2025-01-03T00:00:00Z"),
		expense("5", core.Cash, core.CategoryBazar, "salt", "2025-01-03T00:00:00Z"),
	}
	top := TopNByDescription(txs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(top))
	}
	if top[0].Description != "milk" || top[0].Count != 3 {
		t.Fatalf("unexpected first row %+v", top[0])
	}
	assertDec(t, "milk", top[0].Total, "60")
	if top[1].Description != "eggs" {
		t.Fatalf("unexpected second row %+v", top[1])
	}
	if all := TopNByDescription(txs, 0); len(all) != 3 {
		t.Fatalf("n=0 should return all rows, got %d", len(all))
	}
}

func TestMostRecent(t *testing.T) {
	txs := scenario()
	txs = append(txs, core.Transaction{ID: "undated", Amount: d("1"), Type: core.Income, AccountID: core.Cash})
	got := MostRecent(txs, 2)
	if len(got) != 2 || got[0].ID != txs[2].ID || got[1].ID != txs[1].ID {
		t.Fatalf("unexpected order %+v", got)
	}
	if all := SortNewestFirst(txs); all[len(all)-1].ID != "undated" {
		t.Fatalf("undated should sort last")
	}
	if txs[0].ID != "i2025-03-01T09:00:00Z" {
		t.Fatalf("input must not be reordered")
	}
}
