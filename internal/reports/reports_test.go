package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tx(id string, typ core.TxType, amount string, cat, desc string, when time.Time, acc core.AccountID) core.Transaction {
	return core.Transaction{ID: id, Type: typ, Amount: d(amount), Category: cat, Description: desc, Date: when, AccountID: acc}
}

func day(y int, m time.Month, dd, h, min, s int) time.Time {
	return time.Date(y, m, dd, h, min, s, 0, time.UTC)
}

func TestParseLending(t *testing.T) {
	cases := []struct {
		tx     core.Transaction
		ok     bool
		person string
		kind   LendingKind
	}{
		{tx("1", core.Expense, "10", core.CategoryLending, "Lent to  Rahim ", day(2025, 1, 1, 0, 0, 0), core.Cash), true, "Rahim", Lent},
		{tx("2", core.Income, "10", core.CategoryLending, "returned BY Rahim", day(2025, 1, 1, 0, 0, 0), core.Cash), true, "Rahim", Returned},
		{tx("3", core.Expense, "10", core.CategoryOther, "Lent to Rahim", day(2025, 1, 1, 0, 0, 0), core.Cash), false, "", ""},
		{tx("4", core.Expense, "10", core.CategoryLending, "Gift for Rahim", day(2025, 1, 1, 0, 0, 0), core.Cash), false, "", ""},
		{tx("5", core.Expense, "10", core.CategoryLending, "Lent to   ", day(2025, 1, 1, 0, 0, 0), core.Cash), false, "", ""},
	}
	for _, tc := range cases {
		e, ok := ParseLending(tc.tx)
		if ok != tc.ok {
			t.Fatalf("%s: ok=%v want %v", tc.tx.ID, ok, tc.ok)
		}
		if ok && (e.Person != tc.person || e.Kind != tc.kind) {
			t.Fatalf("%s: got %+v", tc.tx.ID, e)
		}
	}
}

func lendingLedger() []core.Transaction {
	return []core.Transaction{
		tx("a", core.Expense, "500", core.CategoryLending, LendDescription("Karim"), day(2025, 1, 1, 0, 0, 0), core.Cash),
		tx("b", core.Expense, "300", core.CategoryLending, LendDescription("Rahim"), day(2025, 1, 5, 0, 0, 0), core.Salary),
		tx("c", core.Income, "200", core.CategoryLending, ReturnDescription("Karim"), day(2025, 1, 10, 0, 0, 0), core.Cash),
		tx("d", core.Expense, "40", core.CategoryFood, "Lunch with Karim", day(2025, 1, 11, 0, 0, 0), core.Cash),
	}
}

func TestLendingDirectory(t *testing.T) {
	dir := LendingDirectory(lendingLedger())
	if len(dir) != 2 {
		t.Fatalf("expected 2 people, got %d", len(dir))
	}
	if dir[0].Name != "Karim" || !dir[0].Balance.Equal(d("300")) {
		t.Fatalf("unexpected first entry %+v", dir[0])
	}
	if !dir[0].LastActivity.Equal(day(2025, 1, 10, 0, 0, 0)) {
		t.Fatalf("unexpected last activity %s", dir[0].LastActivity)
	}
	if dir[1].Name != "Rahim" || !dir[1].Balance.Equal(d("300")) {
		t.Fatalf("unexpected second entry %+v", dir[1])
	}
	if got := TotalOutstanding(dir); !got.Equal(d("600")) {
		t.Fatalf("outstanding = %s", got)
	}
}

func TestSearchPeopleAndHistory(t *testing.T) {
	dir := LendingDirectory(lendingLedger())
	if got := SearchPeople(dir, "RIM"); len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got := SearchPeople(dir, "kar"); len(got) != 1 || got[0].Name != "Karim" {
		t.Fatalf("unexpected matches %+v", got)
	}
	if got := SearchPeople(dir, ""); len(got) != 2 {
		t.Fatalf("blank search should return all")
	}

	hist := PersonHistory(lendingLedger(), "Karim")
	if len(hist) != 2 || hist[0].ID != "c" || hist[1].ID != "a" {
		t.Fatalf("unexpected history %+v", hist)
	}
}

func bazarLedger() []core.Transaction {
	return []core.Transaction{
		tx("1", core.Expense, "120", core.CategoryBazar, "Rice", day(2025, 3, 1, 10, 0, 0), core.Cash),
		tx("2", core.Expense, "80", core.CategoryBazar, "rice", day(2025, 3, 1, 10, 0, 40), core.Cash),
		tx("3", core.Expense, "60", core.CategoryBazar, "Oil", day(2025, 3, 1, 10, 1, 5), core.Cash),
		tx("4", core.Expense, "30", core.CategoryBazar, "Salt", day(2025, 2, 20, 9, 0, 0), core.Cash),
		tx("5", core.Expense, "999", core.CategoryFood, "Dinner", day(2025, 3, 2, 20, 0, 0), core.Cash),
	}
}

func TestBazarViews(t *testing.T) {
	txs := bazarLedger()
	now := day(2025, 3, 15, 0, 0, 0)

	if got := BazarForMonth(txs, now); len(got) != 3 {
		t.Fatalf("expected 3 items this month, got %d", len(got))
	}

	trips := BazarTrips(txs)
	if len(trips) != 3 {
		t.Fatalf("expected 3 trips, got %d", len(trips))
	}
	if trips[0].Key != "2025-03-01T10:01" || trips[1].Key != "2025-03-01T10:00" {
		t.Fatalf("unexpected trip order %q %q", trips[0].Key, trips[1].Key)
	}
	if !trips[1].Total.Equal(d("200")) || len(trips[1].Items) != 2 {
		t.Fatalf("unexpected trip %+v", trips[1])
	}

	monthly := BazarMonthly(txs)
	if len(monthly) != 2 || monthly[0].Month != "2025-03" || !monthly[0].Total.Equal(d("260")) || monthly[0].Count != 3 {
		t.Fatalf("unexpected monthly %+v", monthly)
	}
	if got := BazarLifetimeTotal(txs); !got.Equal(d("290")) {
		t.Fatalf("lifetime = %s", got)
	}
	top := BazarTopItems(txs, 1)
	if len(top) != 1 || top[0].Description != "rice" || !top[0].Total.Equal(d("200")) {
		t.Fatalf("unexpected top %+v", top)
	}
}

func TestExpensesByCategory(t *testing.T) {
	txs := append(bazarLedger(),
		tx("6", core.Income, "5000", core.CategorySalary, "pay", day(2025, 3, 1, 0, 0, 0), core.Salary),
		core.Transaction{ID: "7", Type: core.Transfer, Amount: d("100"), Category: core.CategoryTransfer, Date: day(2025, 3, 1, 0, 0, 0), AccountID: core.Salary, TargetAccountID: core.Cash},
	)
	rows := ExpensesByCategory(txs)
	if len(rows) != 2 {
		t.Fatalf("expected 2 categories, got %+v", rows)
	}
	if rows[0].Name != core.CategoryFood || !rows[0].Amount.Equal(d("999")) {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[1].Name != core.CategoryBazar || !rows[1].Amount.Equal(d("290")) {
		t.Fatalf("unexpected second row %+v", rows[1])
	}
}

func TestActivityBarsMonth(t *testing.T) {
	txs := append(bazarLedger(),
		tx("6", core.Income, "5000", core.CategorySalary, "pay", day(2025, 3, 2, 0, 0, 0), core.Salary),
		core.Transaction{ID: "7", Type: core.Transfer, Amount: d("100"), Date: day(2025, 3, 4, 0, 0, 0), AccountID: core.Salary, TargetAccountID: core.Cash},
	)
	bars := ActivityBars(txs, ledger.ThisMonth, day(2025, 3, 20, 0, 0, 0))
	if len(bars) != 2 {
		t.Fatalf("expected 2 active days, got %+v", bars)
	}
	if bars[0].Label != "1" || !bars[0].Expense.Equal(d("260")) || !bars[0].Income.IsZero() {
		t.Fatalf("unexpected day 1 bar %+v", bars[0])
	}
	if bars[1].Label != "2" || !bars[1].Income.Equal(d("5000")) || !bars[1].Expense.Equal(d("999")) {
		t.Fatalf("unexpected day 2 bar %+v", bars[1])
	}
}

func TestActivityBarsYear(t *testing.T) {
	bars := ActivityBars(bazarLedger(), ledger.ThisYear, day(2025, 6, 1, 0, 0, 0))
	if len(bars) != 12 {
		t.Fatalf("expected 12 bars, got %d", len(bars))
	}
	if bars[0].Label != "Jan" || bars[11].Label != "Dec" {
		t.Fatalf("unexpected labels %q..%q", bars[0].Label, bars[11].Label)
	}
	if !bars[1].Expense.Equal(d("30")) || !bars[2].Expense.Equal(d("1259")) || !bars[5].Expense.IsZero() {
		t.Fatalf("unexpected bars %+v", bars)
	}
}

func TestMonthlyStatement(t *testing.T) {
	txs := []core.Transaction{
		tx("1", core.Income, "1000", core.CategorySalary, "pay", day(2025, 2, 28, 23, 0, 0), core.Salary),
		tx("2", core.Expense, "100", core.CategoryFood, "food", day(2025, 3, 5, 12, 0, 0), core.Salary),
		tx("3", core.Expense, "50", core.CategoryFood, "snack", day(2025, 3, 5, 18, 0, 0), core.Salary),
		tx("4", core.Income, "700", core.CategorySalary, "pay", day(2025, 4, 1, 0, 0, 0), core.Salary),
	}
	st := MonthlyStatement(txs, 2025, time.March, nil)
	if st.Month != "2025-03" {
		t.Fatalf("month = %q", st.Month)
	}
	if !st.Opening.Salary.Equal(d("1000")) || !st.Closing.Salary.Equal(d("850")) {
		t.Fatalf("opening %s closing %s", st.Opening.Salary, st.Closing.Salary)
	}
	if !st.Summary.TotalExpenses.Equal(d("150")) || !st.Summary.TotalIncome.IsZero() {
		t.Fatalf("unexpected summary %+v", st.Summary)
	}
	if !st.Summary.SalaryAccountBalance.Equal(d("1550")) {
		t.Fatalf("summary should echo lifetime balance, got %s", st.Summary.SalaryAccountBalance)
	}
	if len(st.Days) != 1 || st.Days[0].Transactions[0].ID != "3" {
		t.Fatalf("unexpected days %+v", st.Days)
	}
}

func TestMonthlyStatementKeysDaysInLocation(t *testing.T) {
	dhaka := time.FixedZone("BDT", 6*60*60)
	txs := []core.Transaction{
		// 02:00 on 1 February in Dhaka
		tx("late", core.Expense, "40", core.CategoryFood, "tea", day(2025, 1, 31, 20, 0, 0), core.Cash),
		tx("jan", core.Expense, "10", core.CategoryFood, "snack", day(2025, 1, 31, 17, 0, 0), core.Cash),
	}
	st := MonthlyStatement(txs, 2025, time.February, dhaka)
	if len(st.Days) != 1 {
		t.Fatalf("got %d day groups, want 1: %+v", len(st.Days), st.Days)
	}
	if st.Days[0].Key != "2025-02-01" || st.Days[0].Transactions[0].ID != "late" {
		t.Fatalf("day key = %q with %+v, want 2025-02-01", st.Days[0].Key, st.Days[0].Transactions)
	}

	days := DailyHistory(txs, dhaka)
	if len(days) != 2 || days[0].Key != "2025-02-01" || days[1].Key != "2025-01-31" {
		t.Fatalf("unexpected history keys %+v", days)
	}
	if utc := DailyHistory(txs, nil); len(utc) != 1 || utc[0].Key != "2025-01-31" {
		t.Fatalf("nil location should key in the timestamp's zone, got %+v", utc)
	}
}
