package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/core"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func income(amount string, acc core.AccountID, when string) core.Transaction {
	return core.Transaction{ID: "i" + when, Amount: d(amount), Type: core.Income, Category: core.CategorySalary, Description: "pay", Date: at(when), AccountID: acc}
}

func expense(amount string, acc core.AccountID, cat, desc, when string) core.Transaction {
	return core.Transaction{ID: "e" + when, Amount: d(amount), Type: core.Expense, Category: cat, Description: desc, Date: at(when), AccountID: acc}
}

func transfer(amount string, from, to core.AccountID, when string) core.Transaction {
	return core.Transaction{ID: "t" + when, Amount: d(amount), Type: core.Transfer, Category: core.CategoryTransfer, Date: at(when), AccountID: from, TargetAccountID: to}
}

func scenario() []core.Transaction {
	return []core.Transaction{
		income("1000", core.Salary, "2025-03-01T09:00:00Z"),
		transfer("200", core.Salary, core.Cash, "2025-03-02T09:00:00Z"),
		expense("50", core.Cash, core.CategoryBazar, "Bazar", "2025-03-03T09:00:00Z"),
	}
}

func assertDec(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func TestEndToEndScenario(t *testing.T) {
	txs := scenario()
	b := ComputeAccountBalances(txs)
	assertDec(t, "salary", b.Salary, "800")
	assertDec(t, "savings", b.Savings, "0")
	assertDec(t, "cash", b.Cash, "150")

	s := ComputeSummary(txs, AllAccounts, b)
	assertDec(t, "income", s.TotalIncome, "1000")
	assertDec(t, "expenses", s.TotalExpenses, "50")
	assertDec(t, "balance", s.Balance, "950")
	assertDec(t, "savingsRate", s.SavingsRate, "95")
	assertDec(t, "salaryAccountBalance", s.SalaryAccountBalance, "800")
	assertDec(t, "cashBalance", s.CashBalance, "150")

	cash := ComputeSummary(FilterByAccount(txs, ForAccount(core.Cash)), ForAccount(core.Cash), b)
	assertDec(t, "cash income", cash.TotalIncome, "200")
	assertDec(t, "cash expenses", cash.TotalExpenses, "50")
	assertDec(t, "cash balance", cash.Balance, "150")
	assertDec(t, "cash salaryAccountBalance", cash.SalaryAccountBalance, "800")
}

func TestTransferConservesTotal(t *testing.T) {
	base := []core.Transaction{
		income("500", core.Salary, "2025-01-01T00:00:00Z"),
		expense("20", core.Savings, core.CategoryOther, "x", "2025-01-02T00:00:00Z"),
	}
	before := ComputeAccountBalances(base)
	pairs := [][2]core.AccountID{{core.Salary, core.Savings}, {core.Savings, core.Cash}, {core.Cash, core.Salary}}
	for _, p := range pairs {
		after := ComputeAccountBalances(append(append([]core.Transaction(nil), base...), transfer("75.5", p[0], p[1], "2025-01-03T00:00:00Z")))
		if !after.Of(p[0]).Sub(before.Of(p[0])).Equal(d("-75.5")) {
			t.Fatalf("%s→%s: source delta %s", p[0], p[1], after.Of(p[0]).Sub(before.Of(p[0])))
		}
		if !after.Of(p[1]).Sub(before.Of(p[1])).Equal(d("75.5")) {
			t.Fatalf("%s→%s: target delta %s", p[0], p[1], after.Of(p[1]).Sub(before.Of(p[1])))
		}
		if !after.Total().Equal(before.Total()) {
			t.Fatalf("%s→%s: total changed %s → %s", p[0], p[1], before.Total(), after.Total())
		}
	}
}

func TestTransferEdgeCases(t *testing.T) {
	cases := []struct {
		name               string
		tx                 core.Transaction
		salary, cash, save string
	}{
		{"missing target debits only", transfer("30", core.Salary, "", "2025-01-01T00:00:00Z"), "-30", "0", "0"},
		{"unknown target debits only", transfer("30", core.Salary, "bank", "2025-01-01T00:00:00Z"), "-30", "0", "0"},
		{"unknown source credits target", transfer("30", "bank", core.Cash, "2025-01-01T00:00:00Z"), "0", "30", "0"},
		{"self transfer nets zero", transfer("30", core.Savings, core.Savings, "2025-01-01T00:00:00Z"), "0", "0", "0"},
		{"unknown account income skipped", income("30", "wallet", "2025-01-01T00:00:00Z"), "0", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := ComputeAccountBalances([]core.Transaction{tc.tx})
			assertDec(t, "salary", b.Salary, tc.salary)
			assertDec(t, "cash", b.Cash, tc.cash)
			assertDec(t, "savings", b.Savings, tc.save)
		})
	}
}

func TestIncomeExpenseAdditivity(t *testing.T) {
	txs := []core.Transaction{
		income("100.10", core.Savings, "2025-01-01T00:00:00Z"),
		expense("30.05", core.Savings, core.CategoryFood, "a", "2025-01-02T00:00:00Z"),
		income("0.95", core.Savings, "2025-01-03T00:00:00Z"),
		expense("71", core.Savings, core.CategoryFood, "b", "2025-01-04T00:00:00Z"),
	}
	assertDec(t, "savings", ComputeAccountBalances(txs).Savings, "0")
}

func TestSavingsRateZeroWithoutIncome(t *testing.T) {
	txs := []core.Transaction{expense("40", core.Cash, core.CategoryFood, "a", "2025-01-01T00:00:00Z")}
	s := ComputeSummary(txs, AllAccounts, core.Balances{})
	assertDec(t, "savingsRate", s.SavingsRate, "0")
	assertDec(t, "balance", s.Balance, "-40")

	s = ComputeSummary(nil, AllAccounts, core.Balances{})
	assertDec(t, "empty savingsRate", s.SavingsRate, "0")
}

func TestScopedSummaryTransfers(t *testing.T) {
	txs := []core.Transaction{
		transfer("200", core.Salary, core.Savings, "2025-01-01T00:00:00Z"),
		transfer("70", core.Savings, core.Cash, "2025-01-02T00:00:00Z"),
	}
	all := ComputeSummary(txs, AllAccounts, core.Balances{})
	assertDec(t, "all income", all.TotalIncome, "0")
	assertDec(t, "all expenses", all.TotalExpenses, "0")

	sav := ComputeSummary(txs, ForAccount(core.Savings), core.Balances{})
	assertDec(t, "savings income", sav.TotalIncome, "200")
	assertDec(t, "savings expenses", sav.TotalExpenses, "70")

	self := ComputeSummary([]core.Transaction{transfer("5", core.Cash, core.Cash, "2025-01-01T00:00:00Z")}, ForAccount(core.Cash), core.Balances{})
	assertDec(t, "self balance", self.Balance, "0")
}

func TestScopedSummaryIgnoresOtherAccounts(t *testing.T) {
	txs := []core.Transaction{
		income("100", core.Salary, "2025-01-01T00:00:00Z"),
		expense("10", core.Cash, core.CategoryFood, "a", "2025-01-01T00:00:00Z"),
	}
	s := ComputeSummary(txs, ForAccount(core.Salary), core.Balances{})
	assertDec(t, "income", s.TotalIncome, "100")
	assertDec(t, "expenses", s.TotalExpenses, "0")
	assertDec(t, "rate", s.SavingsRate, "100")
}

func TestHistoricalBalanceAsOf(t *testing.T) {
	txs := scenario()
	txs = append(txs, core.Transaction{ID: "undated", Amount: d("999"), Type: core.Income, AccountID: core.Savings})

	b := HistoricalBalanceAsOf(txs, at("2025-03-02T09:00:00Z"))
	assertDec(t, "salary", b.Salary, "800")
	assertDec(t, "cash", b.Cash, "200")
	assertDec(t, "savings", b.Savings, "0")

	b = HistoricalBalanceAsOf(txs, at("2025-02-28T00:00:00Z"))
	if !b.Total().IsZero() {
		t.Fatalf("expected empty balances before first transaction, got %+v", b)
	}
}

func TestSummarizeUsesLifetimeBalances(t *testing.T) {
	txs := append(scenario(), income("300", core.Savings, "2024-12-31T10:00:00Z"))
	s := Summarize(txs, ThisMonth, AllAccounts, at("2025-03-15T00:00:00Z"))
	assertDec(t, "income", s.TotalIncome, "1000")
	assertDec(t, "savingsAccountBalance", s.SavingsAccountBalance, "300")
}
