package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/core"
)

var hundred = decimal.NewFromInt(100)

// ComputeSummary totals income and expenses of an already filtered list.
//
// Unscoped (AllAccounts) transfers are internal movements and count on neither
// side. Scoped to one account, income and expenses count only when the
// account is the primary one, and a transfer counts as expense on its source
// and as income on its target. The lifetime balances are echoed unchanged.
func ComputeSummary(filtered []core.Transaction, filter AccountFilter, lifetime core.Balances) core.Summary {
	inc, exp := decimal.Zero, decimal.Zero
	scoped := !filter.All()
	account := filter.Account()

	for _, tx := range filtered {
		switch tx.Type {
		case core.Income:
			if !scoped || tx.AccountID == account {
				inc = inc.Add(tx.Amount)
			}
		case core.Expense:
			if !scoped || tx.AccountID == account {
				exp = exp.Add(tx.Amount)
			}
		case core.Transfer:
			if !scoped {
				continue
			}
			if tx.AccountID == account {
				exp = exp.Add(tx.Amount)
			}
			if tx.TargetAccountID == account {
				inc = inc.Add(tx.Amount)
			}
		}
	}

	rate := decimal.Zero
	if inc.IsPositive() {
		rate = inc.Sub(exp).Div(inc).Mul(hundred)
	}
	return core.Summary{
		TotalIncome:           inc,
		TotalExpenses:         exp,
		Balance:               inc.Sub(exp),
		SavingsRate:           rate,
		SalaryAccountBalance:  lifetime.Salary,
		SavingsAccountBalance: lifetime.Savings,
		CashBalance:           lifetime.Cash,
	}
}

// Summarize filters all by period and account relative to now, then summarizes
// the result against the lifetime balances of all.
func Summarize(all []core.Transaction, period Period, filter AccountFilter, now time.Time) core.Summary {
	filtered := FilterByAccount(FilterByPeriod(all, period, now), filter)
	return ComputeSummary(filtered, filter, ComputeAccountBalances(all))
}
