package core

import "github.com/shopspring/decimal"

// Summary is the headline view of a period. The three account balances are
// lifetime figures and ignore any period or account scoping.
type Summary struct {
	TotalIncome           decimal.Decimal `json:"totalIncome"`
	TotalExpenses         decimal.Decimal `json:"totalExpenses"`
	Balance               decimal.Decimal `json:"balance"`
	SavingsRate           decimal.Decimal `json:"savingsRate"`
	SalaryAccountBalance  decimal.Decimal `json:"salaryAccountBalance"`
	SavingsAccountBalance decimal.Decimal `json:"savingsAccountBalance"`
	CashBalance           decimal.Decimal `json:"cashBalance"`
}

// LifetimeBalances returns the account balances echoed in s.
func (s Summary) LifetimeBalances() Balances {
	return Balances{Salary: s.SalaryAccountBalance, Savings: s.SavingsAccountBalance, Cash: s.CashBalance}
}

type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type DescriptionTotal struct {
	Description string          `json:"description"`
	Total       decimal.Decimal `json:"total"`
	Count       int             `json:"count"`
}
