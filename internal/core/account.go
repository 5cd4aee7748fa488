package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AccountID identifies one of the three fixed money containers.
type AccountID string

const (
	Salary  AccountID = "salary"
	Savings AccountID = "savings"
	Cash    AccountID = "cash"
)

// Accounts lists the known accounts in display order.
func Accounts() []AccountID {
	return []AccountID{Salary, Savings, Cash}
}

func (a AccountID) Valid() bool {
	switch a {
	case Salary, Savings, Cash:
		return true
	}
	return false
}

// Label is the human readable account name.
func (a AccountID) Label() string {
	switch a {
	case Salary:
		return "Salary Account"
	case Savings:
		return "Savings Account"
	case Cash:
		return "Cash in Hand"
	}
	return string(a)
}

// ParseAccountID accepts any casing and surrounding whitespace.
func ParseAccountID(s string) (AccountID, error) {
	a := AccountID(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", ErrInvalidAccount
	}
	return a, nil
}

// Balances holds the derived running balance of each account.
type Balances struct {
	Salary  decimal.Decimal `json:"salary"`
	Savings decimal.Decimal `json:"savings"`
	Cash    decimal.Decimal `json:"cash"`
}

// Of returns the balance of a, or zero for an unknown account.
func (b Balances) Of(a AccountID) decimal.Decimal {
	switch a {
	case Salary:
		return b.Salary
	case Savings:
		return b.Savings
	case Cash:
		return b.Cash
	}
	return decimal.Zero
}

// Add moves delta into account a. Unknown accounts are ignored.
func (b *Balances) Add(a AccountID, delta decimal.Decimal) {
	switch a {
	case Salary:
		b.Salary = b.Salary.Add(delta)
	case Savings:
		b.Savings = b.Savings.Add(delta)
	case Cash:
		b.Cash = b.Cash.Add(delta)
	}
}

func (b Balances) Total() decimal.Decimal {
	return b.Salary.Add(b.Savings).Add(b.Cash)
}
