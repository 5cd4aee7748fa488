package ledger

import (
	"errors"
	"strings"
	"time"

	"smartspend/internal/core"
)

// Period selects a calendar window relative to a reference instant.
type Period string

const (
	ThisMonth Period = "month"
	ThisYear  Period = "year"
	AllTime   Period = "all"
)

var (
	ErrInvalidPeriod        = errors.New("invalid period")
	ErrInvalidAccountFilter = errors.New("invalid account filter")
)

// ParsePeriod maps user input to a Period. Empty input means the current month.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ThisMonth, nil
	case ThisMonth, ThisYear, AllTime:
		return p, nil
	}
	return "", ErrInvalidPeriod
}

// AccountFilter is either AllAccounts or one account id.
type AccountFilter string

const AllAccounts AccountFilter = "all"

// ParseAccountFilter accepts "", "all" or an account id.
func ParseAccountFilter(s string) (AccountFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(AllAccounts) {
		return AllAccounts, nil
	}
	a, err := core.ParseAccountID(s)
	if err != nil {
		return "", ErrInvalidAccountFilter
	}
	return AccountFilter(a), nil
}

// ForAccount scopes a filter to a single account.
func ForAccount(a core.AccountID) AccountFilter { return AccountFilter(a) }

func (f AccountFilter) All() bool { return f == "" || f == AllAccounts }

// Account returns the scoped account, or "" for AllAccounts.
func (f AccountFilter) Account() core.AccountID {
	if f.All() {
		return ""
	}
	return core.AccountID(f)
}

// FilterByPeriod keeps transactions in the same calendar month or year as now,
// compared in now's location. Undated transactions are always excluded.
func FilterByPeriod(txs []core.Transaction, period Period, now time.Time) []core.Transaction {
	loc := now.Location()
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		d := tx.Date.In(loc)
		switch period {
		case ThisMonth:
			if d.Year() != now.Year() || d.Month() != now.Month() {
				continue
			}
		case ThisYear:
			if d.Year() != now.Year() {
				continue
			}
		case AllTime:
		default:
			continue
		}
		out = append(out, tx)
	}
	return out
}

// FilterByAccount keeps transactions where the account is on either leg.
func FilterByAccount(txs []core.Transaction, filter AccountFilter) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	if filter.All() {
		return append(out, txs...)
	}
	a := filter.Account()
	for _, tx := range txs {
		if tx.Touches(a) {
			out = append(out, tx)
		}
	}
	return out
}

// FilterByCategory keeps transactions whose trimmed category equals c.
func FilterByCategory(txs []core.Transaction, c core.Category) []core.Transaction {
	c = core.NormalizeCategory(c)
	out := make([]core.Transaction, 0)
	for _, tx := range txs {
		if core.NormalizeCategory(tx.Category) == c {
			out = append(out, tx)
		}
	}
	return out
}
