// Package reports builds the derived views of the ledger: the lending
// tracker, bazar trips, chart series and monthly statements.
package reports

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
)

var (
	lentPattern     = regexp.MustCompile(`(?i)Lent to\s+(.*)`)
	returnedPattern = regexp.MustCompile(`(?i)Returned by\s+(.*)`)
)

type LendingKind string

const (
	Lent     LendingKind = "lent"
	Returned LendingKind = "returned"
)

// LendDescription is the description written for money handed to person.
func LendDescription(person string) string { return "Lent to " + strings.TrimSpace(person) }

// ReturnDescription is the description written when person pays money back.
func ReturnDescription(person string) string { return "Returned by " + strings.TrimSpace(person) }

type LendingEntry struct {
	Person string
	Kind   LendingKind
	Amount decimal.Decimal
	Date   time.Time
}

// ParseLending recognises lending rows. Only the Lending category counts,
// and the person's name must not be blank.
func ParseLending(tx core.Transaction) (LendingEntry, bool) {
	if core.NormalizeCategory(tx.Category) != core.CategoryLending {
		return LendingEntry{}, false
	}
	kind := Lent
	m := lentPattern.FindStringSubmatch(tx.Description)
	if m == nil {
		kind = Returned
		m = returnedPattern.FindStringSubmatch(tx.Description)
	}
	if m == nil {
		return LendingEntry{}, false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return LendingEntry{}, false
	}
	return LendingEntry{Person: name, Kind: kind, Amount: tx.Amount, Date: tx.Date}, true
}

// PersonBalance is what a person still owes; negative means they paid back more
// than they borrowed.
type PersonBalance struct {
	Name         string          `json:"name"`
	Balance      decimal.Decimal `json:"balance"`
	LastActivity time.Time       `json:"lastActivity"`
}

// LendingDirectory returns everyone with lending activity, most recently active first.
func LendingDirectory(txs []core.Transaction) []PersonBalance {
	index := make(map[string]int)
	var people []PersonBalance
	for _, tx := range txs {
		e, ok := ParseLending(tx)
		if !ok {
			continue
		}
		i, seen := index[e.Person]
		if !seen {
			i = len(people)
			index[e.Person] = i
			people = append(people, PersonBalance{Name: e.Person, Balance: decimal.Zero})
		}
		p := &people[i]
		if e.Kind == Lent {
			p.Balance = p.Balance.Add(e.Amount)
		} else {
			p.Balance = p.Balance.Sub(e.Amount)
		}
		if e.Date.After(p.LastActivity) {
			p.LastActivity = e.Date
		}
	}
	sort.SliceStable(people, func(i, j int) bool {
		return people[i].LastActivity.After(people[j].LastActivity)
	})
	return people
}

// TotalOutstanding sums the positive balances in dir.
func TotalOutstanding(dir []PersonBalance) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range dir {
		if p.Balance.IsPositive() {
			sum = sum.Add(p.Balance)
		}
	}
	return sum
}

// SearchPeople filters dir by a case-insensitive substring of the name.
func SearchPeople(dir []PersonBalance, term string) []PersonBalance {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return dir
	}
	var out []PersonBalance
	for _, p := range dir {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

// PersonHistory lists person's lending transactions, newest first.
func PersonHistory(txs []core.Transaction, person string) []core.Transaction {
	person = strings.TrimSpace(person)
	var out []core.Transaction
	for _, tx := range txs {
		if e, ok := ParseLending(tx); ok && e.Person == person {
			out = append(out, tx)
		}
	}
	return ledger.SortNewestFirst(out)
}
