package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/core"
)

// KeyFunc maps a timestamp to a bucket key. Keys must sort lexicographically in
// time order.
type KeyFunc func(time.Time) string

// DayKey buckets by calendar day, e.g. "2025-01-31".
func DayKey(t time.Time) string { return t.Format("2006-01-02") }

// MinuteKey buckets by minute; seconds and below are dropped.
func MinuteKey(t time.Time) string { return t.Format("2006-01-02T15:04") }

// MonthKey buckets by calendar month, e.g. "2025-01".
func MonthKey(t time.Time) string { return t.Format("2006-01") }

type Group struct {
	Key          string             `json:"key"`
	Transactions []core.Transaction `json:"transactions"`
}

// Total sums the amounts in the group regardless of type.
func (g Group) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range g.Transactions {
		sum = sum.Add(tx.Amount)
	}
	return sum
}

// GroupByKey buckets transactions by key(date), computed in each timestamp's
// own location. Groups come back newest key first; members keep input order.
// Undated transactions are not grouped.
func GroupByKey(txs []core.Transaction, key KeyFunc) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		k := key(tx.Date)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key > groups[j].Key })
	return groups
}

// TopNByDescription ranks case-folded, trimmed descriptions by summed amount.
// Ties keep first-seen order. n <= 0 returns every row.
func TopNByDescription(txs []core.Transaction, n int) []core.DescriptionTotal {
	index := make(map[string]int)
	var rows []core.DescriptionTotal
	for _, tx := range txs {
		k := strings.ToLower(strings.TrimSpace(tx.Description))
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, core.DescriptionTotal{Description: k, Total: decimal.Zero})
		}
		rows[i].Total = rows[i].Total.Add(tx.Amount)
		rows[i].Count++
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total.GreaterThan(rows[j].Total) })
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// SortNewestFirst returns a copy ordered by date descending. Undated entries
// sink to the end; equal dates keep input order.
func SortNewestFirst(txs []core.Transaction) []core.Transaction {
	out := append([]core.Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		return a.After(b)
	})
	return out
}

// MostRecent returns at most n transactions, newest first.
func MostRecent(txs []core.Transaction, n int) []core.Transaction {
	out := SortNewestFirst(txs)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
