package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
)

// Trip is a cluster of bazar items entered within the same minute.
type Trip struct {
	Key   string             `json:"key"`
	Items []core.Transaction `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// BazarItems returns every bazar transaction regardless of date.
func BazarItems(txs []core.Transaction) []core.Transaction {
	return ledger.FilterByCategory(txs, core.CategoryBazar)
}

// BazarForMonth returns the bazar transactions in now's calendar month.
func BazarForMonth(txs []core.Transaction, now time.Time) []core.Transaction {
	return BazarItems(ledger.FilterByPeriod(txs, ledger.ThisMonth, now))
}

// BazarTrips buckets bazar items by minute, newest trip first.
func BazarTrips(txs []core.Transaction) []Trip {
	groups := ledger.GroupByKey(BazarItems(txs), ledger.MinuteKey)
	trips := make([]Trip, 0, len(groups))
	for _, g := range groups {
		trips = append(trips, Trip{Key: g.Key, Items: g.Transactions, Total: g.Total()})
	}
	return trips
}

// BazarMonthly rolls bazar spending up per month, newest month first.
func BazarMonthly(txs []core.Transaction) []MonthTotal {
	groups := ledger.GroupByKey(BazarItems(txs), ledger.MonthKey)
	out := make([]MonthTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, MonthTotal{Month: g.Key, Total: g.Total(), Count: len(g.Transactions)})
	}
	return out
}

func BazarLifetimeTotal(txs []core.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range BazarItems(txs) {
		sum = sum.Add(tx.Amount)
	}
	return sum
}

// BazarTopItems ranks bazar items by what was spent on them.
func BazarTopItems(txs []core.Transaction, n int) []core.DescriptionTotal {
	return ledger.TopNByDescription(BazarItems(txs), n)
}
