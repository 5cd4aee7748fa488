package reports

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
)

// ExpensesByCategory sums expenses per category, largest first.
// Income and transfers are not spending and are left out.
func ExpensesByCategory(txs []core.Transaction) []core.CategoryAmount {
	index := make(map[string]int)
	var rows []core.CategoryAmount
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		name := core.NormalizeCategory(tx.Category)
		if name == "" {
			name = core.CategoryOther
		}
		i, ok := index[name]
		if !ok {
			i = len(rows)
			index[name] = i
			rows = append(rows, core.CategoryAmount{Name: name, Amount: decimal.Zero})
		}
		rows[i].Amount = rows[i].Amount.Add(tx.Amount)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Amount.GreaterThan(rows[j].Amount) })
	return rows
}

// Bar is one income-versus-expense column of the activity chart.
type Bar struct {
	Key     string          `json:"key"`
	Label   string          `json:"label"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// ActivityBars builds the income/expense bars for period relative to now.
//
// A month gets one bar per active day in ascending order. A year always gets
// twelve bars, January to December. AllTime gets one bar per active month.
// Transfers are ignored.
func ActivityBars(txs []core.Transaction, period ledger.Period, now time.Time) []Bar {
	loc := now.Location()
	inPeriod := ledger.FilterByPeriod(txs, period, now)

	var bars []Bar
	index := make(map[string]int)
	if period == ledger.ThisYear {
		for m := time.January; m <= time.December; m++ {
			key := time.Date(now.Year(), m, 1, 0, 0, 0, 0, loc).Format("2006-01")
			index[key] = len(bars)
			bars = append(bars, Bar{Key: key, Label: m.String()[:3], Income: decimal.Zero, Expense: decimal.Zero})
		}
	}

	for _, tx := range inPeriod {
		if tx.Type == core.Transfer {
			continue
		}
		local := tx.Date.In(loc)
		var key, label string
		switch period {
		case ledger.ThisMonth:
			key, label = ledger.DayKey(local), strconv.Itoa(local.Day())
		default:
			key, label = ledger.MonthKey(local), local.Format("Jan 2006")
		}
		i, ok := index[key]
		if !ok {
			i = len(bars)
			index[key] = i
			bars = append(bars, Bar{Key: key, Label: label, Income: decimal.Zero, Expense: decimal.Zero})
		}
		if tx.Type == core.Income {
			bars[i].Income = bars[i].Income.Add(tx.Amount)
		} else {
			bars[i].Expense = bars[i].Expense.Add(tx.Amount)
		}
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Key < bars[j].Key })
	return bars
}
