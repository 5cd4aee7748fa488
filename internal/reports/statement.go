package reports

import (
	"time"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
)

// Statement is one calendar month of the ledger with its opening and closing
// balances.
type Statement struct {
	Month   string         `json:"month"`
	Opening core.Balances  `json:"opening"`
	Closing core.Balances  `json:"closing"`
	Summary core.Summary   `json:"summary"`
	Days    []ledger.Group `json:"days"`
}

// MonthlyStatement builds the statement for year/month in loc.
func MonthlyStatement(all []core.Transaction, year int, month time.Month, loc *time.Location) Statement {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	var inMonth []core.Transaction
	for _, tx := range all {
		if tx.Date.IsZero() || tx.Date.Before(start) || !tx.Date.Before(end) {
			continue
		}
		inMonth = append(inMonth, tx)
	}

	return Statement{
		Month:   start.Format("2006-01"),
		Opening: ledger.HistoricalBalanceAsOf(all, start.Add(-time.Nanosecond)),
		Closing: ledger.HistoricalBalanceAsOf(all, end.Add(-time.Nanosecond)),
		Summary: ledger.ComputeSummary(inMonth, ledger.AllAccounts, ledger.ComputeAccountBalances(all)),
		Days:    DailyHistory(inMonth, loc),
	}
}

// DailyHistory groups transactions by their calendar day in loc, newest day
// and newest entry first. A nil loc keys each day in the timestamp's own
// location.
func DailyHistory(txs []core.Transaction, loc *time.Location) []ledger.Group {
	key := ledger.DayKey
	if loc != nil {
		key = func(t time.Time) string { return ledger.DayKey(t.In(loc)) }
	}
	return ledger.GroupByKey(ledger.SortNewestFirst(txs), key)
}
