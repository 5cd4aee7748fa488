package ledger

import (
	"time"

	"smartspend/internal/core"
)

// ComputeAccountBalances folds every transaction into per-account balances.
//
// Income credits its account, expense debits it. A transfer debits the source
// and credits the target; with a missing or unknown target only the debit is
// applied. Unknown accounts are skipped.
func ComputeAccountBalances(txs []core.Transaction) core.Balances {
	var b core.Balances
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			b.Add(tx.AccountID, tx.Amount)
		case core.Expense:
			b.Add(tx.AccountID, tx.Amount.Neg())
		case core.Transfer:
			b.Add(tx.AccountID, tx.Amount.Neg())
			if tx.TargetAccountID.Valid() {
				b.Add(tx.TargetAccountID, tx.Amount)
			}
		}
	}
	return b
}

// HistoricalBalanceAsOf returns the balances as they stood at cutoff.
// Transactions dated strictly after cutoff, or without a date, are ignored.
func HistoricalBalanceAsOf(txs []core.Transaction, cutoff time.Time) core.Balances {
	kept := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.IsZero() || tx.Date.After(cutoff) {
			continue
		}
		kept = append(kept, tx)
	}
	return ComputeAccountBalances(kept)
}
