// Package ledger folds a list of transactions into balances, summaries and
// grouped views.
//
// Everything here is a pure function over []core.Transaction. Inputs are never
// mutated and nothing returns an error: records missing the field an aggregate
// needs are skipped for that aggregate only.
package ledger
