package google

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/core"
	"smartspend/internal/store"
)

// Column layout of a transactions tab, A to H.
var header = []any{"ID", "Date", "Type", "Account", "Target", "Category", "Description", "Amount"}

const (
	colID = iota
	colDate
	colType
	colAccount
	colTarget
	colCategory
	colDescription
	colAmount
	numCols
)

func encodeRow(tx core.Transaction) []any {
	date := ""
	if !tx.Date.IsZero() {
		date = tx.Date.Format(time.RFC3339)
	}
	return []any{
		tx.ID,
		date,
		string(tx.Type),
		string(tx.AccountID),
		string(tx.TargetAccountID),
		tx.Category,
		tx.Description,
		tx.Amount.String(),
	}
}

// decodeRow parses a mirrored row. Header and malformed rows report false.
func decodeRow(cols []string) (core.Transaction, bool) {
	if len(cols) < numCols {
		return core.Transaction{}, false
	}
	id := strings.TrimSpace(cols[colID])
	if id == "" || strings.EqualFold(id, "ID") {
		return core.Transaction{}, false
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(cols[colAmount]), ",", "."))
	if err != nil || !amount.IsPositive() {
		return core.Transaction{}, false
	}
	typ, err := core.ParseTxType(cols[colType])
	if err != nil {
		return core.Transaction{}, false
	}
	tx := core.Transaction{
		ID:          id,
		Amount:      amount,
		Type:        typ,
		Category:    core.NormalizeCategory(cols[colCategory]),
		Description: cols[colDescription],
		Date:        store.ParseDate(cols[colDate]),
		AccountID:   core.AccountID(strings.TrimSpace(cols[colAccount])),
	}
	if typ == core.Transfer {
		tx.TargetAccountID = core.AccountID(strings.TrimSpace(cols[colTarget]))
	}
	return tx, true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// rowOf returns the 1-based sheet row holding id in column A, or 0.
func rowOf(colA [][]interface{}, id string) int {
	for i, row := range colA {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}
