// Package export writes the ledger as CSV or XLSX and reads CSV back.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"smartspend/internal/core"
	"smartspend/internal/store"
)

// Columns shared by the CSV file and the Transactions sheet.
var Columns = []string{"id", "date", "type", "account", "target", "category", "description", "amount"}

// WriteCSV writes a header row then one row per transaction.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		if err := cw.Write(recordRow(tx)); err != nil {
			return fmt.Errorf("write csv row %s: %w", tx.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses rows in the WriteCSV layout. The header is optional. Rows
// that cannot be normalized are counted in skipped.
func ReadCSV(r io.Reader) (txs []core.Transaction, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	first := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return txs, skipped, fmt.Errorf("read csv: %w", err)
		}
		if first {
			first = false
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), Columns[0]) {
				continue
			}
		}
		tx, ok := parseRow(row)
		if !ok {
			skipped++
			continue
		}
		txs = append(txs, tx)
	}
	return txs, skipped, nil
}

func recordRow(tx core.Transaction) []string {
	date := ""
	if !tx.Date.IsZero() {
		date = tx.Date.Format(time.RFC3339Nano)
	}
	return []string{
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

func parseRow(row []string) (core.Transaction, bool) {
	if len(row) < len(Columns) {
		return core.Transaction{}, false
	}
	tx, err := store.Normalize(store.Record{
		ID:              row[0],
		Date:            row[1],
		Type:            strings.ToLower(strings.TrimSpace(row[2])),
		AccountID:       row[3],
		TargetAccountID: row[4],
		Category:        row[5],
		Description:     row[6],
		Amount:          []byte(strconv.Quote(strings.TrimSpace(row[7]))),
	})
	if err != nil {
		return core.Transaction{}, false
	}
	return tx, true
}
