package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"smartspend/internal/core"
)

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
)

// WriteXLSX writes a workbook with a Transactions sheet and a Summary sheet.
// Amounts are numeric cells; the summary also shows them formatted in currency.
func WriteXLSX(w io.Writer, txs []core.Transaction, summary core.Summary, currency string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(transactionsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, tx := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		date := ""
		if !tx.Date.IsZero() {
			date = tx.Date.Format(time.RFC3339Nano)
		}
		row := []any{
			tx.ID,
			date,
			string(tx.Type),
			string(tx.AccountID),
			string(tx.TargetAccountID),
			tx.Category,
			tx.Description,
			tx.Amount.InexactFloat64(),
		}
		if err := f.SetSheetRow(transactionsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(transactionsSheet, "G", "G", 40); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	lines := []struct {
		label string
		value decimal.Decimal
	}{
		{"Total income", summary.TotalIncome},
		{"Total expenses", summary.TotalExpenses},
		{"Balance", summary.Balance},
		{"Salary account", summary.SalaryAccountBalance},
		{"Savings account", summary.SavingsAccountBalance},
		{"Cash", summary.CashBalance},
	}
	head := []any{"Item", "Amount", "Display"}
	if err := f.SetSheetRow(summarySheet, "A1", &head); err != nil {
		return err
	}
	for i, l := range lines {
		row := []any{l.label, l.value.InexactFloat64(), core.FormatAmount(l.value, currency)}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	rate := []any{"Savings rate (%)", summary.SavingsRate.Round(2).InexactFloat64(), summary.SavingsRate.StringFixed(1) + "%"}
	if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", len(lines)+2), &rate); err != nil {
		return fmt.Errorf("write summary row: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ReadXLSX reads the Transactions sheet of a workbook written by WriteXLSX.
func ReadXLSX(r io.Reader) (txs []core.Transaction, skipped int, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := transactionsSheet
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, 0, fmt.Errorf("workbook has no sheets")
		}
		sheet = list[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, 0, fmt.Errorf("read rows: %w", err)
	}
	for i, row := range rows {
		if i == 0 && len(row) > 0 && strings.EqualFold(row[0], Columns[0]) {
			continue
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
