package command

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"smartspend/internal/core"
)

// cell keeps user text from breaking a markdown table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func writeTransactions(b *strings.Builder, txs []core.Transaction, currency string) {
	if len(txs) == 0 {
		b.WriteString("_No transactions._\n")
		return
	}
	b.WriteString("| Date | Type | Account | Category | Description | Amount | ID |\n")
	b.WriteString("|---|---|---|---|---|--:|---|\n")
	for _, tx := range txs {
		account := string(tx.AccountID)
		if tx.IsTransfer() {
			account += " → " + string(tx.TargetAccountID)
		}
		date := ""
		if !tx.Date.IsZero() {
			date = tx.Date.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			date, tx.Type, account, cell(tx.Category), cell(tx.Description),
			signed(tx, currency), tx.ID)
	}
}

// signed shows expenses as negative and transfers unsigned.
func signed(tx core.Transaction, currency string) string {
	s := core.FormatAmount(tx.Amount, currency)
	if tx.Type == core.Expense {
		return "-" + s
	}
	return s
}

func writeBalances(b *strings.Builder, bal core.Balances, currency string) {
	b.WriteString("| Account | Balance |\n|---|--:|\n")
	for _, a := range core.Accounts() {
		fmt.Fprintf(b, "| %s | %s |\n", a.Label(), money(bal.Of(a), currency))
	}
	fmt.Fprintf(b, "| **Total** | **%s** |\n", money(bal.Total(), currency))
}

// money formats a signed amount; FormatAmount only sees magnitudes.
func money(d decimal.Decimal, currency string) string {
	if d.IsNegative() {
		return "-" + core.FormatAmount(d.Neg(), currency)
	}
	return core.FormatAmount(d, currency)
}

func writeSaved(b *strings.Builder, verb string, tx core.Transaction, currency string) {
	fmt.Fprintf(b, "%s **%s** (%s) on %s.\n\n", verb, core.FormatAmount(tx.Amount, currency),
		cell(tx.Description), tx.Date.Format("2006-01-02"))
	fmt.Fprintf(b, "ID: `%s`\n", tx.ID)
}
