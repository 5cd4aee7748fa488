package command

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"smartspend/internal/core"
)

type addCmd struct {
	txType   string
	amount   string
	category string
	desc     string
	account  string
	target   string
	date     string
	suggest  bool
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "records an income, expense or transfer" }
func (*addCmd) Usage() string {
	return `smartspend-cli add -amount <n> -desc <text> [-type expense] [-account cash] [-category <c>] [-to <account>] [-date YYYY-MM-DD]

  Records a transaction. Expenses and incomes need a description; transfers
  need a target account (-to). With -suggest and no -category, the category
  is suggested from the description.

Usage Examples:
$ smartspend-cli add -amount 250 -desc "Lunch" -category Food
$ smartspend-cli add -type transfer -account salary -to savings -amount 5000

`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.txType, "type", string(core.Expense), "Transaction type: income, expense or transfer.")
	f.StringVar(&c.amount, "amount", "", "Positive amount, dot or comma decimal separator.")
	f.StringVar(&c.category, "category", "", "Category label.")
	f.StringVar(&c.desc, "desc", "", "Description.")
	f.StringVar(&c.account, "account", string(core.Cash), accountFlagUsage)
	f.StringVar(&c.target, "to", "", "Target account for transfers.")
	f.StringVar(&c.date, "date", "", "Date as YYYY-MM-DD. Defaults to now.")
	f.BoolVar(&c.suggest, "suggest", false, "Suggest a category when -category is empty.")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	txType, err := core.ParseTxType(c.txType)
	if err != nil {
		fmt.Fprintf(stderr, "Error: -type %q: want income, expense or transfer\n", c.txType)
		return subcommands.ExitUsageError
	}
	amount, err := parseAmountFlag("amount", c.amount)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	date, err := parseDateFlag(c.date)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	account, err := parseAccountFlag("account", c.account, "")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	tx := core.Transaction{
		Amount:      amount,
		Type:        txType,
		Category:    c.category,
		Description: strings.TrimSpace(c.desc),
		Date:        date,
		AccountID:   account,
	}
	if c.target != "" {
		if tx.TargetAccountID, err = parseAccountFlag("to", c.target, ""); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if txType == core.Transfer {
		tx.Category = core.CategoryTransfer
	}

	return with(ctx, func(e *env) error {
		if tx.Category == "" && c.suggest {
			if s := e.assist(ctx).Categorizer.SuggestCategory(ctx, tx.Description); s != nil {
				tx.Category = *s
			}
		}
		saved, err := e.ledger.Add(ctx, tx)
		if err != nil {
			return err
		}
		var b strings.Builder
		writeSaved(&b, "Recorded "+string(saved.Type), saved, e.currency())
		printMarkdown(b.String())
		return nil
	})
}

type transferCmd struct {
	from   string
	to     string
	amount string
	desc   string
	date   string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "moves money between two accounts" }
func (*transferCmd) Usage() string {
	return `smartspend-cli transfer -from salary -to savings -amount <n> [-desc <text>] [-date YYYY-MM-DD]

  Moves money between accounts. The total balance does not change.

`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", string(core.Salary), "Source account.")
	f.StringVar(&c.to, "to", "", "Target account.")
	f.StringVar(&c.amount, "amount", "", "Positive amount.")
	f.StringVar(&c.desc, "desc", "", "Description. Defaults to \"Transfer to <account>\".")
	f.StringVar(&c.date, "date", "", "Date as YYYY-MM-DD. Defaults to now.")
}

func (c *transferCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := parseAccountFlag("from", c.from, "")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := parseAccountFlag("to", c.to, "")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := parseAmountFlag("amount", c.amount)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	date, err := parseDateFlag(c.date)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if from == to {
		fmt.Fprintf(stderr, "Warning: transferring %s to itself has no effect on balances.\n", from)
	}

	return with(ctx, func(e *env) error {
		tx, err := e.ledger.Transfer(ctx, from, to, amount, date, strings.TrimSpace(c.desc))
		if err != nil {
			return err
		}
		var b strings.Builder
		writeSaved(&b, "Transferred", tx, e.currency())
		printMarkdown(b.String())
		return nil
	})
}

type salaryCmd struct {
	amount string
	desc   string
	date   string
}

func (*salaryCmd) Name() string     { return "salary" }
func (*salaryCmd) Synopsis() string { return "records salary income on the salary account" }
func (*salaryCmd) Usage() string {
	return `smartspend-cli salary -amount <n> [-desc <text>] [-date YYYY-MM-DD]

`
}

func (c *salaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "Positive amount.")
	f.StringVar(&c.desc, "desc", "", "Description. Defaults to \"Monthly Salary\".")
	f.StringVar(&c.date, "date", "", "Date as YYYY-MM-DD. Defaults to now.")
}

func (c *salaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := parseAmountFlag("amount", c.amount)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	date, err := parseDateFlag(c.date)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return with(ctx, func(e *env) error {
		tx, err := e.ledger.AddSalary(ctx, amount, date, strings.TrimSpace(c.desc))
		if err != nil {
			return err
		}
		var b strings.Builder
		writeSaved(&b, "Recorded salary", tx, e.currency())
		printMarkdown(b.String())
		return nil
	})
}

type receiveCmd struct {
	account string
	amount  string
	desc    string
	date    string
}

func (*receiveCmd) Name() string     { return "receive" }
func (*receiveCmd) Synopsis() string { return "records money received into an account" }
func (*receiveCmd) Usage() string {
	return `smartspend-cli receive -account cash -amount <n> [-desc <text>] [-date YYYY-MM-DD]

`
}

func (c *receiveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", string(core.Cash), accountFlagUsage)
	f.StringVar(&c.amount, "amount", "", "Positive amount.")
	f.StringVar(&c.desc, "desc", "", "Description. Defaults to \"Received Money\".")
	f.StringVar(&c.date, "date", "", "Date as YYYY-MM-DD. Defaults to now.")
}

func (c *receiveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	account, err := parseAccountFlag("account", c.account, core.Cash)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := parseAmountFlag("amount", c.amount)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	date, err := parseDateFlag(c.date)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return with(ctx, func(e *env) error {
		tx, err := e.ledger.AddReceived(ctx, account, amount, date, strings.TrimSpace(c.desc))
		if err != nil {
			return err
		}
		var b strings.Builder
		writeSaved(&b, "Received", tx, e.currency())
		printMarkdown(b.String())
		return nil
	})
}

type lendKind int

const (
	lendKindLend lendKind = iota
	lendKindReturn
)

// lendCmd serves both `lend` and `return`.
type lendCmd struct {
	kind    lendKind
	person  string
	account string
	amount  string
	date    string
}

func (c *lendCmd) Name() string {
	if c.kind == lendKindReturn {
		return "return"
	}
	return "lend"
}

func (c *lendCmd) Synopsis() string {
	if c.kind == lendKindReturn {
		return "records a person paying borrowed money back"
	}
	return "records money lent to a person"
}

func (c *lendCmd) Usage() string {
	return fmt.Sprintf(`smartspend-cli %s -person <name> -amount <n> [-account cash] [-date YYYY-MM-DD]

  See "smartspend-cli lending" for who still owes what.

`, c.Name())
}

func (c *lendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.person, "person", "", "Person's name.")
	f.StringVar(&c.account, "account", string(core.Cash), accountFlagUsage)
	f.StringVar(&c.amount, "amount", "", "Positive amount.")
	f.StringVar(&c.date, "date", "", "Date as YYYY-MM-DD. Defaults to now.")
}

func (c *lendCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.person) == "" {
		fmt.Fprintf(stderr, "Error: -person is required\n")
		return subcommands.ExitUsageError
	}
	account, err := parseAccountFlag("account", c.account, core.Cash)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := parseAmountFlag("amount", c.amount)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	date, err := parseDateFlag(c.date)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return with(ctx, func(e *env) error {
		record, verb := e.ledger.Lend, "Lent"
		if c.kind == lendKindReturn {
			record, verb = e.ledger.RecordReturn, "Got back"
		}
		tx, err := record(ctx, c.person, account, amount, date)
		if err != nil {
			return err
		}
		var b strings.Builder
		writeSaved(&b, verb, tx, e.currency())
		printMarkdown(b.String())
		return nil
	})
}

type bazarCmd struct {
	account string
	date    string
}

func (*bazarCmd) Name() string     { return "bazar" }
func (*bazarCmd) Synopsis() string { return "records a grocery trip as item=amount pairs" }
func (*bazarCmd) Usage() string {
	return `smartspend-cli bazar [-account cash] [-date <RFC3339>] <item>=<amount>...

  Records each item as a Bazar expense. Items given together share one
  timestamp and therefore form one trip.

Usage Examples:
$ smartspend-cli bazar rice=420 onion=85 "green chili=20"

`
}

func (c *bazarCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", string(core.Cash), accountFlagUsage)
	f.StringVar(&c.date, "date", "", "Time of the trip. Defaults to now.")
}

type bazarItem struct {
	name   string
	amount string
}

func (c *bazarCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintf(stderr, "Error: at least one item=amount is required\n")
		return subcommands.ExitUsageError
	}
	items := make([]bazarItem, 0, f.NArg())
	for _, arg := range f.Args() {
		name, amount, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			fmt.Fprintf(stderr, "Error: %q is not item=amount\n", arg)
			return subcommands.ExitUsageError
		}
		items = append(items, bazarItem{name: strings.TrimSpace(name), amount: amount})
	}
	account, err := parseAccountFlag("account", c.account, core.Cash)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	at, err := parseDateFlag(c.date)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return with(ctx, func(e *env) error {
		var saved []core.Transaction
		for _, it := range items {
			amount, err := core.ParseAmount(it.amount)
			if err != nil {
				return fmt.Errorf("%s: %w", it.name, err)
			}
			tx, err := e.ledger.AddBazarItem(ctx, it.name, account, amount, at)
			if err != nil {
				return fmt.Errorf("%s: %w", it.name, err)
			}
			saved = append(saved, tx)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "# Bazar trip, %d items\n\n", len(saved))
		writeTransactions(&b, saved, e.currency())
		printMarkdown(b.String())
		return nil
	})
}

type deleteCmd struct{}

func (*deleteCmd) Name() string           { return "delete" }
func (*deleteCmd) Synopsis() string       { return "deletes transactions by id" }
func (*deleteCmd) Usage() string          { return "smartspend-cli delete <id>...\n\n" }
func (*deleteCmd) SetFlags(*flag.FlagSet) {}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintf(stderr, "Error: at least one transaction id is required\n")
		return subcommands.ExitUsageError
	}
	return with(ctx, func(e *env) error {
		for _, id := range f.Args() {
			if err := e.ledger.Delete(ctx, id); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
			fmt.Fprintf(stdout, "Deleted %s\n", id)
		}
		return nil
	})
}
