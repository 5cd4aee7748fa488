package command

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
	"smartspend/internal/reports"
	"smartspend/internal/store"
)

// scope is the -period/-account pair shared by the report commands.
type scope struct {
	period  string
	account string

	p ledger.Period
	f ledger.AccountFilter
}

func (s *scope) setFlags(f *flag.FlagSet, defPeriod ledger.Period) {
	f.StringVar(&s.period, "period", string(defPeriod), "Period: month, year or all.")
	f.StringVar(&s.account, "account", string(ledger.AllAccounts), "Account filter: all, salary, savings or cash.")
}

func (s *scope) parse() error {
	var err error
	if s.p, err = ledger.ParsePeriod(s.period); err != nil {
		return fmt.Errorf("-period %q: want month, year or all", s.period)
	}
	if s.f, err = ledger.ParseAccountFilter(s.account); err != nil {
		return fmt.Errorf("-account %q: want all, salary, savings or cash", s.account)
	}
	return nil
}

func (s *scope) apply(all []core.Transaction, at time.Time) []core.Transaction {
	return ledger.FilterByAccount(ledger.FilterByPeriod(all, s.p, at), s.f)
}

func (s *scope) title() string {
	t := "This month"
	switch s.p {
	case ledger.ThisYear:
		t = "This year"
	case ledger.AllTime:
		t = "All time"
	}
	if !s.f.All() {
		t += ", " + s.f.Account().Label()
	}
	return t
}

type listCmd struct {
	scope
	limit int
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "lists transactions, newest first" }
func (*listCmd) Usage() string {
	return `smartspend-cli list [-period month] [-account all] [-n 0]

`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f, ledger.ThisMonth)
	f.IntVar(&c.limit, "n", 0, "Show at most n transactions. 0 shows all.")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.parse(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return with(ctx, func(e *env) error {
		all, err := e.ledger.List(ctx)
		if err != nil {
			return err
		}
		txs := ledger.SortNewestFirst(c.apply(all, now()))
		if c.limit > 0 {
			txs = ledger.MostRecent(txs, c.limit)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "# Transactions: %s\n\n", c.title())
		writeTransactions(&b, txs, e.currency())
		printMarkdown(b.String())
		return nil
	})
}

type summaryCmd struct {
	scope
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "shows income, expenses and balances for a period" }
func (*summaryCmd) Usage() string {
	return `smartspend-cli summary [-period month] [-account all]

  Income and expenses follow the period and account filter. Account
  balances are always lifetime figures.

`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f, ledger.ThisMonth) }

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.parse(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return with(ctx, func(e *env) error {
		all, err := e.ledger.List(ctx)
		if err != nil {
			return err
		}
		sum := ledger.Summarize(all, c.p, c.f, now())
		cur := e.currency()

		var b strings.Builder
		fmt.Fprintf(&b, "# Summary: %s\n\n", c.title())
		b.WriteString("| | Amount |\n|---|--:|\n")
		fmt.Fprintf(&b, "| Income | %s |\n", money(sum.TotalIncome, cur))
		fmt.Fprintf(&b, "| Expenses | %s |\n", money(sum.TotalExpenses, cur))
		fmt.Fprintf(&b, "| Net | %s |\n", money(sum.Balance, cur))
		fmt.Fprintf(&b, "| Savings rate | %s%% |\n\n", sum.SavingsRate.StringFixed(1))
		b.WriteString("## Balances\n\n")
		writeBalances(&b, sum.LifetimeBalances(), cur)

		if cats := reports.ExpensesByCategory(c.apply(all, now())); len(cats) > 0 {
			b.WriteString("\n## Expenses by category\n\n| Category | Amount |\n|---|--:|\n")
			for _, ca := range cats {
				fmt.Fprintf(&b, "| %s | %s |\n", cell(ca.Name), money(ca.Amount, cur))
			}
		}
		printMarkdown(b.String())
		return nil
	})
}

type balancesCmd struct {
	asOf string
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "shows account balances, now or as of a date" }
func (*balancesCmd) Usage() string {
	return `smartspend-cli balances [-asof YYYY-MM-DD]

  A bare date means the end of that day.

`
}

func (c *balancesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asOf, "asof", "", "Show balances as of this date.")
}

func (c *balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var cutoff time.Time
	if c.asOf != "" {
		cutoff = store.ParseDateIn(c.asOf, now().Location())
		if cutoff.IsZero() {
			fmt.Fprintf(stderr, "Error: invalid -asof %q, want YYYY-MM-DD\n", c.asOf)
			return subcommands.ExitUsageError
		}
		if len(strings.TrimSpace(c.asOf)) == len("2006-01-02") {
			cutoff = cutoff.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}
	return with(ctx, func(e *env) error {
		all, err := e.ledger.List(ctx)
		if err != nil {
			return err
		}
		var b strings.Builder
		bal := ledger.ComputeAccountBalances(all)
		if cutoff.IsZero() {
			b.WriteString("# Balances\n\n")
		} else {
			bal = ledger.HistoricalBalanceAsOf(all, cutoff)
			fmt.Fprintf(&b, "# Balances as of %s\n\n", cutoff.Format("2006-01-02"))
		}
		writeBalances(&b, bal, e.currency())
		printMarkdown(b.String())
		return nil
	})
}

type statementCmd struct {
	month string
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "prints a monthly statement with opening and closing balances" }
func (*statementCmd) Usage() string {
	return `smartspend-cli statement [-month YYYY-MM]

`
}

func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "month", "", "Month as YYYY-MM. Defaults to the current month.")
}

func (c *statementCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	at := now()
	if c.month != "" {
		m, err := time.ParseInLocation("2006-01", c.month, at.Location())
		if err != nil {
			fmt.Fprintf(stderr, "Error: invalid -month %q, want YYYY-MM\n", c.month)
			return subcommands.ExitUsageError
		}
		at = m
	}
	return with(ctx, func(e *env) error {
		all, err := e.ledger.List(ctx)
		if err != nil {
			return err
		}
		st := reports.MonthlyStatement(all, at.Year(), at.Month(), at.Location())
		cur := e.currency()

		var b strings.Builder
		fmt.Fprintf(&b, "# Statement %s\n\n", st.Month)
		b.WriteString("| Account | Opening | Closing |\n|---|--:|--:|\n")
		for _, a := range core.Accounts() {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", a.Label(), money(st.Opening.Of(a), cur), money(st.Closing.Of(a), cur))
		}
		fmt.Fprintf(&b, "| **Total** | **%s** | **%s** |\n\n", money(st.Opening.Total(), cur), money(st.Closing.Total(), cur))
		fmt.Fprintf(&b, "Income %s, expenses %s.\n", money(st.Summary.TotalIncome, cur), money(st.Summary.TotalExpenses, cur))
		for _, day := range st.Days {
			fmt.Fprintf(&b, "\n## %s\n\n", day.Key)
			writeTransactions(&b, day.Transactions, cur)
		}
		printMarkdown(b.String())
		return nil
	})
}

type topCmd struct {
	scope
	n int
}

func (*topCmd) Name() string     { return "top" }
func (*topCmd) Synopsis() string { return "ranks expenses by description" }
func (*topCmd) Usage() string {
	return `smartspend-cli top [-n 5] [-period month] [-account all]

`
}

func (c *topCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f, ledger.ThisMonth)
	f.IntVar(&c.n, "n", 5, "Number of entries, 1 to 100.")
}

func (c *topCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.parse(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	n := min(max(c.n, 1), 100)
	return with(ctx, func(e *env) error {
		all, err := e.ledger.List(ctx)
		if err != nil {
			return err
		}
		var expenses []core.Transaction
		for _, tx := range c.apply(all, now()) {
			if tx.Type == core.Expense {
				expenses = append(expenses, tx)
			}
		}
		var b strings.Builder
		fmt.Fprintf(&b, "# Top expenses: %s\n\n", c.title())
		top := ledger.TopNByDescription(expenses, n)
		if len(top) == 0 {
			b.WriteString("_No expenses._\n")
		} else {
			b.WriteString("| # | Description | Count | Total |\n|--:|---|--:|--:|\n")
			for i, t := range top {
				fmt.Fprintf(&b, "| %d | %s | %d | %s |\n", i+1, cell(t.Description), t.Count, money(t.Total, e.currency()))
			}
		}
		printMarkdown(b.String())
		return nil
	})
}

type lendingCmd struct {
	query  string
	person string
}

func (*lendingCmd) Name() string     { return "lending" }
func (*lendingCmd) Synopsis() string { return "shows who owes money, or one person's history" }
func (*lendingCmd) Usage() string {
	return `smartspend-cli lending [-q <name>] [-person <name>]

`
}

func (c *lendingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "Only people whose name contains this text.")
	f.StringVar(&c.person, "person", "", "Show the lending history of one person.")
}

func (c *lendingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return with(ctx, func(e *env) error {
		all, err := e.ledger.List(ctx)
		if err != nil {
			return err
		}
		cur := e.currency()
		var b strings.Builder

		if c.person != "" {
			fmt.Fprintf(&b, "# Lending history: %s\n\n", cell(c.person))
			writeTransactions(&b, reports.PersonHistory(all, c.person), cur)
			printMarkdown(b.String())
			return nil
		}

		dir := reports.LendingDirectory(all)
		fmt.Fprintf(&b, "# Lending\n\nOutstanding: **%s**\n\n", money(reports.TotalOutstanding(dir), cur))
		dir = reports.SearchPeople(dir, c.query)
		if len(dir) == 0 {
			b.WriteString("_Nobody found._\n")
		} else {
			b.WriteString("| Person | Owes | Last activity |\n|---|--:|---|\n")
			for _, p := range dir {
				fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(p.Name), money(p.Balance, cur), p.LastActivity.Format("2006-01-02"))
			}
		}
		printMarkdown(b.String())
		return nil
	})
}

type tripsCmd struct {
	limit int
}

func (*tripsCmd) Name() string     { return "trips" }
func (*tripsCmd) Synopsis() string { return "lists bazar trips with their items" }
func (*tripsCmd) Usage() string {
	return `smartspend-cli trips [-n 5]

`
}

func (c *tripsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 5, "Show the n most recent trips. 0 shows all.")
}

func (c *tripsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return with(ctx, func(e *env) error {
		all, err := e.ledger.List(ctx)
		if err != nil {
			return err
		}
		cur := e.currency()
		trips := reports.BazarTrips(all)
		if c.limit > 0 && len(trips) > c.limit {
			trips = trips[:c.limit]
		}

		var b strings.Builder
		fmt.Fprintf(&b, "# Bazar trips\n\nLifetime spend: **%s**\n", money(reports.BazarLifetimeTotal(all), cur))
		for _, t := range trips {
			fmt.Fprintf(&b, "\n## %s, %s\n\n", t.Key, money(t.Total, cur))
			for _, it := range t.Items {
				fmt.Fprintf(&b, "- %s: %s\n", cell(it.Description), money(it.Amount, cur))
			}
		}
		printMarkdown(b.String())
		return nil
	})
}
