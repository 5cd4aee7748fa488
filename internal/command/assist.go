package command

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"smartspend/internal/ledger"
)

type adviseCmd struct {
	scope
}

func (*adviseCmd) Name() string     { return "advise" }
func (*adviseCmd) Synopsis() string { return "asks the model for advice on your spending" }
func (*adviseCmd) Usage() string {
	return `smartspend-cli advise [-period all] [-account all]

  Needs GEMINI_API_KEY. Answers are cached for ADVICE_CACHE_TTL, in Redis
  when REDIS_ADDR is set.

`
}

func (c *adviseCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f, ledger.AllTime) }

func (c *adviseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.parse(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return with(ctx, func(e *env) error {
		adv := e.assist(ctx).Advisor
		if adv == nil {
			return fmt.Errorf("advisor is not configured, set GEMINI_API_KEY")
		}
		all, err := e.ledger.List(ctx)
		if err != nil {
			return err
		}
		txs := c.apply(all, now())
		fmt.Fprintf(stderr, "Analyzing %d transactions...\n", len(txs))
		printMarkdown(adv.GetAdvice(ctx, txs))
		return nil
	})
}

type categorizeCmd struct{}

func (*categorizeCmd) Name() string     { return "categorize" }
func (*categorizeCmd) Synopsis() string { return "suggests a category for a description" }
func (*categorizeCmd) Usage() string {
	return `smartspend-cli categorize <description>

  Uses the model when GEMINI_API_KEY is set and the offline keyword rules
  otherwise. Prints nothing and exits 1 when there is no suggestion.

`
}
func (*categorizeCmd) SetFlags(*flag.FlagSet) {}

func (c *categorizeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	desc := strings.TrimSpace(strings.Join(f.Args(), " "))
	if desc == "" {
		fmt.Fprintf(stderr, "Error: a description is required\n")
		return subcommands.ExitUsageError
	}
	var found bool
	status := with(ctx, func(e *env) error {
		if s := e.assist(ctx).Categorizer.SuggestCategory(ctx, desc); s != nil {
			found = true
			fmt.Fprintln(stdout, *s)
		}
		return nil
	})
	if status == subcommands.ExitSuccess && !found {
		return subcommands.ExitFailure
	}
	return status
}
