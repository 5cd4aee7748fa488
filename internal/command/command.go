// Package command implements the smartspend-cli subcommands. Every command
// opens the configured backend, runs one ledger operation and prints the
// result as markdown.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"smartspend/internal/backend"
	"smartspend/internal/cli"
	"smartspend/internal/config"
	"smartspend/internal/core"
	"smartspend/internal/log"
	"smartspend/internal/services"
	"smartspend/internal/store"
)

// Register adds every command to c, grouped the way `help` lists them.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	record := "record"
	c.Register(&addCmd{}, record)
	c.Register(&transferCmd{}, record)
	c.Register(&salaryCmd{}, record)
	c.Register(&receiveCmd{}, record)
	c.Register(&lendCmd{kind: lendKindLend}, record)
	c.Register(&lendCmd{kind: lendKindReturn}, record)
	c.Register(&bazarCmd{}, record)
	c.Register(&deleteCmd{}, record)

	report := "report"
	c.Register(&listCmd{}, report)
	c.Register(&summaryCmd{}, report)
	c.Register(&balancesCmd{}, report)
	c.Register(&statementCmd{}, report)
	c.Register(&topCmd{}, report)
	c.Register(&lendingCmd{}, report)
	c.Register(&tripsCmd{}, report)

	assist := "assist"
	c.Register(&adviseCmd{}, assist)
	c.Register(&categorizeCmd{}, assist)

	files := "files"
	c.Register(&exportCmd{}, files)
	c.Register(&importCmd{}, files)
}

// env is what a command runs against.
type env struct {
	cfg       *config.Config
	ledger    *services.LedgerService
	logger    *log.Logger
	assistant *cli.Assistant
	close     func() error
}

// openEnv builds the ledger from the environment. Tests replace it.
var openEnv = func(ctx context.Context) (*env, error) {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, err
	}
	// the CLI stays quiet unless asked otherwise
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
	logger := cli.SetupLogger(cfg, log.ComponentCLI, os.Stderr)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:    cfg,
		ledger: res.Ledger,
		logger: logger,
		close:  res.Cleanup,
	}, nil
}

// with opens the environment, runs fn and closes the environment. Errors
// are printed to stderr.
func with(ctx context.Context, fn func(e *env) error) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: could not open ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer func() {
		if e.assistant != nil {
			e.assistant.Close()
		}
		if e.close != nil {
			if err := e.close(); err != nil {
				fmt.Fprintf(stderr, "Warning: closing ledger: %v\n", err)
			}
		}
	}()

	if err := fn(e); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// assist returns the advisor and categorizer, building them on first use.
func (e *env) assist(ctx context.Context) *cli.Assistant {
	if e.assistant == nil {
		e.assistant = cli.BuildAssistant(ctx, e.cfg, e.logger)
	}
	return e.assistant
}

func (e *env) currency() string {
	if e.cfg == nil || e.cfg.Currency == "" {
		return core.DefaultCurrency
	}
	return e.cfg.Currency
}

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	// markdownStyle picks a glamour style; empty means detect from the terminal.
	markdownStyle = ""
	now           = time.Now
)

// printMarkdown renders md for the terminal. Rendering problems fall back
// to the raw markdown.
func printMarkdown(md string) {
	style := glamour.WithAutoStyle()
	if markdownStyle != "" {
		style = glamour.WithStandardStyle(markdownStyle)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// parseAmountFlag reads a required amount flag.
func parseAmountFlag(name, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, fmt.Errorf("-%s is required", name)
	}
	d, err := core.ParseAmount(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("-%s %q: %w", name, value, err)
	}
	return d, nil
}

// parseDateFlag accepts YYYY-MM-DD or RFC 3339. Empty means now.
func parseDateFlag(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return now(), nil
	}
	t := store.ParseDateIn(value, now().Location())
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return t, nil
}

// parseAccountFlag reads an account flag; empty falls back to def.
func parseAccountFlag(name, value string, def core.AccountID) (core.AccountID, error) {
	if strings.TrimSpace(value) == "" {
		if def == "" {
			return "", fmt.Errorf("-%s is required", name)
		}
		return def, nil
	}
	a, err := core.ParseAccountID(value)
	if err != nil {
		return "", fmt.Errorf("-%s %q: want salary, savings or cash", name, value)
	}
	return a, nil
}

const accountFlagUsage = "Account: salary, savings or cash."
