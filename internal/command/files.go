package command

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"smartspend/internal/core"
	"smartspend/internal/export"
	"smartspend/internal/ledger"
	"smartspend/internal/store"
)

type exportCmd struct {
	scope
	dir    string
	format string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "writes the ledger to CSV and XLSX files" }
func (*exportCmd) Usage() string {
	return `smartspend-cli export [-format all] [-dir .] [-period all] [-account all]

  Writes smartspend-<period>-<date>.csv and .xlsx. The workbook carries a
  summary sheet next to the transactions.

`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f, ledger.AllTime)
	f.StringVar(&c.dir, "dir", ".", "Directory to write into.")
	f.StringVar(&c.format, "format", "all", "csv, xlsx or all.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.parse(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	format := strings.ToLower(c.format)
	if format != "csv" && format != "xlsx" && format != "all" {
		fmt.Fprintf(stderr, "Error: -format %q: want csv, xlsx or all\n", c.format)
		return subcommands.ExitUsageError
	}

	return with(ctx, func(e *env) error {
		all, err := e.ledger.List(ctx)
		if err != nil {
			return err
		}
		at := now()
		txs := ledger.SortNewestFirst(c.apply(all, at))
		summary := ledger.Summarize(all, c.p, c.f, at)
		base := filepath.Join(c.dir, fmt.Sprintf("smartspend-%s-%s", c.p, at.Format("2006-01-02")))

		var g errgroup.Group
		if format != "xlsx" {
			g.Go(func() error {
				return writeFile(base+".csv", func(w io.Writer) error { return export.WriteCSV(w, txs) })
			})
		}
		if format != "csv" {
			g.Go(func() error {
				return writeFile(base+".xlsx", func(w io.Writer) error {
					return export.WriteXLSX(w, txs, summary, e.currency())
				})
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported %d transactions to %s.*\n", len(txs), base)
		return nil
	})
}

// writeFile renders into memory first so a failed export leaves no partial file.
func writeFile(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

type importCmd struct {
	replace bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "loads transactions from CSV or XLSX files" }
func (*importCmd) Usage() string {
	return `smartspend-cli import [-replace] <file.csv|file.xlsx>...

  Rows that cannot be read are skipped and counted. By default rows are
  checked first and the valid ones are added next to the existing ledger
  with fresh ids in one save; invalid rows are listed on stderr. -replace
  swaps the whole ledger for the imported rows and keeps their ids.

`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.replace, "replace", false, "Replace the ledger instead of appending.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintf(stderr, "Error: at least one file is required\n")
		return subcommands.ExitUsageError
	}

	var (
		txs     []core.Transaction
		origins []string
		skipped int
	)
	for _, path := range f.Args() {
		got, n, err := readFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		for i, tx := range got {
			origins = append(origins, fmt.Sprintf("%s entry %d (%s)", filepath.Base(path), i+1, tx.Description))
		}
		txs = append(txs, got...)
		skipped += n
	}

	return with(ctx, func(e *env) error {
		if c.replace {
			for i := range txs {
				if txs[i].ID == "" {
					txs[i].ID = store.NewID()
				}
			}
			if err := e.ledger.Replace(ctx, txs); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Imported %d transactions, skipped %d.\n", len(txs), skipped)
			return nil
		}

		added, rejected, err := e.ledger.Append(ctx, txs)
		if err != nil {
			return err
		}
		for _, re := range rejected {
			fmt.Fprintf(stderr, "Skipped %s: %v\n", origins[re.Row-1], re.Err)
		}
		fmt.Fprintf(stdout, "Imported %d transactions, skipped %d.\n", len(added), skipped+len(rejected))
		return nil
	})
}

func readFile(path string) ([]core.Transaction, int, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer fh.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return export.ReadCSV(fh)
	case ".xlsx":
		return export.ReadXLSX(fh)
	}
	return nil, 0, fmt.Errorf("%s: unsupported file type, want .csv or .xlsx", path)
}
