package sheets

import (
	"context"
	"time"

	"smartspend/internal/core"
)

// Ports for the cloud mirror of the ledger.
type (
	// TransactionWriter keeps one mirror row per transaction id.
	TransactionWriter interface {
		// Upsert writes tx, replacing the existing row with the same id.
		Upsert(ctx context.Context, tx core.Transaction) (rowRef string, err error)
		// Delete removes the row for id. date picks the yearly tab; zero means
		// the current year. Deleting a missing row is not an error.
		Delete(ctx context.Context, id string, date time.Time) error
	}

	// TransactionLister reads back the mirrored rows of one year.
	TransactionLister interface {
		ListTransactions(ctx context.Context, year int) ([]core.Transaction, error)
	}
)
