// Package store defines the persistence contract for the ledger and the
// normalization applied to records read back from any backend.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"smartspend/internal/core"
)

var ErrNotFound = errors.New("transaction not found")

// Store persists the full ledger. Load returns the most recently added
// transactions first.
type Store interface {
	Load(ctx context.Context) ([]core.Transaction, error)
	Save(ctx context.Context, txs []core.Transaction) error
	// Add assigns a fresh id, ignoring any id on tx, and returns the stored record.
	Add(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	Update(ctx context.Context, tx core.Transaction) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (core.Transaction, error)
	Close() error
}

// CategoryLister is implemented by stores that can suggest category labels.
type CategoryLister interface {
	Categories(ctx context.Context) ([]string, error)
}

// NewID returns a fresh transaction id.
func NewID() string { return uuid.NewString() }

// MergeCategories returns the recommended labels followed by extra ones in
// first-seen order, without blanks or duplicates.
func MergeCategories(extra ...[]string) []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(v string) {
		v = core.NormalizeCategory(v)
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, c := range core.RecommendedCategories() {
		add(c)
	}
	for _, list := range extra {
		for _, c := range list {
			add(c)
		}
	}
	return out
}
