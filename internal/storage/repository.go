// Package storage persists the ledger in SQLite and tracks which rows still
// have to reach the cloud mirror.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/core"
	"smartspend/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ store.Store          = (*SQLiteRepository)(nil)
	_ store.CategoryLister = (*SQLiteRepository)(nil)
)

// PendingSync identifies a row version waiting to be mirrored.
type PendingSync struct {
	ID      string
	Version int64
}

// Tombstone is a deleted transaction whose mirror row still has to go.
type Tombstone struct {
	ID         string
	OccurredAt string
}

// Date is the deleted transaction's date, or zero when it had none.
func (t Tombstone) Date() time.Time { return store.ParseDate(t.OccurredAt) }

type SyncStats struct {
	Pending        int64 `json:"pending"`
	Synced         int64 `json:"synced"`
	Failed         int64 `json:"failed"`
	PendingDeletes int64 `json:"pendingDeletes"`
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite has a single writer; share one connection between callers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newRepository(db), nil
}

func newRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, queries: New(db)}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := fromRow(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable transaction row", "id", row.ID, "error", err)
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Save replaces the whole ledger. Rows that disappear leave a tombstone so the
// mirror drops them too; every surviving row is queued for sync again.
func (r *SQLiteRepository) Save(ctx context.Context, txs []core.Transaction) error {
	return r.inTx(ctx, func(q *Queries) error {
		existing, err := q.ListTransactions(ctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		versions := make(map[string]int64, len(existing))
		keep := make(map[string]struct{}, len(txs))
		for _, tx := range txs {
			keep[tx.ID] = struct{}{}
		}
		for _, row := range existing {
			versions[row.ID] = row.Version
			if _, ok := keep[row.ID]; !ok {
				if err := q.InsertTombstone(ctx, row.ID, row.OccurredAt); err != nil {
					return fmt.Errorf("insert tombstone: %w", err)
				}
			}
		}
		if err := q.DeleteAllTransactions(ctx); err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
		// oldest first so that seq keeps the newest-first order on Load
		for i := len(txs) - 1; i >= 0; i-- {
			tx := txs[i]
			if tx.ID == "" {
				tx.ID = store.NewID()
			}
			row := toRow(tx)
			row.Version = versions[tx.ID] + 1
			if err := q.InsertTransaction(ctx, row); err != nil {
				return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
			}
			if err := q.DeleteTombstone(ctx, tx.ID); err != nil {
				return fmt.Errorf("clear tombstone: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Add(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.ID = store.NewID()
	row := toRow(tx)
	row.Version = 1
	if err := r.queries.InsertTransaction(ctx, row); err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"type", tx.Type,
		"account", tx.AccountID,
		"amount", tx.Amount.String())
	return tx, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateTransaction(ctx, toRow(tx))
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	return r.inTx(ctx, func(q *Queries) error {
		row, err := q.GetTransaction(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get transaction: %w", err)
		}
		if _, err := q.DeleteTransaction(ctx, id); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		if err := q.InsertTombstone(ctx, id, row.OccurredAt); err != nil {
			return fmt.Errorf("insert tombstone: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return fromRow(row)
}

// GetVersioned returns a transaction together with its current row version.
func (r *SQLiteRepository) GetVersioned(ctx context.Context, id string) (core.Transaction, int64, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, 0, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, 0, fmt.Errorf("get transaction: %w", err)
	}
	tx, err := fromRow(row)
	return tx, row.Version, err
}

func (r *SQLiteRepository) Categories(ctx context.Context) ([]string, error) {
	used, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return store.MergeCategories(used), nil
}

// PendingSync returns up to limit row versions not yet mirrored, oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]PendingSync, error) {
	items, err := r.queries.ListPendingSync(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) PendingDeletes(ctx context.Context, limit int) ([]Tombstone, error) {
	items, err := r.queries.ListPendingDeletes(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending deletes: %w", err)
	}
	return items, nil
}

// GetTombstone returns the pending delete for id, or store.ErrNotFound.
func (r *SQLiteRepository) GetTombstone(ctx context.Context, id string) (Tombstone, error) {
	t, err := r.queries.GetTombstone(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Tombstone{}, store.ErrNotFound
	}
	if err != nil {
		return Tombstone{}, fmt.Errorf("get tombstone: %w", err)
	}
	return t, nil
}

// MarkSynced records that version of id reached the mirror. A newer local
// edit keeps the row pending.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, version int64) error {
	n, err := r.queries.MarkSynced(ctx, id, version)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	if n == 0 {
		slog.DebugContext(ctx, "Transaction changed while syncing, keeping it pending", "id", id, "version", version)
		return nil
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id, "version", version)
	return nil
}

// MarkSyncError counts a failed attempt; after maxAttempts the row is parked
// as failed until RetryFailed.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string, cause error, maxAttempts int) error {
	if err := r.queries.MarkSyncError(ctx, id, errString(cause), int64(maxAttempts)); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id, "error", cause)
	return nil
}

func (r *SQLiteRepository) MarkDeleteSynced(ctx context.Context, id string) error {
	if err := r.queries.DeleteTombstone(ctx, id); err != nil {
		return fmt.Errorf("clear tombstone: %w", err)
	}
	slog.InfoContext(ctx, "Deletion synced", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkDeleteError(ctx context.Context, id string, cause error, maxAttempts int) error {
	if err := r.queries.MarkTombstoneError(ctx, id, errString(cause), int64(maxAttempts)); err != nil {
		return fmt.Errorf("mark tombstone sync error: %w", err)
	}
	slog.WarnContext(ctx, "Deletion marked with sync error", "id", id, "error", cause)
	return nil
}

// RetryFailed re-queues everything parked as failed and returns how many rows moved.
func (r *SQLiteRepository) RetryFailed(ctx context.Context) (int64, error) {
	n, err := r.queries.RetryFailed(ctx)
	if err != nil {
		return n, fmt.Errorf("retry failed syncs: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) SyncStats(ctx context.Context) (SyncStats, error) {
	s, err := r.queries.CountBySyncStatus(ctx)
	if err != nil {
		return SyncStats{}, fmt.Errorf("count sync status: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func toRow(tx core.Transaction) TransactionRow {
	row := TransactionRow{
		ID:          tx.ID,
		Amount:      tx.Amount.String(),
		Type:        string(tx.Type),
		Category:    tx.Category,
		Description: tx.Description,
		AccountID:   string(tx.AccountID),
	}
	if !tx.Date.IsZero() {
		row.OccurredAt = sql.NullString{String: tx.Date.Format(time.RFC3339Nano), Valid: true}
	}
	if tx.Type == core.Transfer && tx.TargetAccountID != "" {
		row.TargetAccountID = sql.NullString{String: string(tx.TargetAccountID), Valid: true}
	}
	return row
}

func fromRow(row TransactionRow) (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", row.Amount, err)
	}
	tx := core.Transaction{
		ID:          row.ID,
		Amount:      amount,
		Type:        core.TxType(row.Type),
		Category:    row.Category,
		Description: row.Description,
		AccountID:   core.AccountID(row.AccountID),
	}
	if row.OccurredAt.Valid {
		tx.Date = store.ParseDate(row.OccurredAt.String)
	}
	if row.TargetAccountID.Valid {
		tx.TargetAccountID = core.AccountID(row.TargetAccountID.String)
	}
	return tx, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
