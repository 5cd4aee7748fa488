// Package worker mirrors the SQLite ledger into the cloud spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smartspend/internal/amqp"
	"smartspend/internal/core"
	"smartspend/internal/sheets"
	"smartspend/internal/storage"
	"smartspend/internal/store"
)

// Repository is the part of the SQLite repository the worker needs.
type Repository interface {
	GetVersioned(ctx context.Context, id string) (core.Transaction, int64, error)
	GetTombstone(ctx context.Context, id string) (storage.Tombstone, error)
	PendingSync(ctx context.Context, limit int) ([]storage.PendingSync, error)
	PendingDeletes(ctx context.Context, limit int) ([]storage.Tombstone, error)
	MarkSynced(ctx context.Context, id string, version int64) error
	MarkSyncError(ctx context.Context, id string, cause error, maxAttempts int) error
	MarkDeleteSynced(ctx context.Context, id string) error
	MarkDeleteError(ctx context.Context, id string, cause error, maxAttempts int) error
}

var _ Repository = (*storage.SQLiteRepository)(nil)

// SweepResult counts what one ProcessPending pass did.
type SweepResult struct {
	Synced  int
	Deleted int
	Failed  int
}

// SyncWorker pushes pending upserts and deletions to the mirror.
type SyncWorker struct {
	repo       Repository
	sheets     sheets.TransactionWriter
	batchSize  int
	maxRetries int
}

func NewSyncWorker(repo Repository, writer sheets.TransactionWriter, batchSize, maxRetries int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	if maxRetries < 1 {
		maxRetries = 5
	}
	return &SyncWorker{
		repo:       repo,
		sheets:     writer,
		batchSize:  batchSize,
		maxRetries: maxRetries,
	}
}

// HandleSyncMessage applies one sync event. A failed attempt is recorded on
// the row before the error is returned, so the next sweep picks it up again.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"operation", msg.Operation,
		"version", msg.Version)

	switch msg.Operation {
	case amqp.OpDelete:
		return w.syncDelete(ctx, msg.ID)
	case amqp.OpUpsert, "":
		return w.syncUpsert(ctx, msg.ID)
	default:
		return fmt.Errorf("unknown sync operation %q", msg.Operation)
	}
}

// ProcessPending sweeps up to one batch of pending upserts and deletions.
// It covers events lost while the broker or the worker was down.
func (w *SyncWorker) ProcessPending(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	pending, err := w.repo.PendingSync(ctx, w.batchSize)
	if err != nil {
		return res, fmt.Errorf("get pending transactions: %w", err)
	}
	for _, p := range pending {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if err := w.syncUpsert(ctx, p.ID); err != nil {
			res.Failed++
			continue
		}
		res.Synced++
	}

	deletes, err := w.repo.PendingDeletes(ctx, w.batchSize)
	if err != nil {
		return res, fmt.Errorf("get pending deletes: %w", err)
	}
	for _, d := range deletes {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if err := w.pushDelete(ctx, d); err != nil {
			res.Failed++
			continue
		}
		res.Deleted++
	}

	if len(pending)+len(deletes) > 0 {
		slog.InfoContext(ctx, "Sync sweep completed",
			"synced", res.Synced,
			"deleted", res.Deleted,
			"errors", res.Failed)
	}
	return res, nil
}

func (w *SyncWorker) syncUpsert(ctx context.Context, id string) error {
	tx, version, err := w.repo.GetVersioned(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// Deleted after the event was published; the tombstone handles it.
		slog.DebugContext(ctx, "Transaction vanished before sync", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %s: %w", id, err)
	}

	ref, err := w.sheets.Upsert(ctx, tx)
	if err != nil {
		if markErr := w.repo.MarkSyncError(ctx, id, err, w.maxRetries); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("upsert to sheets: %w", err)
	}

	if err := w.repo.MarkSynced(ctx, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced transaction",
		"id", id,
		"version", version,
		"sheets_ref", ref,
		"amount", tx.Amount.StringFixed(2))
	return nil
}

func (w *SyncWorker) syncDelete(ctx context.Context, id string) error {
	t, err := w.repo.GetTombstone(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		slog.DebugContext(ctx, "Deletion already synced", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get tombstone %s: %w", id, err)
	}
	return w.pushDelete(ctx, t)
}

func (w *SyncWorker) pushDelete(ctx context.Context, t storage.Tombstone) error {
	if err := w.sheets.Delete(ctx, t.ID, t.Date()); err != nil {
		if markErr := w.repo.MarkDeleteError(ctx, t.ID, err, w.maxRetries); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark delete error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("delete from sheets: %w", err)
	}
	if err := w.repo.MarkDeleteSynced(ctx, t.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to clear tombstone", "id", t.ID, "error", err)
	}
	slog.InfoContext(ctx, "Successfully deleted transaction from sheets", "id", t.ID)
	return nil
}
