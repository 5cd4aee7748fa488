package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/amqp"
	"smartspend/internal/core"
	mirror "smartspend/internal/sheets/memory"
	"smartspend/internal/storage"
)

type failingWriter struct{ err error }

func (f failingWriter) Upsert(context.Context, core.Transaction) (string, error) { return "", f.err }
func (f failingWriter) Delete(context.Context, string, time.Time) error { return f.err }

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func addTx(t *testing.T, repo *storage.SQLiteRepository, desc string) core.Transaction {
	t.Helper()
	tx, err := repo.Add(context.Background(), core.Transaction{
		Amount:      decimal.NewFromInt(120),
		Type:        core.Expense,
		Category:    core.CategoryFood,
		Description: desc,
		Date:        time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC),
		AccountID:   core.Cash,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	return tx
}

func TestHandleSyncMessage_UpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	m := mirror.New()
	w := NewSyncWorker(repo, m, 10, 3)

	tx := addTx(t, repo, "rice")
	if err := w.HandleSyncMessage(ctx, amqp.NewUpsertMessage(tx.ID, 1)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("mirror rows = %d, want 1", m.Len())
	}
	stats, _ := repo.SyncStats(ctx)
	if stats.Synced != 1 || stats.Pending != 0 {
		t.Fatalf("unexpected stats after upsert %+v", stats)
	}

	if err := repo.Delete(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := w.HandleSyncMessage(ctx, amqp.NewDeleteMessage(tx.ID)); err != nil {
		t.Fatalf("delete message: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("mirror rows = %d, want 0", m.Len())
	}
	stats, _ = repo.SyncStats(ctx)
	if stats.PendingDeletes != 0 {
		t.Fatalf("tombstone should be cleared, got %+v", stats)
	}

	// Replays are harmless.
	if err := w.HandleSyncMessage(ctx, amqp.NewDeleteMessage(tx.ID)); err != nil {
		t.Fatalf("replayed delete: %v", err)
	}
	if err := w.HandleSyncMessage(ctx, amqp.NewUpsertMessage(tx.ID, 1)); err != nil {
		t.Fatalf("upsert of vanished row: %v", err)
	}
}

func TestHandleSyncMessage_UnknownOperation(t *testing.T) {
	w := NewSyncWorker(newRepo(t), mirror.New(), 0, 0)
	err := w.HandleSyncMessage(context.Background(), &amqp.SyncMessage{ID: "x", Operation: "purge"})
	if err == nil {
		t.Fatal("expected error for unknown operation")
	}
}

func TestHandleSyncMessage_FailureIsRecorded(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	w := NewSyncWorker(repo, failingWriter{err: errors.New("quota exceeded")}, 10, 2)

	tx := addTx(t, repo, "fish")
	for i := 0; i < 2; i++ {
		if err := w.HandleSyncMessage(ctx, amqp.NewUpsertMessage(tx.ID, 1)); err == nil {
			t.Fatal("expected error from failing writer")
		}
	}

	stats, err := repo.SyncStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Failed != 1 || stats.Pending != 0 {
		t.Fatalf("row should be parked as failed after max retries: %+v", stats)
	}
}

func TestProcessPending(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	m := mirror.New()
	w := NewSyncWorker(repo, m, 10, 3)

	a := addTx(t, repo, "a")
	addTx(t, repo, "b")
	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	res, err := w.ProcessPending(ctx)
	if err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if res.Synced != 1 || res.Deleted != 1 || res.Failed != 0 {
		t.Fatalf("unexpected sweep result %+v", res)
	}
	if m.Len() != 1 {
		t.Fatalf("mirror rows = %d, want 1", m.Len())
	}

	res, err = w.ProcessPending(ctx)
	if err != nil || res != (SweepResult{}) {
		t.Fatalf("second sweep should be empty: %+v %v", res, err)
	}
}

func TestProcessPending_CountsFailures(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	w := NewSyncWorker(repo, failingWriter{err: errors.New("offline")}, 10, 5)
	addTx(t, repo, "a")

	res, err := w.ProcessPending(ctx)
	if err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if res.Failed != 1 || res.Synced != 0 {
		t.Fatalf("unexpected sweep result %+v", res)
	}
}
