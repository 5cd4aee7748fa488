package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the hand-written statements used by SQLiteRepository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// TransactionRow mirrors one row of the transactions table.
type TransactionRow struct {
	ID              string
	Amount          string
	Type            string
	Category        string
	Description     string
	OccurredAt      sql.NullString
	AccountID       string
	TargetAccountID sql.NullString
	Version         int64
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransactionRow(s rowScanner) (TransactionRow, error) {
	var r TransactionRow
	err := s.Scan(&r.ID, &r.Amount, &r.Type, &r.Category, &r.Description,
		&r.OccurredAt, &r.AccountID, &r.TargetAccountID, &r.Version)
	return r, err
}

const transactionColumns = `id, amount, type, category, description, occurred_at, account_id, target_account_id, version`

const insertTransaction = `INSERT INTO transactions (id, amount, type, category, description, occurred_at, account_id, target_account_id, version)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTransaction(ctx context.Context, r TransactionRow) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		r.ID, r.Amount, r.Type, r.Category, r.Description, r.OccurredAt, r.AccountID, r.TargetAccountID, r.Version)
	return err
}

const updateTransaction = `UPDATE transactions
SET amount = ?, type = ?, category = ?, description = ?, occurred_at = ?, account_id = ?, target_account_id = ?,
    version = version + 1, sync_status = 'pending', sync_attempts = 0, last_sync_error = NULL,
    updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
WHERE id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, r TransactionRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		r.Amount, r.Type, r.Category, r.Description, r.OccurredAt, r.AccountID, r.TargetAccountID, r.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id string) (TransactionRow, error) {
	return scanTransactionRow(q.db.QueryRowContext(ctx, getTransaction, id))
}

const listTransactions = `SELECT ` + transactionColumns + ` FROM transactions ORDER BY seq DESC`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		r, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteAllTransactions = `DELETE FROM transactions`

func (q *Queries) DeleteAllTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTransactions)
	return err
}

const insertTombstone = `INSERT OR REPLACE INTO sync_tombstones (id, occurred_at) VALUES (?, ?)`

func (q *Queries) InsertTombstone(ctx context.Context, id string, occurredAt sql.NullString) error {
	_, err := q.db.ExecContext(ctx, insertTombstone, id, occurredAt)
	return err
}

const deleteTombstone = `DELETE FROM sync_tombstones WHERE id = ?`

func (q *Queries) DeleteTombstone(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteTombstone, id)
	return err
}

const listPendingSync = `SELECT id, version FROM transactions WHERE sync_status = 'pending' ORDER BY seq ASC LIMIT ?`

func (q *Queries) ListPendingSync(ctx context.Context, limit int64) ([]PendingSync, error) {
	rows, err := q.db.QueryContext(ctx, listPendingSync, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PendingSync
	for rows.Next() {
		var p PendingSync
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const listPendingDeletes = `SELECT id, occurred_at FROM sync_tombstones WHERE sync_status = 'pending' ORDER BY deleted_at ASC LIMIT ?`

func (q *Queries) ListPendingDeletes(ctx context.Context, limit int64) ([]Tombstone, error) {
	rows, err := q.db.QueryContext(ctx, listPendingDeletes, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Tombstone
	for rows.Next() {
		var id string
		var occurred sql.NullString
		if err := rows.Scan(&id, &occurred); err != nil {
			return nil, err
		}
		items = append(items, Tombstone{ID: id, OccurredAt: occurred.String})
	}
	return items, rows.Err()
}

const getTombstone = `SELECT id, occurred_at FROM sync_tombstones WHERE id = ?`

func (q *Queries) GetTombstone(ctx context.Context, id string) (Tombstone, error) {
	var t Tombstone
	var occurred sql.NullString
	err := q.db.QueryRowContext(ctx, getTombstone, id).Scan(&t.ID, &occurred)
	t.OccurredAt = occurred.String
	return t, err
}

const markSynced = `UPDATE transactions SET sync_status = 'synced', last_sync_error = NULL WHERE id = ? AND version = ?`

func (q *Queries) MarkSynced(ctx context.Context, id string, version int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, markSynced, id, version)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markSyncError = `UPDATE transactions
SET sync_attempts = sync_attempts + 1,
    last_sync_error = ?,
    sync_status = CASE WHEN sync_attempts + 1 >= ? THEN 'error' ELSE 'pending' END
WHERE id = ?`

func (q *Queries) MarkSyncError(ctx context.Context, id, msg string, maxAttempts int64) error {
	_, err := q.db.ExecContext(ctx, markSyncError, msg, maxAttempts, id)
	return err
}

const markTombstoneError = `UPDATE sync_tombstones
SET sync_attempts = sync_attempts + 1,
    last_sync_error = ?,
    sync_status = CASE WHEN sync_attempts + 1 >= ? THEN 'error' ELSE 'pending' END
WHERE id = ?`

func (q *Queries) MarkTombstoneError(ctx context.Context, id, msg string, maxAttempts int64) error {
	_, err := q.db.ExecContext(ctx, markTombstoneError, msg, maxAttempts, id)
	return err
}

const retryFailedTransactions = `UPDATE transactions SET sync_status = 'pending', sync_attempts = 0 WHERE sync_status = 'error'`

const retryFailedTombstones = `UPDATE sync_tombstones SET sync_status = 'pending', sync_attempts = 0 WHERE sync_status = 'error'`

func (q *Queries) RetryFailed(ctx context.Context) (int64, error) {
	var total int64
	for _, stmt := range []string{retryFailedTransactions, retryFailedTombstones} {
		res, err := q.db.ExecContext(ctx, stmt)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

const countBySyncStatus = `SELECT
    COALESCE(SUM(CASE WHEN sync_status = 'pending' THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN sync_status = 'synced' THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN sync_status = 'error' THEN 1 ELSE 0 END), 0),
    (SELECT COUNT(*) FROM sync_tombstones)
FROM transactions`

func (q *Queries) CountBySyncStatus(ctx context.Context) (SyncStats, error) {
	var s SyncStats
	err := q.db.QueryRowContext(ctx, countBySyncStatus).Scan(&s.Pending, &s.Synced, &s.Failed, &s.PendingDeletes)
	return s, err
}

const listCategories = `SELECT DISTINCT category FROM transactions WHERE category <> '' ORDER BY category`

func (q *Queries) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
