package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/amqp"
	"smartspend/internal/core"
	"smartspend/internal/ledger"
	"smartspend/internal/log"
	"smartspend/internal/reports"
	"smartspend/internal/store"
)

// Publisher announces ledger mutations to the sync worker.
type Publisher interface {
	PublishSync(ctx context.Context, msg *amqp.SyncMessage) error
	Close() error
}

// versioned is implemented by stores that track a row version for sync.
type versioned interface {
	GetVersioned(ctx context.Context, id string) (core.Transaction, int64, error)
}

var ErrEmptyPerson = errors.New("person name cannot be empty")

// Default descriptions used by the quick-add flows.
const (
	DefaultSalaryDescription   = "Monthly Salary"
	DefaultReceivedDescription = "Received Money"
)

// Snapshot is the full ledger with the balances folded from it.
type Snapshot struct {
	Transactions []core.Transaction `json:"transactions"`
	Balances     core.Balances      `json:"balances"`
}

// LedgerService saves transactions locally and then publishes a sync event.
// A failed publish is logged and never fails the call; the worker's sweep
// picks up whatever the broker missed.
type LedgerService struct {
	store     store.Store
	publisher Publisher
	now       func() time.Time
}

func NewLedgerService(s store.Store, publisher Publisher) *LedgerService {
	return &LedgerService{store: s, publisher: publisher, now: time.Now}
}

// Add validates and stores tx, assigning it a fresh id.
func (s *LedgerService) Add(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.Category = core.NormalizeCategory(tx.Category)
	tx.Description = strings.TrimSpace(tx.Description)
	if tx.IsSelfTransfer() {
		log.FromContext(ctx).WithComponent(log.ComponentLedger).WarnContext(ctx, "Self-transfer stored; it nets to zero",
			log.FieldAccount, tx.AccountID, log.FieldAmount, tx.Amount.String())
	}

	saved, err := s.store.Add(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	logSaved(ctx, log.OpCreate, saved)
	s.publishUpsert(ctx, saved.ID)
	return saved, nil
}

// Update replaces the stored transaction with the same id.
func (s *LedgerService) Update(ctx context.Context, tx core.Transaction) error {
	tx.Category = core.NormalizeCategory(tx.Category)
	tx.Description = strings.TrimSpace(tx.Description)
	if err := s.store.Update(ctx, tx); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	logSaved(ctx, log.OpUpdate, tx)
	s.publishUpsert(ctx, tx.ID)
	return nil
}

func (s *LedgerService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.NewDeleteMessage(id))
	return nil
}

func (s *LedgerService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}

// List returns every transaction, newest inserted first.
func (s *LedgerService) List(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return txs, nil
}

// Snapshot loads the ledger and folds the current balances.
func (s *LedgerService) Snapshot(ctx context.Context) (Snapshot, error) {
	txs, err := s.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Transactions: txs, Balances: ledger.ComputeAccountBalances(txs)}, nil
}

// Replace swaps the whole ledger, as an import does.
func (s *LedgerService) Replace(ctx context.Context, txs []core.Transaction) error {
	if err := s.store.Save(ctx, txs); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	for _, tx := range txs {
		s.publishUpsert(ctx, tx.ID)
	}
	return nil
}

// RowError is an appended row that failed validation. Row is 1-based.
type RowError struct {
	Row         int
	Description string
	Err         error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.Description, e.Err)
}

// Append adds txs ahead of the existing ledger with fresh ids in a single
// save. Every row is validated before anything is written; invalid rows are
// returned and left out.
func (s *LedgerService) Append(ctx context.Context, txs []core.Transaction) ([]core.Transaction, []RowError, error) {
	var (
		fresh    = make([]core.Transaction, 0, len(txs))
		rejected []RowError
	)
	for i, tx := range txs {
		tx.Category = core.NormalizeCategory(tx.Category)
		tx.Description = strings.TrimSpace(tx.Description)
		if err := tx.Validate(); err != nil {
			rejected = append(rejected, RowError{Row: i + 1, Description: tx.Description, Err: err})
			continue
		}
		tx.ID = store.NewID()
		fresh = append(fresh, tx)
	}
	if len(fresh) == 0 {
		return nil, rejected, nil
	}

	existing, err := s.List(ctx)
	if err != nil {
		return nil, rejected, err
	}
	all := make([]core.Transaction, 0, len(fresh)+len(existing))
	all = append(append(all, fresh...), existing...)
	if err := s.store.Save(ctx, all); err != nil {
		return nil, rejected, fmt.Errorf("append transactions: %w", err)
	}
	for _, tx := range fresh {
		logSaved(ctx, log.OpCreate, tx)
		s.publishUpsert(ctx, tx.ID)
	}
	return fresh, rejected, nil
}

// Categories lists the recommended labels merged with those in use.
func (s *LedgerService) Categories(ctx context.Context) ([]string, error) {
	if cl, ok := s.store.(store.CategoryLister); ok {
		return cl.Categories(ctx)
	}
	txs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	used := make([]string, 0, len(txs))
	for _, tx := range txs {
		used = append(used, tx.Category)
	}
	return store.MergeCategories(used), nil
}

// AddSalary records income on the salary account.
func (s *LedgerService) AddSalary(ctx context.Context, amount decimal.Decimal, date time.Time, desc string) (core.Transaction, error) {
	return s.Add(ctx, core.Transaction{
		Amount:      amount,
		Type:        core.Income,
		Category:    core.CategorySalary,
		Description: orDefault(desc, DefaultSalaryDescription),
		Date:        s.dateOrNow(date),
		AccountID:   core.Salary,
	})
}

// AddReceived records money received into account.
func (s *LedgerService) AddReceived(ctx context.Context, account core.AccountID, amount decimal.Decimal, date time.Time, desc string) (core.Transaction, error) {
	return s.Add(ctx, core.Transaction{
		Amount:      amount,
		Type:        core.Income,
		Category:    core.CategoryOther,
		Description: orDefault(desc, DefaultReceivedDescription),
		Date:        s.dateOrNow(date),
		AccountID:   account,
	})
}

// Transfer moves amount from one account to another.
func (s *LedgerService) Transfer(ctx context.Context, from, to core.AccountID, amount decimal.Decimal, date time.Time, desc string) (core.Transaction, error) {
	if desc == "" && to.Valid() {
		desc = "Transfer to " + to.Label()
	}
	return s.Add(ctx, core.Transaction{
		Amount:          amount,
		Type:            core.Transfer,
		Category:        core.CategoryTransfer,
		Description:     desc,
		Date:            s.dateOrNow(date),
		AccountID:       from,
		TargetAccountID: to,
	})
}

// Lend records money handed to person out of account.
func (s *LedgerService) Lend(ctx context.Context, person string, account core.AccountID, amount decimal.Decimal, date time.Time) (core.Transaction, error) {
	if strings.TrimSpace(person) == "" {
		return core.Transaction{}, ErrEmptyPerson
	}
	return s.Add(ctx, core.Transaction{
		Amount:      amount,
		Type:        core.Expense,
		Category:    core.CategoryLending,
		Description: reports.LendDescription(person),
		Date:        s.dateOrNow(date),
		AccountID:   account,
	})
}

// RecordReturn records person paying money back into account.
func (s *LedgerService) RecordReturn(ctx context.Context, person string, account core.AccountID, amount decimal.Decimal, date time.Time) (core.Transaction, error) {
	if strings.TrimSpace(person) == "" {
		return core.Transaction{}, ErrEmptyPerson
	}
	return s.Add(ctx, core.Transaction{
		Amount:      amount,
		Type:        core.Income,
		Category:    core.CategoryLending,
		Description: reports.ReturnDescription(person),
		Date:        s.dateOrNow(date),
		AccountID:   account,
	})
}

// AddBazarItem records one grocery purchase. Items bought in the same
// minute form one trip. The account defaults to cash.
func (s *LedgerService) AddBazarItem(ctx context.Context, item string, account core.AccountID, amount decimal.Decimal, at time.Time) (core.Transaction, error) {
	if account == "" {
		account = core.Cash
	}
	return s.Add(ctx, core.Transaction{
		Amount:      amount,
		Type:        core.Expense,
		Category:    core.CategoryBazar,
		Description: item,
		Date:        s.dateOrNow(at),
		AccountID:   account,
	})
}

// Close closes both the store and the publisher.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}

func (s *LedgerService) publishUpsert(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	var version int64
	if v, ok := s.store.(versioned); ok {
		if _, ver, err := v.GetVersioned(ctx, id); err == nil {
			version = ver
		}
	}
	s.publish(ctx, amqp.NewUpsertMessage(id, version))
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.SyncMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSync(ctx, msg); err != nil {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Failed to publish sync message", err,
			log.ComponentAMQP, log.OpSync, log.LogFields{log.FieldTransactionID: msg.ID})
	}
}

func logSaved(ctx context.Context, op string, tx core.Transaction) {
	log.NewStructuredLogger(log.FromContext(ctx)).LogTransactionSaved(ctx, op,
		tx.ID, string(tx.Type), string(tx.AccountID), string(tx.TargetAccountID),
		tx.Amount.String(), tx.Category)
}

func (s *LedgerService) dateOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
