// Package memory keeps the ledger in process, optionally mirrored to a JSON
// file on every change.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"smartspend/internal/core"
	"smartspend/internal/store"
)

type Store struct {
	mu    sync.Mutex
	path  string
	cats  []string
	items []core.Transaction
}

var (
	_ store.Store          = (*Store)(nil)
	_ store.CategoryLister = (*Store)(nil)
)

// New returns a store holding txs, newest first, with no file behind it.
func New(txs ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), txs...)}
}

// Open loads the ledger file at path, creating its directory if needed. A
// missing file is an empty ledger; records that cannot be migrated are dropped
// and logged.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	txs, skipped, err := store.DecodeLedger(data)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		slog.Warn("Skipped unreadable ledger records", "path", path, "skipped", skipped)
	}
	s.items = txs
	return s, nil
}

// WithSeedCategories adds the labels listed in <dir>/seed_categories.txt to
// the suggestions returned by Categories.
func (s *Store) WithSeedCategories(dir string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats = readLines(filepath.Join(dir, "seed_categories.txt"))
	return s
}

func (s *Store) Load(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...), nil
}

func (s *Store) Save(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.items
	s.items = append([]core.Transaction(nil), txs...)
	if err := s.flush(); err != nil {
		s.items = prev
		return err
	}
	return nil
}

func (s *Store) Add(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.ID = store.NewID()
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.items
	s.items = append([]core.Transaction{tx}, s.items...)
	if err := s.flush(); err != nil {
		s.items = prev
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) Update(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(tx.ID)
	if i < 0 {
		return store.ErrNotFound
	}
	prev := s.items[i]
	s.items[i] = tx
	if err := s.flush(); err != nil {
		s.items[i] = prev
		return err
	}
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return store.ErrNotFound
	}
	prev := s.items
	next := make([]core.Transaction, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	s.items = append(next, s.items[i+1:]...)
	if err := s.flush(); err != nil {
		s.items = prev
		return err
	}
	return nil
}

func (s *Store) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return core.Transaction{}, store.ErrNotFound
}

// Categories returns the recommended labels, then seeded ones, then any other
// label already used in the ledger.
func (s *Store) Categories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	used := make([]string, 0, len(s.items))
	for _, tx := range s.items {
		used = append(used, tx.Category)
	}
	return store.MergeCategories(s.cats, used), nil
}

func (s *Store) Close() error { return nil }

func (s *Store) indexOf(id string) int {
	for i, tx := range s.items {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

// flush rewrites the backing file through a temp file and rename. Caller holds mu.
func (s *Store) flush() error {
	if s.path == "" {
		return nil
	}
	data, err := store.EncodeLedger(s.items)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
