// Package memory is an in-process stand-in for the spreadsheet mirror.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"smartspend/internal/core"
	ports "smartspend/internal/sheets"
)

type Mirror struct {
	mu    sync.Mutex
	order []string
	rows  map[string]core.Transaction
}

var (
	_ ports.TransactionWriter = (*Mirror)(nil)
	_ ports.TransactionLister = (*Mirror)(nil)
)

func New() *Mirror {
	return &Mirror{rows: map[string]core.Transaction{}}
}

func (m *Mirror) Upsert(_ context.Context, tx core.Transaction) (string, error) {
	if tx.ID == "" {
		return "", fmt.Errorf("transaction has no id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[tx.ID]; !ok {
		m.order = append(m.order, tx.ID)
	}
	m.rows[tx.ID] = tx
	return "mem:" + tx.ID, nil
}

func (m *Mirror) Delete(_ context.Context, id string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return nil
	}
	delete(m.rows, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Mirror) ListTransactions(_ context.Context, year int) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Transaction
	for _, id := range m.order {
		tx := m.rows[id]
		if tx.Date.Year() == year {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Len reports how many rows are mirrored.
func (m *Mirror) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
