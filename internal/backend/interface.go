// Package backend builds the ledger service over the configured storage.
package backend

import (
	"context"

	"smartspend/internal/services"
	"smartspend/internal/store"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// Result is a ready ledger service plus what the caller needs to run it.
type Result struct {
	Ledger *services.LedgerService
	Store  store.Store
	// Ping probes the storage for readiness checks.
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
	// Syncing reports whether mutations are published to the sync queue.
	Syncing bool
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// file backend
	DataFile string
	// DataDirectory may hold seed_categories.txt for the memory and file backends.
	DataDirectory string

	// sqlite backend, with optional AMQP publishing
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
