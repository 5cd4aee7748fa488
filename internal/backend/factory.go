package backend

import (
	"context"
	"errors"
	"fmt"

	"smartspend/internal/amqp"
	"smartspend/internal/log"
	"smartspend/internal/services"
	"smartspend/internal/storage"
	"smartspend/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Nop()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case FileBackend:
		return f.createFileBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional: without it rows stay pending until the worker sweeps them
	var publisher services.Publisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without sync events",
				log.FieldError, err.Error())
		} else {
			publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svc := services.NewLedgerService(repo, publisher)
	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &Result{
		Ledger:  svc,
		Store:   repo,
		Ping:    repo.Ping,
		Cleanup: svc.Close,
		Syncing: publisher != nil,
	}, nil
}

func (f *DefaultFactory) createFileBackend(config Config) (*Result, error) {
	st, err := memory.Open(config.DataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	if config.DataDirectory != "" {
		st = st.WithSeedCategories(config.DataDirectory)
	}
	svc := services.NewLedgerService(st, nil)

	f.logger.Info("Initialized file backend", "data_file", config.DataFile)
	return &Result{
		Ledger:  svc,
		Store:   st,
		Ping:    func(context.Context) error { return nil },
		Cleanup: svc.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*Result, error) {
	st := memory.New()
	if config.DataDirectory != "" {
		st = st.WithSeedCategories(config.DataDirectory)
	}
	svc := services.NewLedgerService(st, nil)

	f.logger.Info("Initialized memory backend; data is lost on exit")
	return &Result{
		Ledger:  svc,
		Store:   st,
		Ping:    func(context.Context) error { return nil },
		Cleanup: svc.Close,
	}, nil
}

// Close runs every cleanup and joins their errors.
func Close(cleanups ...CleanupFunc) error {
	var errs []error
	for _, c := range cleanups {
		if c == nil {
			continue
		}
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
