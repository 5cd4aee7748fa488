package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"smartspend/internal/storage"
	"smartspend/internal/worker"
)

// SyncHandler pushes one batch of pending mirror work.
type SyncHandler interface {
	ProcessPending(ctx context.Context) (worker.SweepResult, error)
}

// SyncQueue exposes the bookkeeping side of the sync state.
type SyncQueue interface {
	RetryFailed(ctx context.Context) (int64, error)
	SyncStats(ctx context.Context) (storage.SyncStats, error)
}

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to sweep for pending rows (default: 30s)
	PollInterval time.Duration

	// RetryInterval is how often rows parked as failed are re-queued.
	// Zero disables automatic retries.
	RetryInterval time.Duration
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval:  30 * time.Second,
		RetryInterval: 6 * time.Hour,
	}
}

// SyncProcessor runs the periodic sweep that backs up the AMQP path.
type SyncProcessor struct {
	handler SyncHandler
	queue   SyncQueue
	config  SyncProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(handler SyncHandler, queue SyncQueue, config SyncProcessorConfig) *SyncProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSyncProcessorConfig().PollInterval
	}
	return &SyncProcessor{
		handler: handler,
		queue:   queue,
		config:  config,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"retry_interval", p.config.RetryInterval)

	return nil
}

// Stop signals the loop and waits for the current sweep to finish.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Run starts the processor and blocks until ctx is done, then stops it.
func (p *SyncProcessor) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return p.Stop(stopCtx)
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	pollTicker := time.NewTicker(p.config.PollInterval)
	defer pollTicker.Stop()

	var retryC <-chan time.Time
	if p.config.RetryInterval > 0 && p.queue != nil {
		retryTicker := time.NewTicker(p.config.RetryInterval)
		defer retryTicker.Stop()
		retryC = retryTicker.C
	}

	// Sweep immediately on startup
	p.Sweep(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			p.Sweep(ctx)
		case <-retryC:
			if n, err := p.RetryFailed(ctx); err != nil {
				slog.ErrorContext(ctx, "Failed to re-queue failed syncs", "error", err)
			} else if n > 0 {
				slog.InfoContext(ctx, "Re-queued failed syncs", "count", n)
			}
		}
	}
}

// Sweep runs one pass of the handler and logs the outcome.
func (p *SyncProcessor) Sweep(ctx context.Context) worker.SweepResult {
	res, err := p.handler.ProcessPending(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Sync sweep failed", "error", err)
	}
	if res.Failed > 0 {
		slog.WarnContext(ctx, "Sync sweep left failures", "failed", res.Failed)
	}
	return res
}

// Stats returns current sync statistics
func (p *SyncProcessor) Stats(ctx context.Context) (storage.SyncStats, error) {
	if p.queue == nil {
		return storage.SyncStats{}, nil
	}
	return p.queue.SyncStats(ctx)
}

// RetryFailed re-queues every row parked as failed.
func (p *SyncProcessor) RetryFailed(ctx context.Context) (int64, error) {
	if p.queue == nil {
		return 0, nil
	}
	return p.queue.RetryFailed(ctx)
}
