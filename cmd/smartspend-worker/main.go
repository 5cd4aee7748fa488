package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"smartspend/internal/amqp"
	"smartspend/internal/cli"
	"smartspend/internal/log"
	"smartspend/internal/services"
	"smartspend/internal/sheets"
	gsheet "smartspend/internal/sheets/google"
	memsheet "smartspend/internal/sheets/memory"
	"smartspend/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(nil, log.ComponentWorker, os.Stdout)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg, log.ComponentWorker, os.Stdout)
	logger.Info("Starting smartspend-worker")

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	cleanups := []func() error{repo.Close}

	var mirror sheets.TransactionWriter
	if cfg.SheetsEnabled() {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client",
				log.FieldError, err.Error(),
				"error_type", log.ErrorTypeNetwork)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		mirror = memsheet.New()
		logger.Warn("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, mirroring in memory only")
	}

	syncWorker := worker.NewSyncWorker(repo, mirror, cfg.SyncBatchSize, cfg.SyncMaxRetries)
	processor := services.NewSyncProcessor(syncWorker, repo, services.SyncProcessorConfig{
		PollInterval:  cfg.SyncInterval,
		RetryInterval: services.DefaultSyncProcessorConfig().RetryInterval,
	})

	if stats, err := processor.Stats(ctx); err == nil {
		logger.Info("Sync state on startup",
			"pending", stats.Pending,
			"failed", stats.Failed,
			"pending_deletes", stats.PendingDeletes)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return processor.Run(gctx) })

	if cfg.AMQPURL != "" {
		consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client",
				log.FieldError, err.Error(),
				"error_type", log.ErrorTypeNetwork)
			os.Exit(1)
		}
		cleanups = append([]func() error{consumer.Close}, cleanups...)

		g.Go(func() error {
			return consumer.ConsumeSync(gctx, func(ctx context.Context, msg *amqp.SyncMessage) error {
				if err := syncWorker.HandleSyncMessage(ctx, msg); err != nil {
					// the row keeps its error state and the next sweep retries it
					logger.WarnContext(ctx, "Sync message failed, leaving it to the sweep",
						log.FieldError, err.Error(),
						"id", msg.ID,
						"operation", msg.Operation)
				}
				return nil
			})
		})
	} else {
		logger.Info("AMQP disabled - relying on the periodic sweep", "interval", cfg.SyncInterval)
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	for _, c := range cleanups {
		if cerr := cli.RunCleanup(10*time.Second, func(context.Context) error { return c() }); cerr != nil {
			logger.Warn("Cleanup failed", log.FieldError, cerr.Error())
		}
	}
	if err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
