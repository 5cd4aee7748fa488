package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"smartspend/internal/backend"
	"smartspend/internal/cli"
	apphttp "smartspend/internal/http"
	"smartspend/internal/log"
	"smartspend/internal/middleware/ratelimit"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(nil, log.ComponentApp, os.Stdout)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg, log.ComponentApp, os.Stdout)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			log.FieldError, err.Error(),
			"backend", cfg.DataBackend,
			"error_type", log.ErrorTypeDatabase)
		os.Exit(1)
	}

	assistant := cli.BuildAssistant(ctx, cfg, logger)
	defer assistant.Close()

	deps := apphttp.Deps{
		Ledger:             res.Ledger,
		Categorizer:        assistant.Categorizer,
		Ready:              res.Ping,
		Logger:             logger,
		Currency:           cfg.Currency,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit:          ratelimit.DefaultConfig(),
	}
	if assistant.Advisor != nil {
		deps.Advisor = assistant.Advisor
	}
	srv := apphttp.NewServer(":"+cfg.Port, deps)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting smartspend server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"sync_events", res.Syncing,
			"advisor", assistant.Advisor != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
	case err, ok := <-serverErr:
		if ok {
			logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
			exitCode = 1
		}
	}

	if err := cli.RunCleanup(30*time.Second, srv.Shutdown); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err.Error())
		exitCode = 1
	}
	if err := backend.Close(res.Cleanup); err != nil {
		logger.Error("Failed to close backend", log.FieldError, err.Error())
		exitCode = 1
	}
	logger.Info("Server stopped gracefully")

	// deferred cleanups do not run past os.Exit
	assistant.Close()
	cancel()
	os.Exit(exitCode)
}
