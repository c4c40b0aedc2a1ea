package main

import (
	"context"
	"errors"
	"os"
	"time"

	"spendwise/internal/cli"
	"spendwise/internal/log"
	"spendwise/internal/services"
	"spendwise/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting spendwise-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	exporter, err := cli.NewExporter(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize exporter", log.FieldError, err, "backend", cfg.ExportBackend)
		os.Exit(1)
	}
	logger.Info("Exporter initialized", "backend", cfg.ExportBackend)

	syncWorker := worker.NewSyncWorker(repo, exporter, cfg.SyncBatchSize,
		worker.WithMaxAttempts(cfg.SyncMaxAttempts))

	processor := services.NewSyncProcessor(syncWorker, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := processor.Stop(ctx); err != nil {
			logger.Warn("Sync processor stop", log.FieldError, err)
		}
	})

	// Spend written while the worker was down is picked up here.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err)
	}

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start sync processor", log.FieldError, err)
		os.Exit(1)
	}

	if client := cli.ConnectAMQP(logger, cfg); client != nil {
		defer client.Close()
		go func() {
			if err := client.ConsumeSpendSync(ctx, syncWorker.HandleSyncMessage); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
		}()
	} else {
		logger.Info("Polling only, no AMQP consumer", "interval", cfg.SyncInterval)
	}

	<-done
	logger.Info("Worker stopped")
}
