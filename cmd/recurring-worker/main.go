package main

import (
	"context"
	"time"

	"spendwise/internal/cli"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentRecurring)
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Materialised spend is announced so spendwise-worker exports it.
	var publisher services.SyncPublisher
	if client := cli.ConnectAMQP(logger, cfg); client != nil {
		defer client.Close()
		publisher = client
	}

	// This process keeps no insight cache; the server's entries expire on their TTL.
	spends := services.NewSpendService(repo, repo, repo, publisher, nil, time.Now)
	processor := services.NewRecurringProcessor(repo, spends)

	interval := cfg.RecurringInterval
	logger.Info("Recurring processor configured",
		"interval", interval,
		"sqlite_db", cfg.SQLiteDBPath)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	run := func(ctx context.Context, now time.Time) {
		count, err := processor.ProcessDue(ctx, now)
		if err != nil {
			logger.Error("Recurring processing failed", log.FieldError, err)
			return
		}
		logger.Info("Recurring processing complete",
			"spends_created", count,
			"next_check", now.Add(interval).Format("15:04:05"))
	}

	run(ctx, time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			<-done
			logger.Info("Recurring-worker stopped")
			return
		case now := <-ticker.C:
			run(ctx, now)
		}
	}
}
