package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spendwise/internal/cache"
	"spendwise/internal/cli"
	apphttp "spendwise/internal/http"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	readyChecks := map[string]apphttp.ReadyCheck{"database": repo.Ping}

	// Left as a nil interface when messaging is off so services skip publishing.
	var publisher services.SyncPublisher
	if client := cli.ConnectAMQP(logger, cfg); client != nil {
		defer client.Close()
		publisher = client
		readyChecks["amqp"] = func(context.Context) error { return client.Ping() }
	}

	reports := cache.NewLRUCache[services.Report](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(reports)
	cacheManager.StartCleanup(cfg.CacheTTL)

	svc := apphttp.Services{
		Accounts:  services.NewAccountService(repo, cli.TimezoneSource(cfg), reports, time.Now),
		Periods:   services.NewPeriodService(repo, repo, reports, time.Now),
		Spends:    services.NewSpendService(repo, repo, repo, publisher, reports, time.Now),
		Insights:  services.NewInsightsService(repo, repo, repo, reports, time.Now),
		Recurring: services.NewRecurringService(repo, repo),
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ReadyChecks:        readyChecks,
	})

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
	})

	logger.Info("Starting spendwise server",
		"port", cfg.Port,
		"amqp", publisher != nil,
		"cache_size", cfg.CacheSize)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
