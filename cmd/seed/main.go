// Command seed resets the OctoFit store and fills it with sample data.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"octofit/internal/cache"
	"octofit/internal/config"
	"octofit/internal/database"
	"octofit/internal/observability"
	"octofit/internal/repository"
	"octofit/internal/seed"
)

const serviceName = "octofit-seed"

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  serviceName,
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		logger.Error("Failed to initialize tracing", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("Tracer shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics := observability.NewSeedMetrics()
	opts := seed.Options{
		Address:       database.Address(cfg),
		HashPasswords: cfg.SeedHashPasswords,
		Metrics:       metrics,
	}

	if cfg.RedisURL != "" {
		inv, err := cache.NewInvalidator(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Warn("Cache invalidation disabled", slog.String("error", err.Error()))
		} else {
			defer func() { _ = inv.Close() }()
			opts.Cache = inv
		}
	}

	open := func(ctx context.Context) (repository.Store, error) {
		return repository.Open(ctx, cfg, logger)
	}
	_, runErr := seed.NewSeeder(open, logger, opts).Run(ctx)

	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(ctx, cfg.PushgatewayURL); err != nil {
			logger.Warn("Failed to push metrics", slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		logger.Error("Seeding failed", slog.String("error", runErr.Error()))
		return 1
	}
	return 0
}
