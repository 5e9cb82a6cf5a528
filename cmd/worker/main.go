package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"strays/internal/adapter/repo"
	"strays/internal/backfill"
	"strays/internal/geocode"
	"strays/internal/infra"
	"strays/internal/infra/errtrack"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLoggerWithConfig(cfg.AppEnv, cfg.Log).With().Str("component", "worker").Logger()

	if strings.HasPrefix(cfg.DatabaseURL, "memory://") {
		logger.Fatal().Msg("worker: a postgres DATABASE_URL is required")
	}

	tracker, err := errtrack.New(cfg.SentryDSN, cfg.AppEnv, "strays-worker")
	if err != nil {
		logger.Warn().Err(err).Msg("error tracking disabled")
	}
	defer tracker.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	resolver := geocode.NewResolver(
		geocode.NewNominatim(geocode.NominatimConfig{
			BaseURL:        cfg.Geocode.BaseURL,
			UserAgent:      cfg.Geocode.UserAgent,
			RequestsPerSec: cfg.Geocode.RequestsPerSec,
			Timeout:        cfg.Geocode.Timeout,
		}),
		repo.NewGeocodeCacheRepository(runner),
		geocode.CacheConfig{Size: cfg.Geocode.CacheSize, TTL: cfg.Geocode.CacheTTL, NegativeTTL: cfg.Geocode.NegativeTTL},
		logger,
	)

	worker := backfill.New(
		repo.NewDonationRepository(runner),
		repo.NewReportRepository(runner),
		resolver,
		backfill.Config{
			Interval:  cfg.Worker.Interval,
			BatchSize: cfg.Worker.BatchSize,
			Country:   cfg.Geocode.DefaultCountry,
		},
		logger,
	)

	logger.Info().Dur("interval", cfg.Worker.Interval).Int("batch", cfg.Worker.BatchSize).Msg("geocode backfill started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		tracker.Capture(err, nil, map[string]string{"component": "worker"})
		logger.Error().Err(err).Msg("worker stopped")
		return
	}
	logger.Info().Msg("worker stopped")
}
