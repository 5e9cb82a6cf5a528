package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"strays/internal/adapter/memory"
	"strays/internal/adapter/repo"
	"strays/internal/analytics"
	"strays/internal/auth"
	"strays/internal/chat"
	"strays/internal/domain"
	"strays/internal/geocode"
	"strays/internal/http/handlers"
	httpapi "strays/internal/http/httpapi"
	"strays/internal/infra"
	"strays/internal/infra/errtrack"
	"strays/internal/infra/geoip"
	"strays/internal/intake"
	"strays/internal/notify"
	"strays/internal/storage"
	"strays/migrations"
)

type stores struct {
	users     domain.UserRepository
	donations domain.DonationRepository
	reports   domain.ReportRepository
	events    domain.EventRepository
	chat      domain.ChatRepository
	feedback  domain.FeedbackRepository
	analytics domain.AnalyticsRepository
	geocode   domain.GeocodeCacheRepository
}

func main() {
	// Load .env when present
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLoggerWithConfig(cfg.AppEnv, cfg.Log)

	tracker, err := errtrack.New(cfg.SentryDSN, cfg.AppEnv, "strays-api")
	if err != nil {
		logger.Warn().Err(err).Msg("error tracking disabled")
	}
	defer tracker.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st stores
	if strings.HasPrefix(cfg.DatabaseURL, "memory://") {
		logger.Warn().Msg("using in-memory storage, data is lost on exit")
		mem := memory.New()
		st = stores{
			users:     mem.Users(),
			donations: mem.Donations(),
			reports:   mem.Reports(),
			events:    mem.Events(),
			chat:      mem.Chat(),
			feedback:  mem.Feedback(),
			analytics: mem.Analytics(),
			geocode:   mem.GeocodeCache(),
		}
	} else {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		if err := infra.ApplySchema(ctx, dbpool, migrations.FS, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply schema")
		}
		runner := infra.NewSQLRunner(dbpool, logger)
		st = stores{
			users:     repo.NewUserRepository(runner),
			donations: repo.NewDonationRepository(runner),
			reports:   repo.NewReportRepository(runner),
			events:    repo.NewEventRepository(runner),
			chat:      repo.NewChatRepository(runner),
			feedback:  repo.NewFeedbackRepository(runner),
			analytics: repo.NewAnalyticsRepository(runner),
			geocode:   repo.NewGeocodeCacheRepository(runner),
		}
	}

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	files, err := storage.NewFileStore(storagePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	countries, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer countries.Close()

	resolver := geocode.NewResolver(
		geocode.NewNominatim(geocode.NominatimConfig{
			BaseURL:        cfg.Geocode.BaseURL,
			UserAgent:      cfg.Geocode.UserAgent,
			RequestsPerSec: cfg.Geocode.RequestsPerSec,
			Timeout:        cfg.Geocode.Timeout,
		}),
		st.geocode,
		geocode.CacheConfig{Size: cfg.Geocode.CacheSize, TTL: cfg.Geocode.CacheTTL, NegativeTTL: cfg.Geocode.NegativeTTL},
		logger,
	)

	hub := chat.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	sinks := []notify.Sink{notify.LogSink{Logger: logger}, notify.PushSink{Hub: hub}}
	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.Notify.WebhookURL))
	}
	dispatcher := notify.NewDispatcher(logger, cfg.Notify.Workers, cfg.Notify.QueueSize, sinks...)

	center := domain.Point{Lat: cfg.Geocode.DefaultLat, Lng: cfg.Geocode.DefaultLng}
	app := &handlers.App{
		Logger:         logger,
		Tracker:        tracker,
		Tokens:         auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		Users:          st.users,
		Donations:      st.donations,
		Reports:        st.reports,
		Events:         st.events,
		Feedback:       st.feedback,
		Intake:         intake.NewService(st.donations, st.reports, resolver, files, dispatcher, cfg.UploadMaxBytes, logger),
		Chat:           chat.NewService(hub, st.chat, cfg.CORSOrigins, logger),
		Notifier:       dispatcher,
		Geocoder:       resolver,
		Analytics:      analytics.NewAggregator(st.analytics, st.users),
		Maps:           analytics.NewMapBuilder(st.reports, st.donations, resolver, center, cfg.Geocode.InlineLimit, logger),
		Files:          files,
		DefaultCountry: cfg.Geocode.DefaultCountry,
		MaxUpload:      cfg.UploadMaxBytes,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		CORSOrigins:    cfg.CORSOrigins,
		AuthRateLimit:  cfg.RateLimitPerMin,
		CountryLookup:  countries.Lookup(),
		DefaultCountry: cfg.Geocode.DefaultCountry,
		StaticDir:      files.BasePath(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	<-hubDone
	dispatcher.Close()
	logger.Info().Msg("server stopped")
}
