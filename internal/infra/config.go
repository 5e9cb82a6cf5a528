package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents application configuration loaded from an optional YAML
// file and environment variables. Environment variables win.
type Config struct {
	AppEnv           string        `yaml:"app_env"`
	Port             string        `yaml:"port"`
	DatabaseURL      string        `yaml:"database_url"`
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
	StoragePath      string        `yaml:"storage_path"`
	StorageBaseURL   string        `yaml:"storage_base_url"`
	UploadMaxBytes   int64         `yaml:"upload_max_bytes"`
	GeoIPDBPath      string        `yaml:"geoip_db_path"`
	CORSOrigins      []string      `yaml:"cors_origins"`
	HTTPReadTimeout  time.Duration `yaml:"http_read_timeout"`
	HTTPWriteTimeout time.Duration `yaml:"http_write_timeout"`
	HTTPIdleTimeout  time.Duration `yaml:"http_idle_timeout"`
	RateLimitPerMin  int           `yaml:"rate_limit_per_minute"`

	Log     LogConfig     `yaml:"log"`
	Geocode GeocodeConfig `yaml:"geocode"`
	Notify  NotifyConfig  `yaml:"notify"`
	Worker  WorkerConfig  `yaml:"worker"`

	SentryDSN string `yaml:"sentry_dsn"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// GeocodeConfig configures the upstream geocoder and its cache.
type GeocodeConfig struct {
	BaseURL        string        `yaml:"base_url"`
	UserAgent      string        `yaml:"user_agent"`
	RequestsPerSec float64       `yaml:"requests_per_sec"`
	Timeout        time.Duration `yaml:"timeout"`
	CacheSize      int           `yaml:"cache_size"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	NegativeTTL    time.Duration `yaml:"negative_ttl"`
	DefaultCountry string        `yaml:"default_country"`
	DefaultLat     float64       `yaml:"default_lat"`
	DefaultLng     float64       `yaml:"default_lng"`
	InlineLimit    int           `yaml:"inline_limit"`
}

// NotifyConfig configures the notification dispatcher.
type NotifyConfig struct {
	Workers    int    `yaml:"workers"`
	QueueSize  int    `yaml:"queue_size"`
	WebhookURL string `yaml:"webhook_url"`
}

// WorkerConfig configures the geocode backfill worker.
type WorkerConfig struct {
	Interval  time.Duration `yaml:"interval"`
	BatchSize int           `yaml:"batch_size"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// When STRAYS_CONFIG points to a YAML file it is read first.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := strings.TrimSpace(os.Getenv("STRAYS_CONFIG")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", cfg.TokenTTL)
	cfg.StoragePath = getEnv("STORAGE_PATH", cfg.StoragePath)
	cfg.StorageBaseURL = getEnv("STORAGE_BASE_URL", cfg.StorageBaseURL)
	cfg.UploadMaxBytes = int64(getEnvInt("UPLOAD_MAX_BYTES", int(cfg.UploadMaxBytes)))
	cfg.GeoIPDBPath = getEnv("GEOIP_DB_PATH", cfg.GeoIPDBPath)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	cfg.HTTPReadTimeout = time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", int(cfg.HTTPReadTimeout/time.Second)))
	cfg.HTTPWriteTimeout = time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", int(cfg.HTTPWriteTimeout/time.Second)))
	cfg.HTTPIdleTimeout = time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", int(cfg.HTTPIdleTimeout/time.Second)))
	cfg.RateLimitPerMin = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMin)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)

	cfg.Geocode.BaseURL = getEnv("GEOCODER_URL", cfg.Geocode.BaseURL)
	cfg.Geocode.UserAgent = getEnv("GEOCODER_USER_AGENT", cfg.Geocode.UserAgent)
	cfg.Geocode.RequestsPerSec = getEnvFloat("GEOCODER_RPS", cfg.Geocode.RequestsPerSec)
	cfg.Geocode.CacheSize = getEnvInt("GEOCODE_CACHE_SIZE", cfg.Geocode.CacheSize)
	cfg.Geocode.CacheTTL = getEnvDuration("GEOCODE_CACHE_TTL", cfg.Geocode.CacheTTL)
	cfg.Geocode.DefaultCountry = strings.ToLower(getEnv("GEOCODE_DEFAULT_COUNTRY", cfg.Geocode.DefaultCountry))
	cfg.Geocode.DefaultLat = getEnvFloat("MAP_DEFAULT_LAT", cfg.Geocode.DefaultLat)
	cfg.Geocode.DefaultLng = getEnvFloat("MAP_DEFAULT_LNG", cfg.Geocode.DefaultLng)
	cfg.Geocode.InlineLimit = getEnvInt("GEOCODE_INLINE_LIMIT", cfg.Geocode.InlineLimit)

	cfg.Notify.Workers = getEnvInt("NOTIFY_WORKERS", cfg.Notify.Workers)
	cfg.Notify.QueueSize = getEnvInt("NOTIFY_QUEUE_SIZE", cfg.Notify.QueueSize)
	cfg.Notify.WebhookURL = getEnv("NOTIFY_WEBHOOK_URL", cfg.Notify.WebhookURL)

	cfg.Worker.Interval = getEnvDuration("WORKER_INTERVAL", cfg.Worker.Interval)
	cfg.Worker.BatchSize = getEnvInt("WORKER_BATCH_SIZE", cfg.Worker.BatchSize)

	cfg.SentryDSN = getEnv("SENTRY_DSN", cfg.SentryDSN)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if strings.TrimSpace(cfg.StorageBaseURL) == "" {
		cfg.StorageBaseURL = fmt.Sprintf("http://localhost:%s/static", cfg.Port)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		AppEnv:           "development",
		Port:             "8080",
		TokenTTL:         24 * time.Hour,
		StoragePath:      "./storage",
		UploadMaxBytes:   5 << 20,
		HTTPReadTimeout:  15 * time.Second,
		HTTPWriteTimeout: 30 * time.Second,
		HTTPIdleTimeout:  60 * time.Second,
		RateLimitPerMin:  30,
		Log: LogConfig{
			Level:      "info",
			File:       "logs/strays.log",
			MaxSizeMB:  10,
			MaxBackups: 10,
			MaxAgeDays: 30,
		},
		Geocode: GeocodeConfig{
			BaseURL:        "https://nominatim.openstreetmap.org",
			UserAgent:      "strays-bengaluru_app",
			RequestsPerSec: 1,
			Timeout:        10 * time.Second,
			CacheSize:      2048,
			CacheTTL:       7 * 24 * time.Hour,
			NegativeTTL:    time.Hour,
			DefaultCountry: "in",
			DefaultLat:     12.9716,
			DefaultLng:     77.5946,
			InlineLimit:    10,
		},
		Notify: NotifyConfig{
			Workers:   2,
			QueueSize: 256,
		},
		Worker: WorkerConfig{
			Interval:  30 * time.Second,
			BatchSize: 20,
		},
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
