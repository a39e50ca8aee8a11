package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/text/language"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string

	// StoragePath is the shared directory generated files are written to by
	// workers and read from by the download endpoint.
	StoragePath string

	// Generation bounds applied before a job row is created.
	MinRecords int
	MaxRecords int

	MaxRetries        int
	WorkerConcurrency int
	PreviewLimit      int
	MaxFileAge        time.Duration
	GeneratorLocale   language.Tag

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		StoragePath:       getEnv("STORAGE_PATH", "./generated_data"),
		MinRecords:        getEnvInt("MIN_RECORDS", 100),
		MaxRecords:        getEnvInt("MAX_RECORDS", 1_000_000),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		PreviewLimit:      getEnvInt("PREVIEW_LIMIT", 10),
		MaxFileAge:        24 * time.Hour * time.Duration(getEnvInt("MAX_FILE_AGE_DAYS", 7)),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	locale := getEnv("GENERATOR_LOCALE", "en-US")
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("GENERATOR_LOCALE %q is not a valid BCP 47 tag: %w", locale, err)
	}
	cfg.GeneratorLocale = tag

	if cfg.MinRecords <= 0 || cfg.MaxRecords < cfg.MinRecords {
		return nil, fmt.Errorf("invalid record bounds: MIN_RECORDS=%d MAX_RECORDS=%d", cfg.MinRecords, cfg.MaxRecords)
	}

	return cfg, nil
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
