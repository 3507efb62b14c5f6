package config

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Environment   string
	LogLevel      zerolog.Level
	HTTPTimeout   time.Duration
	MaxRetries    int
	OCRBaseURL    string
	CatalogBucket string
	CatalogKey    string
	LedgerTable   string
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// WithOCRBaseURL allows pointing at a different recognition service
func WithOCRBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.OCRBaseURL = baseURL
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:   "production",
		LogLevel:      zerolog.InfoLevel,
		HTTPTimeout:   10 * time.Second,
		MaxRetries:    3,
		OCRBaseURL:    "https://recognition.stationhop.app",
		CatalogBucket: "stationhop-catalog",
		CatalogKey:    "stations.json",
		LedgerTable:   "visit-ledger",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cfg := New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithOCRBaseURL(getEnvOrDefault("OCR_BASE_URL", "https://recognition.stationhop.app")),
	)
	cfg.CatalogBucket = getEnvOrDefault("CATALOG_BUCKET", cfg.CatalogBucket)
	cfg.CatalogKey = getEnvOrDefault("CATALOG_KEY", cfg.CatalogKey)
	cfg.LedgerTable = getEnvOrDefault("LEDGER_TABLE", cfg.LedgerTable)
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
