package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Scraper  ScraperConfig
	Forecast ForecastConfig
	Import   ImportConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string
	Port            string
	AllowedOrigins  []string
	RateLimit       float64 // requests per second per client
	RequestTimeout  time.Duration
	TaskWorkers     int
	TaskRetention   time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig selects the SQL driver and connection string
type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite"
	URL    string
}

// ScraperConfig holds scraping behaviour
type ScraperConfig struct {
	Timeout          time.Duration
	MinDelay         time.Duration
	MaxDelay         time.Duration
	Headless         bool // skips the politeness delay
	UseBrowser       bool
	CloudflareBypass bool
	MatchThreshold   float64
	CacheTTL         time.Duration // 0 disables the comparison cache
	Seed             int64
	SitesFile        string
}

// ForecastConfig holds forecasting defaults
type ForecastConfig struct {
	DefaultDaysAhead int
	RefreshCron      string
}

// ImportConfig points to the bootstrap CSV
type ImportConfig struct {
	CSVPath string
}

// LoggingConfig controls the slog handler
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads .env (if present) and the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Host:            getEnv("HOST", "0.0.0.0"),
			Port:            getEnv("PORT", "8000"),
			AllowedOrigins:  getEnvList("ALLOWED_ORIGINS", []string{"*"}),
			RateLimit:       getEnvFloat("RATE_LIMIT_RPS", 5),
			RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
			TaskWorkers:     getEnvInt("TASK_WORKERS", 3),
			TaskRetention:   getEnvDuration("TASK_RETENTION", time.Hour),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DATABASE_DRIVER", "sqlite"),
			URL:    getEnv("DATABASE_URL", "pricewise.db"),
		},
		Scraper: ScraperConfig{
			Timeout:          getEnvDuration("SCRAPER_TIMEOUT", 10*time.Second),
			MinDelay:         getEnvDuration("SCRAPER_MIN_DELAY", time.Second),
			MaxDelay:         getEnvDuration("SCRAPER_MAX_DELAY", 2*time.Second),
			Headless:         getEnvBool("SCRAPER_HEADLESS", false),
			UseBrowser:       getEnvBool("SCRAPER_USE_BROWSER", false),
			CloudflareBypass: getEnvBool("SCRAPER_CLOUDFLARE_BYPASS", false),
			MatchThreshold:   getEnvFloat("SCRAPER_MATCH_THRESHOLD", 0.4),
			CacheTTL:         getEnvDuration("SCRAPER_CACHE_TTL", 10*time.Minute),
			Seed:             getEnvInt64("SCRAPER_SEED", time.Now().UnixNano()),
			SitesFile:        getEnv("SITES_CONFIG", ""),
		},
		Forecast: ForecastConfig{
			DefaultDaysAhead: getEnvInt("FORECAST_DAYS_AHEAD", 30),
			RefreshCron:      getEnv("FORECAST_REFRESH_CRON", ""),
		},
		Import: ImportConfig{
			CSVPath: getEnv("CSV_PATH", "data/product_prices.csv"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
