package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageSQLite    = "sqlite"
	StorageFirestore = "firestore"
)

// Config holds the application settings
type Config struct {
	Environment string
	Server      ServerConfig
	Telegram    TelegramConfig
	Storage     StorageConfig
	Scraper     ScraperConfig
	Monitor     MonitorConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port               string
	RateLimitPerMinute int
}

type TelegramConfig struct {
	BotToken       string
	// SkipAuth bypasses Mini App initData checks; honoured only in development
	SkipAuth       bool
	// InitDataMaxAge is how long signed Mini App initData stays valid after auth_date
	InitDataMaxAge time.Duration
}

type StorageConfig struct {
	Driver                   string
	DatabasePath             string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
}

type ScraperConfig struct {
	Timeout time.Duration
}

type MonitorConfig struct {
	// Interval of zero disables the background refresh
	Interval time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:               getEnv("SERVER_PORT", getEnv("PORT", "10000")),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),
		},
		Telegram: TelegramConfig{
			BotToken:       getEnv("BOT_TOKEN", os.Getenv("TELEGRAM_BOT_TOKEN")),
			SkipAuth:       getEnvAsBool("SKIP_AUTH", false),
			InitDataMaxAge: time.Duration(getEnvAsInt("INIT_DATA_MAX_AGE_HOURS", 24)) * time.Hour,
		},
		Storage: StorageConfig{
			Driver:                   strings.ToLower(getEnv("STORAGE_DRIVER", StorageSQLite)),
			DatabasePath:             getEnv("DATABASE_PATH", "./tracker.db"),
			FirestoreProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
			FirestoreCredentialsFile: getEnv("FIRESTORE_CREDENTIALS_FILE", ""),
		},
		Scraper: ScraperConfig{
			Timeout: time.Duration(getEnvAsInt("SCRAPE_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Monitor: MonitorConfig{
			Interval: time.Duration(getEnvAsInt("CHECK_INTERVAL_MINUTES", 0)) * time.Minute,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageSQLite:
		if c.Storage.DatabasePath == "" {
			return errors.New("DATABASE_PATH is required for the sqlite driver")
		}
	case StorageFirestore:
		if c.Storage.FirestoreProjectID == "" {
			return errors.New("FIRESTORE_PROJECT_ID is required for the firestore driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Scraper.Timeout <= 0 {
		return errors.New("SCRAPE_TIMEOUT_SECONDS must be positive")
	}
	if c.Server.RateLimitPerMinute <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.Telegram.InitDataMaxAge <= 0 {
		return errors.New("INIT_DATA_MAX_AGE_HOURS must be positive")
	}
	if c.Monitor.Interval < 0 {
		return errors.New("CHECK_INTERVAL_MINUTES must not be negative")
	}
	if c.Monitor.Interval > 0 && c.Telegram.BotToken == "" {
		return errors.New("CHECK_INTERVAL_MINUTES needs BOT_TOKEN to deliver notifications")
	}
	if c.Telegram.BotToken == "" && !c.AuthDisabled() {
		return errors.New("BOT_TOKEN is required to verify Telegram Mini App requests")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// AuthDisabled reports whether Mini App requests skip initData verification
func (c *Config) AuthDisabled() bool {
	return c.Telegram.SkipAuth && c.IsDevelopment()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
