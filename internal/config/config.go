package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AppEnv          string
	Debug           bool
	Version         string
	BotToken        string
	ChannelID       string
	OwnerID         int64
	AdminIDs        []int64
	SentryDSN       string
	MongoDBURI      string
	MongoDBDatabase string
	Timezone        string
	Location        *time.Location
	DefaultLanguage string
	Port            string

	SchedulerInterval  time.Duration
	SchedulerBatchSize int
	StorageTimeout     time.Duration
	APITimeout         time.Duration
	APIRatePerSecond   int
}

// LoadConfig loads configuration from environment variables.
// It attempts to load a .env file if present but prioritizes
// actual environment variables set in the system (e.g., by Docker).
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	debug, _ := strconv.ParseBool(getEnv("DEBUG", "false"))

	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Debug:           debug,
		Version:         getEnv("VERSION", "dev"),
		BotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
		ChannelID:       strings.TrimSpace(getEnv("CHANNEL_ID", "")),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		MongoDBURI:      getEnv("MONGODB_URI", ""),
		MongoDBDatabase: getEnv("MONGODB_DATABASE", ""),
		Timezone:        getEnv("TIMEZONE", "Europe/Moscow"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "ru"),
		Port:            getEnv("PORT", "10000"),
	}

	var err error
	if cfg.OwnerID, err = parseInt64("OWNER_ID", ""); err != nil {
		return nil, err
	}
	if cfg.AdminIDs, err = parseIDList(getEnv("ADMIN_IDS", "")); err != nil {
		return nil, fmt.Errorf("invalid ADMIN_IDS: %w", err)
	}
	if cfg.SchedulerInterval, err = parseDuration("SCHEDULER_INTERVAL", "20s"); err != nil {
		return nil, err
	}
	if cfg.StorageTimeout, err = parseDuration("STORAGE_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.APITimeout, err = parseDuration("API_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.SchedulerBatchSize, err = parseInt("SCHEDULER_BATCH_SIZE", "20"); err != nil {
		return nil, err
	}
	if cfg.APIRatePerSecond, err = parseInt("API_RATE_PER_SECOND", "20"); err != nil {
		return nil, err
	}
	if cfg.Location, err = time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	// Basic validation for essential variables
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.ChannelID == "" {
		return nil, fmt.Errorf("CHANNEL_ID is required")
	}
	if cfg.OwnerID == 0 {
		return nil, fmt.Errorf("OWNER_ID is required")
	}
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.MongoDBDatabase == "" {
		return nil, fmt.Errorf("MONGODB_DATABASE is required")
	}
	if cfg.SchedulerBatchSize <= 0 {
		return nil, fmt.Errorf("SCHEDULER_BATCH_SIZE must be positive")
	}
	if cfg.SchedulerInterval < time.Second {
		return nil, fmt.Errorf("SCHEDULER_INTERVAL must be at least 1s")
	}
	if cfg.SentryDSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}

	return cfg, nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseInt64(key, def string) (int64, error) {
	raw := strings.TrimSpace(getEnv(key, def))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseInt(key, def string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(getEnv(key, def)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	v, err := time.ParseDuration(strings.TrimSpace(getEnv(key, def)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// parseIDList parses a comma or whitespace separated list of user ids.
func parseIDList(raw string) ([]int64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
