// Package config loads server settings from the environment, reading a
// .env file first when one is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/tripsettle/internal/money"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port                int
	DBPath              string
	JWTSecret           string
	TokenTTL            time.Duration
	RedisURL            string
	BalanceCacheTTL     time.Duration
	LogLevel            string
	DefaultBaseCurrency string
}

// Load reads files (default ".env") into the process environment without
// overriding variables that are already set, then builds a Config.
// Missing files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		DBPath:    getEnv("DB_PATH", "./data/trips.db"),
		JWTSecret: getEnv("JWT_SECRET", ""),
		RedisURL:  getEnv("REDIS_URL", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a TCP port, got %q", os.Getenv("PORT")))
	}
	cfg.Port = port

	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.BalanceCacheTTL, err = getDuration("BALANCE_CACHE_TTL", 5*time.Minute); err != nil {
		errs = append(errs, err)
	}

	if cfg.DefaultBaseCurrency, err = money.ValidateCurrency(getEnv("DEFAULT_BASE_CURRENCY", "USD")); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_BASE_CURRENCY: %w", err))
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a non-negative duration, got %q", key, raw)
	}
	return d, nil
}
