package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server holds settings read from the environment at startup.
type Server struct {
	Port         string
	DatabaseURL  string
	RedisURL     string
	CacheTTL     time.Duration
	CanvasWidth  int
	CanvasHeight int
	LogLevel     slog.Level
}

// LoadServer reads the server settings from environment variables.
// Unset variables fall back to defaults; malformed ones are an error.
func LoadServer() (Server, error) {
	cfg := Server{
		Port:         getenv("PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		CacheTTL:     30 * time.Second,
		CanvasWidth:  800,
		CanvasHeight: 500,
		LogLevel:     slog.LevelInfo,
	}

	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("config: CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = ttl
	}

	var err error
	if cfg.CanvasWidth, err = getenvInt("CANVAS_WIDTH", cfg.CanvasWidth); err != nil {
		return cfg, err
	}
	if cfg.CanvasHeight, err = getenvInt("CANVAS_HEIGHT", cfg.CanvasHeight); err != nil {
		return cfg, err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			return cfg, fmt.Errorf("config: LOG_LEVEL: %w", err)
		}
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback, fmt.Errorf("config: %s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
