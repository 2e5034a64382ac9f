// Package config centralizes application configuration. Values come
// from environment variables, with .env support for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every configuration value. One sub-struct per concern.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Admin     AdminConfig
	History   HistoryConfig
	Reset     ResetConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string // SQLite file path, e.g. ./data/bubchat.db
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level   string
	Console bool
}

// AdminConfig is the static moderation allowlist and its secrets.
// Fixed at startup; never mutated at runtime.
type AdminConfig struct {
	Names        []string // nicknames allowed to hold an admin session
	Secret       string   // shared /login secret; keep out of logs
	DeleteSecret string   // optional /deleteall confirmation; empty disables the check
}

// IsAdminName reports whether the nickname is on the allowlist.
func (a AdminConfig) IsAdminName(nickname string) bool {
	for _, n := range a.Names {
		if n == nickname {
			return true
		}
	}
	return false
}

// HistoryConfig bounds the replayable message history.
type HistoryConfig struct {
	Size int
}

// ResetConfig drives the daily ban reset.
type ResetConfig struct {
	Timezone string // IANA name of the reference timezone
}

// RateLimitConfig bounds per-fingerprint chat throughput.
type RateLimitConfig struct {
	MaxMessages int
	Window      time.Duration
	Cooldown    time.Duration
}

// Load builds a Config from the environment. A .env file is loaded
// first when present; missing files are ignored.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	historySize, err := strconv.Atoi(getEnv("HISTORY_SIZE", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_SIZE: %w", err)
	}
	if historySize < 1 {
		return nil, fmt.Errorf("HISTORY_SIZE must be at least 1, got %d", historySize)
	}

	rateMax, err := strconv.Atoi(getEnv("RATE_MAX_MESSAGES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_MAX_MESSAGES: %w", err)
	}
	rateWindow, err := time.ParseDuration(getEnv("RATE_WINDOW", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_WINDOW: %w", err)
	}
	rateCooldown, err := time.ParseDuration(getEnv("RATE_COOLDOWN", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_COOLDOWN: %w", err)
	}

	adminSecret := getEnv("ADMIN_SECRET", "")
	if adminSecret == "" {
		return nil, fmt.Errorf("ADMIN_SECRET environment variable is required")
	}

	adminNames := splitNames(getEnv("ADMIN_NAMES", ""))
	if len(adminNames) == 0 {
		return nil, fmt.Errorf("ADMIN_NAMES environment variable is required")
	}

	tz := getEnv("RESET_TIMEZONE", "America/Los_Angeles")
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid RESET_TIMEZONE %q: %w", tz, err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/bubchat.db"),
		},
		Log: LogConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Console: getEnv("LOG_CONSOLE", "false") == "true",
		},
		Admin: AdminConfig{
			Names:        adminNames,
			Secret:       adminSecret,
			DeleteSecret: getEnv("ADMIN_DELETE_SECRET", ""),
		},
		History: HistoryConfig{Size: historySize},
		Reset:   ResetConfig{Timezone: tz},
		RateLimit: RateLimitConfig{
			MaxMessages: rateMax,
			Window:      rateWindow,
			Cooldown:    rateCooldown,
		},
	}

	return cfg, nil
}

// Addr returns the listen address, e.g. "0.0.0.0:8080".
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// splitNames parses a comma-separated nickname list, dropping blanks.
func splitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// getEnv reads an environment variable with a fallback.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
