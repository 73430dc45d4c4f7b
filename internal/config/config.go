// Package config centralises configuration parsing for the workout calendar
// service.
package config

import (
	"os"
	"time"
)

// Config captures runtime configuration values.
type Config struct {
	HTTPAddress  string
	DatabasePath string
	APIKey       string // shared secret gating ingestion and the feed
	CalendarName string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load reads environment variables into Config, applying sensible defaults
// for local dev.
func Load() Config {
	return Config{
		HTTPAddress:  getEnv("HTTP_ADDRESS", ":8080"),
		DatabasePath: getEnv("DATABASE_PATH", "workouts.db"),
		APIKey:       getEnv("API_KEY", "dev-secret-change-me"),
		CalendarName: getEnv("CALENDAR_NAME", "Workouts"),
		ReadTimeout:  getDurationEnv("READ_TIMEOUT", 5*time.Second),
		WriteTimeout: getDurationEnv("WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:  getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
