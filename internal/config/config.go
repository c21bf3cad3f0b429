package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	SessionTTL         time.Duration
	KioskTokenTTL      time.Duration
	CleanupInterval    time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
}

func Load() Config {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		Port:               port,
		DatabaseURL:        os.Getenv("DB_DSN"),
		SessionTTL:         readDurationHours("SESSION_TTL_HOURS", 8),
		KioskTokenTTL:      readDurationHours("KIOSK_TOKEN_TTL_HOURS", 24),
		CleanupInterval:    readDurationSeconds("CLEANUP_INTERVAL_SECONDS", 300),
		RateLimitPerMinute: readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:     readInt("RATE_LIMIT_BURST", 30),
	}
}

func readDurationHours(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Hour
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
