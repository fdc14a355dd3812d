// Package config loads environment configuration for the server binary.
// A .env file in the working directory is honored when present; real
// environment variables win over defaults either way.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	DBPath          string
	RateLimitPerSec float64
	RateLimitBurst  int

	OvertimeEnabled        bool
	DailyThresholdMinutes  int
	WeeklyThresholdMinutes int
}

// Load reads configuration from the environment, with defaults suitable
// for local development.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:            envInt("PORT", 8080),
		DBPath:          envString("DB_PATH", "schedule.db"),
		RateLimitPerSec: envFloat("RATE_LIMIT_PER_SEC", 20),
		RateLimitBurst:  envInt("RATE_LIMIT_BURST", 40),

		OvertimeEnabled:        envBool("OVERTIME_ENABLED", true),
		DailyThresholdMinutes:  envInt("OVERTIME_DAILY_MINUTES", 480),
		WeeklyThresholdMinutes: envInt("OVERTIME_WEEKLY_MINUTES", 2400),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
