package config

import (
	"os"
	"strconv"
)

// Config holds the CLI demo's own settings, entirely separate from any
// CRM Definition. The core package never reads the environment itself
// (spec §6: "CLI / env vars. None owned by the core.").
type Config struct {
	LogLevel string
	MaxSteps int
	Scenario string
}

// Load reads configuration from the environment, falling back to
// defaults suited to running the Letter-World demo.
func Load() *Config {
	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		MaxSteps: getEnvInt("MAX_STEPS", 200),
		Scenario: getEnv("SCENARIO", "s1"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
