package reliability

import (
	"os"
	"strconv"
	"time"
)

// ReliabilityConfig holds configuration for reliability testing
type ReliabilityConfig struct {
	Level         string        // "basic" or "stress"
	Duration      time.Duration // Test duration for stress tests
	MaxGoroutines int           // Maximum goroutines for concurrent tests
	Events        int           // Events recorded per burst
	Cycles        int           // Init/close cycles for lifecycle tests
}

// getReliabilityConfig reads configuration from environment variables
func getReliabilityConfig() ReliabilityConfig {
	return ReliabilityConfig{
		Level:         getEnv("CHROMEZ_RELIABILITY_LEVEL", ""),
		Duration:      parseDuration(getEnv("CHROMEZ_RELIABILITY_DURATION", "5s")),
		MaxGoroutines: parseInt(getEnv("CHROMEZ_RELIABILITY_MAX_GOROUTINES", "100"), 100),
		Events:        parseInt(getEnv("CHROMEZ_RELIABILITY_EVENTS", "100000"), 100000),
		Cycles:        parseInt(getEnv("CHROMEZ_RELIABILITY_CYCLES", "50"), 50),
	}
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, fallback int) int {
	if value, err := strconv.Atoi(s); err == nil && value > 0 {
		return value
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	if duration, err := time.ParseDuration(s); err == nil {
		return duration
	}
	return 5 * time.Second
}
