package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Oracle provider names accepted in ORACLE_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	OracleProvider string
	GeminiAPIKey   string
	GeminiModel    string

	RedisEnabled bool
	RedisURL     string

	MaxCachedSessions int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          parseLogLevel(getEnv("LOG_LEVEL", "info")),
		OracleProvider:    strings.ToLower(getEnv("ORACLE_PROVIDER", ProviderGemini)),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", ""),
		RedisEnabled:      parseBool(getEnv("REDIS_ENABLED", "false")),
		RedisURL:          getEnv("REDIS_URL", "localhost:6379"),
		MaxCachedSessions: parseInt(getEnv("MAX_CACHED_SESSIONS", "5000")),
	}

	switch cfg.OracleProvider {
	case ProviderGemini, ProviderMock:
	default:
		return nil, fmt.Errorf("invalid ORACLE_PROVIDER %q (supported: %s, %s)",
			cfg.OracleProvider, ProviderGemini, ProviderMock)
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
