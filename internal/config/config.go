package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	Env           string
	DatabaseDSN   string
	SessionSecret string
	MemberSecret  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
}

// Load reads configuration from the environment. The database DSN, the
// session-signing secret and the membership secret have no fallback: a
// missing value stops the process at startup instead of failing on the
// first request that needs it.
func Load() Config {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		MemberSecret:  os.Getenv("MEMBER_SECRET"),
		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		SessionTTL:    getEnvDuration("SESSION_TTL", 168*time.Hour),
	}

	required := map[string]string{
		"DATABASE_DSN":   cfg.DatabaseDSN,
		"SESSION_SECRET": cfg.SessionSecret,
		"MEMBER_SECRET":  cfg.MemberSecret,
	}
	for key, value := range required {
		if value == "" {
			slog.Error("required environment variable is not set", "key", key)
			os.Exit(1)
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Error("invalid integer environment variable", "key", key, "value", v)
		os.Exit(1)
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Error("invalid duration environment variable", "key", key, "value", v)
		os.Exit(1)
	}
	return d
}
