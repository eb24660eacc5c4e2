// Package config loads application configuration from environment variables
// with sane defaults, optionally seeded from a .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Poll     PollConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// PollConfig holds poll session settings.
type PollConfig struct {
	DefaultTimeLimit time.Duration // applied when createPoll carries no timeLimit
}

// DatabaseConfig holds the optional PostgreSQL history archive connection.
// Empty URL disables the archive.
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds the optional Redis event mirror connection. Empty Addr
// disables the mirror.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	pollTimeoutMs := getEnvInt("POLL_TIMEOUT_MS", 60000)
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "5000"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Poll: PollConfig{
			DefaultTimeLimit: time.Duration(pollTimeoutMs) * time.Millisecond,
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			Channel:  getEnv("REDIS_EVENT_CHANNEL", "classpulse:events"),
		},
	}
	if cfg.Poll.DefaultTimeLimit <= 0 {
		cfg.Poll.DefaultTimeLimit = 60 * time.Second
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
