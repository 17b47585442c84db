package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Upload   UploadConfig

	// LogLevel is one of debug, info, warn, error
	LogLevel string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds Postgres connection configuration
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

// AuthConfig holds the auth core configuration
type AuthConfig struct {
	// SecretKey signs bearer tokens; required, no default.
	SecretKey string
	// TokenTTL governs both token expiry and the session's sliding window.
	TokenTTL time.Duration
	// LoginRateLimit caps login attempts per client IP per minute.
	LoginRateLimit int
}

// UploadConfig holds file upload configuration
type UploadConfig struct {
	Dir           string
	MaxUploadSize int64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("PROXIMA_HOST", "0.0.0.0"),
			Port:            getEnv("PROXIMA_PORT", "8080"),
			ReadTimeout:     getEnvDuration("PROXIMA_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("PROXIMA_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("PROXIMA_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("PROXIMA_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:          getEnv("PROXIMA_POSTGRES_URL", ""),
			MaxOpenConns: getEnvInt("PROXIMA_POSTGRES_MAX_CONNS", 25),
			MaxIdleConns: getEnvInt("PROXIMA_POSTGRES_IDLE_CONNS", 5),
			ConnLifetime: getEnvDuration("PROXIMA_POSTGRES_CONN_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:      getEnv("PROXIMA_REDIS_URL", "redis://localhost:6379/0"),
			Password: getEnv("PROXIMA_REDIS_PASSWORD", ""),
			DB:       getEnvInt("PROXIMA_REDIS_DB", -1),
			PoolSize: getEnvInt("PROXIMA_REDIS_POOL_SIZE", 0),
		},
		Auth: AuthConfig{
			SecretKey:      getEnv("PROXIMA_SECRET_KEY", ""),
			TokenTTL:       getEnvDuration("PROXIMA_TOKEN_TTL", 60*time.Minute),
			LoginRateLimit: getEnvInt("PROXIMA_LOGIN_RATE_LIMIT", 10),
		},
		Upload: UploadConfig{
			Dir:           getEnv("PROXIMA_UPLOAD_DIR", "static/upload"),
			MaxUploadSize: getEnvInt64("PROXIMA_MAX_UPLOAD_SIZE", 5*1024*1024*1024),
		},
		LogLevel: getEnv("PROXIMA_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("redis URL is required")
	}
	if c.Auth.SecretKey == "" {
		return fmt.Errorf("secret key is required")
	}
	if len(c.Auth.SecretKey) < 32 {
		return fmt.Errorf("secret key must be at least 32 bytes")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.Upload.Dir == "" {
		return fmt.Errorf("upload directory is required")
	}
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
