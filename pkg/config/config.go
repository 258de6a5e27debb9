package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atelierhq/atelier/pkg/billing"
	"github.com/atelierhq/atelier/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Cache         CacheConfig
	Billing       BillingConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig holds entitlement cache configuration
type CacheConfig struct {
	Enabled bool
	L1Size  int
	TTL     time.Duration
}

// BillingConfig holds billing scheduler configuration
type BillingConfig struct {
	RenewalSchedule string
}

// ObservabilityConfig holds logging and metrics settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("ATELIER_HOST", "0.0.0.0"),
			Port:            getEnv("ATELIER_PORT", "8080"),
			ReadTimeout:     getEnvDuration("ATELIER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("ATELIER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("ATELIER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("ATELIER_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("ATELIER_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("ATELIER_POSTGRES_URL", ""),
			MaxOpenConns:    getEnvInt("ATELIER_POSTGRES_MAX_CONNS", 25),
			MaxIdleConns:    getEnvInt("ATELIER_POSTGRES_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("ATELIER_POSTGRES_CONN_LIFETIME", 5*time.Minute),
			AutoMigrate:     getEnvBool("ATELIER_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("ATELIER_REDIS_ADDR", ""),
			Password: getEnv("ATELIER_REDIS_PASSWORD", ""),
			DB:       getEnvInt("ATELIER_REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Enabled: getEnvBool("ATELIER_CACHE_ENABLED", true),
			L1Size:  getEnvInt("ATELIER_L1_CACHE_SIZE", 1024),
			TTL:     getEnvDuration("ATELIER_CACHE_TTL", 5*time.Minute),
		},
		Billing: BillingConfig{
			RenewalSchedule: getEnv("ATELIER_RENEWAL_SCHEDULE", billing.DefaultRenewalSchedule),
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.ParseLogLevel(getEnv("ATELIER_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("ATELIER_METRICS_ENABLED", true),
		},
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
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Cache.Enabled && c.Cache.L1Size <= 0 {
		return fmt.Errorf("L1 cache size must be positive when the cache is enabled")
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

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
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

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
