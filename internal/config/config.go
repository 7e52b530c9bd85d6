// Package config provides environment-driven configuration for the back-office server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL           Secret
	DBMaxConns            int32
	Port                  string
	ListenHost            string
	MetricsPort           string
	CORSOrigins           []string
	LogLevel              string
	JWTSecret             Secret
	JWTIssuer             string
	JWTAudience           string
	ApprovalModel         string
	BookingHoldTTL        time.Duration
	BookingExpirySchedule string
	NotifyQueueSize       int
	AMQPURL               Secret
	AMQPExchange          string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present; real
// environment variables take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env is optional.

	cfg := &Config{
		DatabaseURL:           Secret(envOrDefault("DATABASE_URL", "")),
		Port:                  envOrDefault("PORT", "3030"),
		ListenHost:            envOrDefault("LISTEN_HOST", "127.0.0.1"),
		MetricsPort:           envOrDefault("METRICS_PORT", "9091"),
		LogLevel:              envOrDefault("LOG_LEVEL", "info"),
		JWTSecret:             Secret(envOrDefault("JWT_SECRET", "")),
		JWTIssuer:             envOrDefault("JWT_ISSUER", ""),
		JWTAudience:           envOrDefault("JWT_AUDIENCE", ""),
		ApprovalModel:         envOrDefault("APPROVAL_MODEL", "single"),
		BookingExpirySchedule: envOrDefault("BOOKING_EXPIRY_SCHEDULE", "@every 5m"),
		AMQPURL:               Secret(envOrDefault("AMQP_URL", "")),
		AMQPExchange:          envOrDefault("AMQP_EXCHANGE", "backoffice.events"),
	}

	maxConns, err := strconv.Atoi(envOrDefault("DB_MAX_CONNS", "21"))
	if err != nil || maxConns < 2 || maxConns > 200 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be an integer between 2 and 200")
	}
	cfg.DBMaxConns = int32(maxConns) //nolint:gosec // bounded above.

	queueSize, err := strconv.Atoi(envOrDefault("NOTIFY_QUEUE_SIZE", "1000"))
	if err != nil || queueSize < 1 || queueSize > 100000 {
		return nil, fmt.Errorf("NOTIFY_QUEUE_SIZE must be an integer between 1 and 100000")
	}
	cfg.NotifyQueueSize = queueSize

	ttl, err := time.ParseDuration(envOrDefault("BOOKING_HOLD_TTL", "72h"))
	if err != nil {
		return nil, fmt.Errorf("BOOKING_HOLD_TTL must be a duration: %w", err)
	}
	cfg.BookingHoldTTL = ttl

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3000")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listener address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
