// Package config loads and validates application configuration from
// environment variables. Load is called exactly once at startup; the
// resulting Config is immutable and passed to each component at construction.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Operating modes. Production suppresses diagnostic detail in error responses.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL,required"`

	// JWTSecret signs and verifies bearer tokens. Required.
	JWTSecret string `env:"JWT_SECRET,required"`

	// TokenTTL is the lifetime of tokens issued at login.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// Env selects the operating mode: "production" or "development".
	// Error responses include a diagnostic detail field only outside production.
	Env string `env:"APP_ENV" envDefault:"production"`

	// LogLevel controls the minimum log level: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// RateLimitRequests is the number of requests allowed per window per
	// client IP. Zero disables rate limiting.
	RateLimitRequests int `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`

	// RateLimitWindow is the fixed window the request budget applies to.
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	// RedisAddr, when set, backs the rate limiter with Redis so the budget
	// is shared across instances. Empty means a per-process in-memory limiter.
	RedisAddr string `env:"REDIS_ADDR"`

	// MaxBodyBytes caps the size of any request body.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"10485760"`

	// MaxUploadBytes caps the size of a single uploaded image file.
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	// UploadDir is the directory uploaded images are written to.
	UploadDir string `env:"UPLOAD_DIR" envDefault:"uploads"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming any required variable that is not set.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.Env != EnvProduction && cfg.Env != EnvDevelopment {
		return Config{}, fmt.Errorf("config.Load: APP_ENV must be %q or %q, got %q",
			EnvProduction, EnvDevelopment, cfg.Env)
	}
	return cfg, nil
}

// Dev reports whether the server is running in development mode.
func (c Config) Dev() bool { return c.Env == EnvDevelopment }
