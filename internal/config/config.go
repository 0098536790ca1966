// Package config loads service configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all service configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL DSN.
	DatabaseURL string `env:"DATABASE_URL,required"`

	// ListenAddr is the HTTP listen address.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// LogLevel: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// AppEnv selects development (pretty logs) or production.
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	// AutoMigrate applies embedded schema migrations at startup.
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	// DBMaxConns caps the connection pool size.
	DBMaxConns int32 `env:"DB_MAX_CONNS" envDefault:"25"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	return env.ParseAs[Config]()
}

// Development reports whether the service runs in development mode.
func (c Config) Development() bool {
	return c.AppEnv == "development"
}
