// Package config loads jobtrack configuration from the environment.
//
// A .env file in the working directory is honored when present, matching
// the deployment convention of the services this module grew out of.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/propdocs/jobtrack/pkg/security"
	"github.com/propdocs/jobtrack/pkg/storage"
)

// Config holds service configuration.
type Config struct {
	// DatabaseURL points at the job store. postgres:// URLs use the
	// Postgres driver; anything else is treated as a SQLite DSN.
	DatabaseURL string `env:"DATABASE_URL" envDefault:"jobtrack.db"`

	// Workers is the fixed size of the execution pool.
	Workers int `env:"JOB_WORKERS" envDefault:"5"`

	// DrainTimeout bounds the graceful drain during Close.
	DrainTimeout time.Duration `env:"JOB_DRAIN_TIMEOUT" envDefault:"30s"`

	// Pool holds database connection pool tuning.
	Pool PoolSettings `envPrefix:"DB_"`
}

// PoolSettings mirrors storage.PoolConfig for env loading.
type PoolSettings struct {
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS"     envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS"     envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME"  envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"1m"`
}

// Load reads configuration from the environment, honoring a local .env
// file when present, and applies guardrails.
func Load() (*Config, error) {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize applies guardrails to values loaded from the environment.
func (c *Config) Sanitize() {
	if c.Workers < 1 {
		c.Workers = 5
	}
	c.Workers = security.ClampWorkers(c.Workers)
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = 30 * time.Second
	}
	if c.Pool.MaxOpenConns < 1 {
		c.Pool.MaxOpenConns = 25
	}
	if c.Pool.MaxIdleConns < 1 {
		c.Pool.MaxIdleConns = 10
	}
	if c.Pool.MaxIdleConns > c.Pool.MaxOpenConns {
		c.Pool.MaxIdleConns = c.Pool.MaxOpenConns
	}
	if c.Pool.ConnMaxLifetime <= 0 {
		c.Pool.ConnMaxLifetime = 5 * time.Minute
	}
	if c.Pool.ConnMaxIdleTime <= 0 {
		c.Pool.ConnMaxIdleTime = time.Minute
	}
}

// Open connects to the configured database with pool settings applied.
func (c *Config) Open() (*gorm.DB, error) {
	return storage.Open(c.DatabaseURL,
		storage.MaxOpenConns(c.Pool.MaxOpenConns),
		storage.MaxIdleConns(c.Pool.MaxIdleConns),
		storage.ConnMaxLifetime(c.Pool.ConnMaxLifetime),
		storage.ConnMaxIdleTime(c.Pool.ConnMaxIdleTime),
	)
}
