package storage

import (
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/propdocs/jobtrack/pkg/core"
)

// PoolConfig holds connection pool configuration.
type PoolConfig struct {
	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 25
	MaxOpenConns int

	// MaxIdleConns is the maximum number of connections in the idle pool.
	// Default: 10
	MaxIdleConns int

	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	// Default: 5 minutes
	ConnMaxLifetime time.Duration

	// ConnMaxIdleTime is the maximum amount of time a connection may be idle.
	// Default: 1 minute
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig returns sensible defaults for connection pooling.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// PoolOption configures connection pool settings.
type PoolOption interface {
	applyPool(*PoolConfig)
}

type poolOptionFunc func(*PoolConfig)

func (f poolOptionFunc) applyPool(c *PoolConfig) { f(c) }

// MaxOpenConns sets the maximum number of open connections.
func MaxOpenConns(n int) PoolOption {
	return poolOptionFunc(func(c *PoolConfig) {
		c.MaxOpenConns = n
	})
}

// MaxIdleConns sets the maximum number of idle connections.
// Should be less than or equal to MaxOpenConns.
func MaxIdleConns(n int) PoolOption {
	return poolOptionFunc(func(c *PoolConfig) {
		c.MaxIdleConns = n
	})
}

// ConnMaxLifetime sets the maximum connection lifetime.
func ConnMaxLifetime(d time.Duration) PoolOption {
	return poolOptionFunc(func(c *PoolConfig) {
		c.ConnMaxLifetime = d
	})
}

// ConnMaxIdleTime sets the maximum idle time for connections.
func ConnMaxIdleTime(d time.Duration) PoolOption {
	return poolOptionFunc(func(c *PoolConfig) {
		c.ConnMaxIdleTime = d
	})
}

// ConfigurePool applies pool configuration to a GORM database connection.
func ConfigurePool(db *gorm.DB, opts ...PoolOption) error {
	config := DefaultPoolConfig()
	for _, opt := range opts {
		opt.applyPool(&config)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return &core.PersistenceError{Op: "configure pool", Err: err}
	}

	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	return nil
}

// Open connects to the job store database and applies pool options.
// postgres:// and postgresql:// URLs use the Postgres driver; anything
// else is treated as a SQLite DSN.
func Open(databaseURL string, opts ...PoolOption) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, &core.PersistenceError{Op: "open database", Err: err}
	}
	if err := ConfigurePool(db, opts...); err != nil {
		return nil, err
	}
	return db, nil
}
