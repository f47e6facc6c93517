package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens a database for tests. When TEST_DATABASE_URL is set
// it connects to PostgreSQL; otherwise it opens a fresh file-based
// SQLite database under t.TempDir(). File-based rather than :memory:
// because the store is exercised from multiple goroutines and each
// sqlite :memory: connection gets its own database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		require.NoError(t, err, "open postgres test db")

		sqlDB, err := db.DB()
		require.NoError(t, err, "get underlying sql.DB")
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(1)

		// Clean before AND after to ensure test isolation.
		cleanupPostgresDB(t, db)
		t.Cleanup(func() {
			cleanupPostgresDB(t, db)
			_ = sqlDB.Close()
		})
		return db
	}

	dbPath := filepath.Join(t.TempDir(), "jobs.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open sqlite test db")
	return db
}

// cleanupPostgresDB deletes all rows so tests are isolated without
// requiring a fresh database per test.
func cleanupPostgresDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	db.Exec("DELETE FROM jobs")
}

// openTestStore opens a DB, creates a GormStore, and migrates.
func openTestStore(t *testing.T) *GormStore {
	t.Helper()
	store := NewGormStore(openTestDB(t))
	require.NoError(t, store.Migrate(context.Background()))
	return store
}
