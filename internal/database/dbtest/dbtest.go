// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"testing"

	"hospital-equipment-tracker/internal/config"
	"hospital-equipment-tracker/internal/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory sqlite database that is closed when the
// test ends
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", Path: "file::memory:"},
		Server:   config.ServerConfig{GinMode: "release"},
	}
	db, err := database.Connect(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
