// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/config"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpenDB returns a migrated in-memory SQLite database private to t. The
// pool is capped at one connection so concurrent callers serialize the
// way a single-writer database would.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := models.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, false)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
