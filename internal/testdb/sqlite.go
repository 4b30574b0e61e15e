package testdb

import (
	"testing"

	"gorm.io/gorm"

	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

// SetupSQLite opens a fresh in-memory store for one test.
func SetupSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := repo.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
