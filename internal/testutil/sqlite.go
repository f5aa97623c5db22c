// Package testutil provides a migrated, file-backed SQLite database for
// integration-style service and handler tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cleanbook/scheduler-backend/internal/config"
	"github.com/cleanbook/scheduler-backend/internal/database"
	"github.com/cleanbook/scheduler-backend/internal/models"
)

// Seeded role ids. Roles are inserted in this order on every new database.
const (
	AdminRoleID   int64 = 1
	CleanerRoleID int64 = 2
)

// NewSQLiteDB opens a temporary SQLite database, creates the schema and
// seeds the Admin and Cleaner roles. The database is closed when the test
// ends.
func NewSQLiteDB(tb testing.TB) database.DB {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "scheduler.db")

	db, err := database.NewConnection(config.DatabaseConfig{
		Driver: "sqlite",
		URL:    "file:" + path,
	})
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}
	tb.Cleanup(func() {
		_ = db.Close()
	})

	ctx := context.Background()
	if err := database.CreateSchema(ctx, db); err != nil {
		tb.Fatalf("failed to create schema: %v", err)
	}

	roles := database.NewRoleRepository(db)
	for _, name := range []string{models.RoleAdmin, models.RoleCleaner} {
		if err := roles.Ensure(ctx, name); err != nil {
			tb.Fatalf("failed to seed role %s: %v", name, err)
		}
	}

	return db
}
