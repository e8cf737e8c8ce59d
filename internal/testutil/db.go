package testutil

import (
	"testing"

	"beleske/config/database"

	"gorm.io/gorm"
)

// NewTestDB creates an in-memory SQLite database with all tables created.
// It automatically closes the database when the test completes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.SQLite("file::memory:?_foreign_keys=on"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}

	// Every connection to :memory: is a separate database; pin the pool to one.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})
	return db
}
