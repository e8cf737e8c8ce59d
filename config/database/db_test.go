package database

import (
	"path/filepath"
	"testing"

	"beleske/config"
	"beleske/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLiteCreatesTables(t *testing.T) {
	cfg := config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "task.db"),
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, Close(db)) })

	assert.True(t, db.Migrator().HasTable(&store.Note{}))
	assert.True(t, db.Migrator().HasTable(&store.User{}))

	// Running the migration again on existing tables is a no-op.
	assert.NoError(t, Migrate(db))
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
