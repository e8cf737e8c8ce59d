package repository

import (
	"context"
	"testing"

	"beleske/internal/testutil"
	"beleske/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testutil.NewTestDB(t))

	exists, err := repo.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	alice := &store.User{Username: "alice", Password: "hash"}
	require.NoError(t, repo.Create(ctx, alice))
	assert.NotZero(t, alice.ID)

	exists, err = repo.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, "hash", got.Password)

	_, err = repo.GetByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, store.ErrNotFound, "lookup is by exact username")

	err = repo.Create(ctx, &store.User{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestUserRepositoryPostgresDuplicate(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_users_username"})
	mock.ExpectRollback()

	err = repo.Create(context.Background(), &store.User{Username: "alice", Password: "hash"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
