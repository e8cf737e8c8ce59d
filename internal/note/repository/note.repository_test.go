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

func newUser(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	u := store.User{Username: name, Password: "hash"}
	require.NoError(t, db.Create(&u).Error)
	return u.ID
}

func TestNoteRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(testutil.NewTestDB(t))

	note := &store.Note{Title: "groceries", Content: "milk, eggs"}
	require.NoError(t, repo.Create(ctx, note))
	require.NotZero(t, note.ID)

	got, err := repo.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "groceries", got.Title)
	assert.Equal(t, "milk, eggs", got.Content)
	assert.Nil(t, got.OwnerID)

	got.Title = "shopping"
	got.Content = "bread"
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "shopping", got.Title)
	assert.Equal(t, "bread", got.Content)

	require.NoError(t, repo.Delete(ctx, note.ID))
	_, err = repo.Get(ctx, note.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, note.ID), store.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &store.Note{ID: note.ID, Title: "x", Content: "y"}), store.ErrNotFound)
}

func TestNoteRepositoryListing(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewNoteRepository(db)

	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bobby")

	for _, n := range []*store.Note{
		{Title: "b", Content: "1", OwnerID: &alice},
		{Title: "a", Content: "2", OwnerID: &bob},
		{Title: "c", Content: "3", OwnerID: &alice},
		{Title: "d", Content: "4"},
	} {
		require.NoError(t, repo.Create(ctx, n))
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c", "d"}, titles(all), "listing keeps storage order")

	mine, err := repo.ListByOwner(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, titles(mine))

	none, err := repo.ListByOwner(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNoteRepositorySearchTitle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewNoteRepository(db)

	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bobby")

	for _, n := range []*store.Note{
		{Title: "zfoo", Content: "x", OwnerID: &alice},
		{Title: "bar", Content: "x", OwnerID: &alice},
		{Title: "FOOd", Content: "x", OwnerID: &bob},
		{Title: "a foo b", Content: "x", OwnerID: &bob},
		{Title: "100% sure", Content: "x", OwnerID: &bob},
		{Title: "snake_case", Content: "x", OwnerID: &bob},
	} {
		require.NoError(t, repo.Create(ctx, n))
	}

	found, err := repo.SearchTitle(ctx, "foo", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"FOOd", "a foo b", "zfoo"}, titles(found))

	scoped, err := repo.SearchTitle(ctx, "FOO", &alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"zfoo"}, titles(scoped))

	// Wildcards in the query are matched literally.
	pct, err := repo.SearchTitle(ctx, "%", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"100% sure"}, titles(pct))

	under, err := repo.SearchTitle(ctx, "_", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"snake_case"}, titles(under))

	empty, err := repo.SearchTitle(ctx, "nothing", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNoteRepositorySearchTitleUnicode(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(testutil.NewTestDB(t))

	for _, title := range []string{"Čokolada", "ŠUMA", "žaba"} {
		require.NoError(t, repo.Create(ctx, &store.Note{Title: title, Content: "x"}))
	}

	for _, tt := range []struct {
		query string
		want  []string
	}{
		{"Čok", []string{"Čokolada"}},
		{"čok", []string{"Čokolada"}},
		{"šum", []string{"ŠUMA"}},
		{"ŽAB", []string{"žaba"}},
	} {
		found, err := repo.SearchTitle(ctx, tt.query, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, titles(found), tt.query)
	}
}

func newMockRepo(t *testing.T) (*NoteRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return NewNoteRepository(db), mock
}

func TestNoteRepositoryPostgresErrors(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "notes"`).
		WillReturnError(&pq.Error{Code: "22001", Message: "value too long for type character varying(20)"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &store.Note{Title: "a title that is far too long", Content: "x"})
	assert.ErrorIs(t, err, store.ErrConstraint)

	mock.ExpectQuery(`SELECT \* FROM "notes"`).
		WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	_, err = repo.ListAll(context.Background())
	assert.ErrorIs(t, err, store.ErrUnavailable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositorySearchSQL(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "notes" WHERE LOWER\(title\) LIKE LOWER\(\$1\) ESCAPE '\\' ORDER BY title ASC`).
		WithArgs(`%Foo\_Bar%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "owner_id"}).
			AddRow(3, "Foo_Bar", "x", 1))

	notes, err := repo.SearchTitle(context.Background(), "Foo_Bar", nil)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, uint(3), notes[0].ID)
	assert.Equal(t, uint(1), notes[0].Owner())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func titles(notes []store.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Title)
	}
	return out
}
