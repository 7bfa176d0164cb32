package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/contacts-app/internal/config"
	"gitlab.com/dirk.krummacker/contacts-app/internal/model"
)

// openSQLite creates a migrated SQLite database in a temporary directory.
func openSQLite(t *testing.T) *SQLStore {
	ctx := context.Background()
	db, err := Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "contacts.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "migrating twice must be harmless")

	s, err := New(db)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// TestSQLiteLifecycle runs insert, find, update and delete against a real database.
func TestSQLiteLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	ada := model.Contact{First: "Ada", Last: "Lovelace", Email: "ada@x.com"}
	require.NoError(t, s.Insert(ctx, &ada))
	assert.Equal(t, int64(1), ada.Id)

	found, err := s.FindByID(ctx, ada.Id)
	require.NoError(t, err)
	assert.Equal(t, ada, found)

	ada.Phone = "+44 20 7946 0000"
	require.NoError(t, s.Update(ctx, ada))
	require.NoError(t, s.Update(ctx, ada), "saving unchanged values is not a miss")
	found, err = s.FindByID(ctx, ada.Id)
	require.NoError(t, err)
	assert.Equal(t, "+44 20 7946 0000", found.Phone)

	require.NoError(t, s.Delete(ctx, ada.Id))
	_, err = s.FindByID(ctx, ada.Id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, ada.Id), ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, ada), ErrNotFound)
}

// TestSQLiteIdsAreNotReused expects that a deleted id is never handed out again.
func TestSQLiteIdsAreNotReused(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	first := model.Contact{First: "A", Email: "a@x.com"}
	require.NoError(t, s.Insert(ctx, &first))
	require.NoError(t, s.Delete(ctx, first.Id))

	second := model.Contact{First: "B", Email: "b@x.com"}
	require.NoError(t, s.Insert(ctx, &second))
	assert.Greater(t, second.Id, first.Id)
}

// TestSQLiteEmailIsUniqueAndCaseSensitive expects the unique index to reject an identical email
// but to accept one that differs in case only.
func TestSQLiteEmailIsUniqueAndCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	require.NoError(t, s.Insert(ctx, &model.Contact{First: "A", Email: "a@x.com"}))
	assert.Error(t, s.Insert(ctx, &model.Contact{First: "B", Email: "a@x.com"}))
	require.NoError(t, s.Insert(ctx, &model.Contact{First: "C", Email: "A@x.com"}))

	contacts, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "A", contacts[0].First)
}

// TestSQLiteInsertAll expects that seeded ids are kept and that later inserts continue after them.
func TestSQLiteInsertAll(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	require.NoError(t, s.InsertAll(ctx, []model.Contact{
		{Id: 5, First: "Five", Email: "five@x.com"},
		{Id: 2, First: "Two", Email: "two@x.com"},
	}))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(2), all[0].Id)
	assert.Equal(t, int64(5), all[1].Id)

	next := model.Contact{First: "Six", Email: "six@x.com"}
	require.NoError(t, s.Insert(ctx, &next))
	assert.Equal(t, int64(6), next.Id)
}

// TestSQLiteInsertAllRollsBack expects that a failing seed leaves the table untouched.
func TestSQLiteInsertAllRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	err := s.InsertAll(ctx, []model.Contact{
		{First: "One", Email: "dup@x.com"},
		{First: "Two", Email: "dup@x.com"},
	})
	assert.Error(t, err)
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

// TestOpenRejectsMemoryDriver expects an error for a driver without SQL database.
func TestOpenRejectsMemoryDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: config.DriverMemory})
	assert.Error(t, err)
}
