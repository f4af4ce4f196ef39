package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mwantia/dungeonrun/pkg/db/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(SQLiteConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestNewSQLiteStoreRequiresPath(t *testing.T) {
	_, err := NewSQLiteStore(SQLiteConfig{})
	require.Error(t, err)
}

func TestSQLiteStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t, filepath.Join(t.TempDir(), "runs.db"))

	_, err := s.Get(ctx, "dungeonRuns")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "dungeonRuns", `[]`))
	require.NoError(t, s.Put(ctx, "dungeonRuns", `[{"id":1}]`))

	value, err := s.Get(ctx, "dungeonRuns")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, value)

	require.ErrorIs(t, s.Put(ctx, "", "x"), ErrEmptyKey)

	require.NoError(t, s.Delete(ctx, "dungeonRuns"))
	_, err = s.Get(ctx, "dungeonRuns")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	first, err := NewSQLiteStore(SQLiteConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, first.Connect(ctx))
	require.NoError(t, first.Migrate(ctx))
	require.NoError(t, first.Put(ctx, "selectedCharacter", "Alt"))
	require.NoError(t, first.Close())

	second := newTestSQLiteStore(t, path)
	value, err := second.Get(ctx, "selectedCharacter")
	require.NoError(t, err)
	assert.Equal(t, "Alt", value)
	require.NoError(t, second.Health(ctx))
}

func TestSQLiteStoreBatch(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t, filepath.Join(t.TempDir(), "runs.db"))

	require.NoError(t, s.Put(ctx, "lastDeletedRun", `{"id":1}`))
	require.NoError(t, s.Batch(ctx,
		Change{Key: "dungeonRuns", Value: `[{"id":1}]`},
		Change{Key: "lastDeletedRun", Delete: true},
	))

	value, err := s.Get(ctx, "dungeonRuns")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, value)
	_, err = s.Get(ctx, "lastDeletedRun")
	assert.ErrorIs(t, err, ErrNotFound)

	// A failing change rolls back the ones before it
	err = s.Batch(ctx,
		Change{Key: "dungeonRuns", Value: `[]`},
		Change{Key: "", Value: "x"},
	)
	require.ErrorIs(t, err, ErrEmptyKey)

	value, err = s.Get(ctx, "dungeonRuns")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, value)
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t, filepath.Join(t.TempDir(), "runs.db"))

	require.NoError(t, migrations.NewMigrator(s.DB()).Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))
	assert.True(t, s.DB().Migrator().HasTable("entries"))

	var applied int64
	require.NoError(t, s.DB().Table("migration_histories").Count(&applied).Error)
	assert.Equal(t, int64(1), applied)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.Health(ctx))

	require.NoError(t, s.Put(ctx, "b", "2"))
	require.NoError(t, s.Put(ctx, "a", "1"))

	err := s.Batch(ctx, Change{Key: "a", Value: "3"}, Change{Key: ""})
	require.ErrorIs(t, err, ErrEmptyKey)
	value, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", value)

	require.NoError(t, s.Batch(ctx, Change{Key: "a", Delete: true}, Change{Key: "b", Value: "4"}))
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	value, err = s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "4", value)
}
