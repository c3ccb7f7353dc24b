package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "fintrack.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLiteStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, ok, err := s.Get(ctx, "finance:transactions")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "finance:transactions", []byte(`[]`)))
	require.NoError(t, s.Set(ctx, "finance:transactions", []byte(`[{"id":"a"}]`)))

	got, ok, err := s.Get(ctx, "finance:transactions")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, string(got))

	require.NoError(t, s.Delete(ctx, "finance:transactions"))
	_, ok, err = s.Get(ctx, "finance:transactions")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Ping(ctx))
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)
	require.NoError(t, s.Set(ctx, "finance:budgetLimit", []byte("100")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "finance:budgetLimit")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "100", string(got))
}

func TestSchemaVersion(t *testing.T) {
	_, path := newTestStore(t)

	version, dirty, err := SchemaVersion(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, RunMigrations(path), "re-running is a no-op")

	empty := filepath.Join(t.TempDir(), "empty.db")
	version, _, err = SchemaVersion(empty)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}
