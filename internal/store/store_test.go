package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func drivers(t *testing.T) map[string]Store {
	return map[string]Store{
		DriverMemory: NewMemoryStore(),
		DriverSQLite: openSQLite(t),
	}
}

func TestStore_GetAbsent_ReturnsNotOK(t *testing.T) {
	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			v, ok, err := s.Get(context.Background(), "missing")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, v)
		})
	}
}

func TestStore_SetGetOverwrite(t *testing.T) {
	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, "k", `["01310000"]`))
			require.NoError(t, s.Set(ctx, "k", `["01310000","20040002"]`))

			v, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, `["01310000","20040002"]`, v)
		})
	}
}

func TestStore_EmptyValueIsPresent(t *testing.T) {
	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, "k", ""))

			_, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestStore_RemoveDeletesKey(t *testing.T) {
	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, "k", "v"))
			require.NoError(t, s.Remove(ctx, "k"))
			require.NoError(t, s.Remove(ctx, "k"), "removing an absent key is not an error")

			_, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "kv.db")

	s, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "searchHistory", `["01310000"]`))
	require.NoError(t, s.Maintain(ctx))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, "searchHistory")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `["01310000"]`, v)
}

func TestMemoryStore_CountsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "a", "1"))
	_, _, _ = s.Get(ctx, "a")
	require.NoError(t, s.Remove(ctx, "a"))

	assert.Equal(t, 2, s.Writes())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "redis", "")
	require.Error(t, err)
}
