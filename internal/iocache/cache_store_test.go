package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repoquality/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteCache(t *testing.T) *CacheStoreImpl {
	t.Helper()
	store, err := NewCacheStore(ResultCacheTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*CacheStoreImpl)
}

func TestCacheStoreRoundTrip(t *testing.T) {
	store := newSQLiteCache(t)

	_, _, _, err := store.Get("apache/kafka")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("apache/kafka", []byte(`{"loc":10}`), 1, 1700000000))
	value, version, ts, err := store.Get("apache/kafka")
	require.NoError(t, err)
	assert.Equal(t, `{"loc":10}`, string(value))
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(1700000000), ts)

	// Set replaces the previous entry
	require.NoError(t, store.Set("apache/kafka", []byte(`{"loc":20}`), 2, 1700000100))
	value, version, _, err = store.Get("apache/kafka")
	require.NoError(t, err)
	assert.Equal(t, `{"loc":20}`, string(value))
	assert.Equal(t, 2, version)
}

func TestCacheStoreStatus(t *testing.T) {
	store := newSQLiteCache(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, "sqlite", status.Backend)
	assert.Zero(t, status.TotalEntries)

	require.NoError(t, store.Set("a/a", []byte("x"), 1, 1000))
	require.NoError(t, store.Set("b/b", []byte("y"), 1, 2000))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(1000, 0), status.OldestEntryTime)
	assert.Equal(t, time.Unix(2000, 0), status.LastEntryTime)
	assert.Positive(t, status.TableSizeBytes)
}

func TestCacheStoreNoneBackend(t *testing.T) {
	store, err := NewCacheStore(ResultCacheTable, schema.NoneBackend, "")
	require.NoError(t, err)

	require.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCacheStoreRejectsBadInput(t *testing.T) {
	_, err := NewCacheStore("result; DROP TABLE x", schema.SQLiteBackend, ":memory:")
	assert.ErrorContains(t, err, "invalid table name")

	_, err = NewCacheStore(ResultCacheTable, schema.DatabaseBackend("oracle"), "")
	assert.ErrorContains(t, err, "unsupported database backend")
}

func TestSQLHelpers(t *testing.T) {
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.SQLiteBackend))

	assert.Equal(t, "$1, $2, $3", placeholders(schema.PostgreSQLBackend, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 2))

	for _, name := range []string{"result_cache", "_x", "T1"} {
		assert.NoError(t, validateTableName(name), name)
	}
	for _, name := range []string{"", "1abc", "a-b", `a"b`} {
		assert.Error(t, validateTableName(name), name)
	}

	ts := time.Date(2025, 1, 2, 3, 4, 5, 600, time.UTC)
	got, err := scanTime(formatTime(ts, schema.SQLiteBackend))
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))

	got, err = scanTime([]byte("2025-01-02 03:04:05.000001"))
	require.NoError(t, err)
	assert.Equal(t, 1000, got.Nanosecond())

	_, err = scanTime(42)
	assert.Error(t, err)
}

func TestMySQLDBName(t *testing.T) {
	assert.Equal(t, "quality", mysqlDBName(schema.MySQLBackend, "root:pw@tcp(localhost:3306)/quality"))
	assert.Empty(t, mysqlDBName(schema.PostgreSQLBackend, "root:pw@tcp(localhost:3306)/quality"))
}
