package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/huangsam/repoquality/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteObjects(t *testing.T, path, kind string) []string {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = ? AND name LIKE 'repoquality_%' OR (type = ? AND name LIKE 'idx_repoquality_%') ORDER BY name`, kind, kind)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestMigrateAnalysisSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")

	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, path, -1))
	assert.Equal(t, []string{AnalysisRunsTable, RepositoryRecordsTable}, sqliteObjects(t, path, "table"))
	assert.Equal(t, []string{"idx_repoquality_records_repository"}, sqliteObjects(t, path, "index"))

	// Running up again is a no-op
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, path, -1))

	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, path, 1))
	assert.Empty(t, sqliteObjects(t, path, "index"))
	assert.Len(t, sqliteObjects(t, path, "table"), 2)

	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, path, 0))
	assert.Empty(t, sqliteObjects(t, path, "table"))
}

func TestMigrateAnalysisMatchesRuntimeSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.db")
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, path, -1))

	store, err := NewAnalysisStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	id, err := store.BeginAnalysis(sampleRecord("a/a", schema.FallbackSource).AnalysisDate, nil)
	require.NoError(t, err)
	assert.NoError(t, store.RecordRepository(id, sampleRecord("a/a", schema.FallbackSource)))
}

func TestMigrateAnalysisUnsupported(t *testing.T) {
	assert.ErrorContains(t, MigrateAnalysis(schema.NoneBackend, "", -1), "not supported")
	assert.Error(t, MigrateAnalysis(schema.DatabaseBackend("oracle"), "", -1))
}

func TestMigrationSourcesExist(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		src, err := migrationSource(backend)
		require.NoError(t, err, backend)
		first, err := src.First()
		require.NoError(t, err, backend)
		assert.Equal(t, uint(1), first)
		next, err := src.Next(first)
		require.NoError(t, err, backend)
		assert.Equal(t, uint(2), next)
		_ = src.Close()
	}
}
