package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/repoquality/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetManager(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}  // Reset for test
	closeOnce = sync.Once{} // Reset for test
	Manager = &CacheStoreManager{}
}

func TestCaching(t *testing.T) {
	t.Run("single setup", func(t *testing.T) {
		resetManager(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		analysisPath := filepath.Join(dir, "analysis.db")

		require.NoError(t, InitCaching(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, analysisPath))
		assert.NotNil(t, Manager.GetResultStore())
		assert.NotNil(t, Manager.GetAnalysisStore())
		CloseCaching()

		assert.FileExists(t, cachePath)
		assert.FileExists(t, analysisPath)
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetManager(t)
		path := filepath.Join(t.TempDir(), "cache.db")

		var wg sync.WaitGroup
		errs := make([]error, 5)
		for i := range errs {
			wg.Go(func() {
				errs[i] = InitCaching(schema.SQLiteBackend, path, "", "")
			})
		}
		wg.Wait()
		for _, err := range errs {
			assert.NoError(t, err)
		}
		assert.NotNil(t, Manager.GetResultStore())
		assert.Nil(t, Manager.GetAnalysisStore())

		CloseCaching()
		CloseCaching()
	})

	t.Run("disabled stores", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitCaching("", "", "", ""))
		assert.Nil(t, Manager.GetResultStore())
		assert.Nil(t, Manager.GetAnalysisStore())
		assert.ErrorContains(t, ExecuteAnalysisExport("out"), "disabled")
		CloseCaching()
	})

	t.Run("analysis failure closes result store", func(t *testing.T) {
		resetManager(t)
		err := InitCaching(schema.SQLiteBackend, filepath.Join(t.TempDir(), "c.db"), schema.DatabaseBackend("oracle"), "")
		assert.ErrorContains(t, err, "failed to initialize analysis store")
		assert.Nil(t, Manager.GetResultStore())
	})
}

func TestClearCacheAndAnalysis(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	assert.NoFileExists(t, path)

	// Missing files are not an error
	require.NoError(t, ClearAnalysis(schema.SQLiteBackend, path, ""))
	require.NoError(t, ClearCache(schema.NoneBackend, "", ""))

	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.Error(t, ClearAnalysis(schema.DatabaseBackend("oracle"), "", ""))
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	writeCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	now := time.Now()
	writeCacheStatus(&buf, schema.CacheStatus{
		Backend: "sqlite", Connected: true, TotalEntries: 1500,
		LastEntryTime: now, OldestEntryTime: now.Add(-time.Hour), TableSizeBytes: 2_000_000,
	})
	out := buf.String()
	assert.Contains(t, out, "Total Entries: 1,500")
	assert.Contains(t, out, "Table Size: 2.0 MB")
	assert.Contains(t, out, "1 hour ago")

	buf.Reset()
	writeAnalysisStatus(&buf, schema.AnalysisStatus{
		Backend: "sqlite", Connected: true, TotalRuns: 2, LastRunID: 2,
		LastRunTime: now, OldestRunTime: now, TotalRepositories: 42,
		TableSizes: map[string]int64{RepositoryRecordsTable: 40, AnalysisRunsTable: 2},
	})
	out = buf.String()
	assert.Contains(t, out, "Total Repositories Analyzed: 42")
	assert.Less(t,
		bytes.Index(buf.Bytes(), []byte(AnalysisRunsTable)),
		bytes.Index(buf.Bytes(), []byte(RepositoryRecordsTable)))
}
