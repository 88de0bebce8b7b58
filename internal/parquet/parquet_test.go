package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repoquality/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestAnalysisRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(AnalysisRun))
	for _, name := range []string{
		"analysis_id", "start_time", "end_time", "run_duration_ms",
		"total_repositories", "succeeded_repositories", "config_params",
	} {
		_, ok := s.Lookup(name)
		assert.True(t, ok, "column %s should exist", name)
	}
}

func TestRepositoryRecordStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(RepositoryRecord))
	for _, name := range []string{
		"analysis_id", "repository", "analysis_time", "metrics_source", "strategy",
		"loc", "comments", "stars", "age_years", "releases", "size_kb",
		"cbo_mean", "dit_mean", "lcom_mean", "wmc_mean", "record_json",
	} {
		_, ok := s.Lookup(name)
		assert.True(t, ok, "column %s should exist", name)
	}
}

func TestWriteAnalysisRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	duration := int32(end.Sub(start).Milliseconds())
	params := `{"workers":4}`

	data := ConvertAnalysisRunRecords([]schema.AnalysisRunRecord{
		{AnalysisID: 1, StartTime: start, EndTime: &end, RunDurationMs: &duration, TotalRepositories: 10, Succeeded: 8, ConfigParams: &params},
		{AnalysisID: 2, StartTime: start.Add(time.Hour)},
	})
	require.NoError(t, WriteAnalysisRunsParquet(data, outputPath))

	got := readAll[AnalysisRun](t, outputPath)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].AnalysisID)
	assert.Equal(t, int32(10), got[0].TotalRepositories)
	assert.Equal(t, int32(8), got[0].SucceededRepositories)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, end, *got[0].EndTime, time.Microsecond)
	require.NotNil(t, got[0].RunDurationMs)
	assert.Equal(t, duration, *got[0].RunDurationMs)
	require.NotNil(t, got[0].ConfigParams)
	assert.Equal(t, params, *got[0].ConfigParams)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteRepositoryRecordsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "records.parquet")
	strategy := "jar"
	cbo := 4.25

	data := ConvertRepositoryRecordRows([]schema.RepositoryRecordRow{
		{
			AnalysisID: 3, Repository: "apache/kafka", AnalysisTime: time.Now().UTC(),
			MetricsSource: "extractor", Strategy: &strategy,
			LOC: 1000, Comments: 200, Stars: 25000, AgeYears: 12.5, Releases: 80, SizeKB: 90000,
			CBOMean: &cbo, RecordJSON: `{"repository":"apache/kafka"}`,
		},
		{
			AnalysisID: 3, Repository: "tiny/lib", AnalysisTime: time.Now().UTC(),
			MetricsSource: "fallback", LOC: 10, RecordJSON: `{}`,
		},
	})
	require.NoError(t, WriteRepositoryRecordsParquet(data, outputPath))

	got := readAll[RepositoryRecord](t, outputPath)
	require.Len(t, got, 2)

	assert.Equal(t, "apache/kafka", got[0].Repository)
	assert.Equal(t, "extractor", got[0].MetricsSource)
	require.NotNil(t, got[0].Strategy)
	assert.Equal(t, "jar", *got[0].Strategy)
	require.NotNil(t, got[0].CBOMean)
	assert.InDelta(t, 4.25, *got[0].CBOMean, 1e-9)
	assert.Nil(t, got[0].DITMean)
	assert.InDelta(t, 12.5, got[0].AgeYears, 1e-9)

	assert.Equal(t, "fallback", got[1].MetricsSource)
	assert.Nil(t, got[1].Strategy)
	assert.Nil(t, got[1].CBOMean)
}

func TestWriteParquetEmptyAndBadPath(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRepositoryRecordsParquet(nil, outputPath))
	assert.Empty(t, readAll[RepositoryRecord](t, outputPath))

	err := WriteAnalysisRunsParquet(nil, filepath.Join(t.TempDir(), "missing", "runs.parquet"))
	assert.ErrorContains(t, err, "failed to create output file")
}
