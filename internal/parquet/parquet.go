// Package parquet exports tracked analysis runs and repository records to Parquet
// files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/repoquality/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single batch run with metadata.
// This struct maps to the repoquality_analysis_runs database table.
type AnalysisRun struct {
	// AnalysisID is the unique identifier for this analysis run
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// StartTime is when the batch began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the batch completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalRepositories is the number of descriptors the batch was given
	TotalRepositories int32 `parquet:"total_repositories,snappy"`

	// SucceededRepositories is the number of records produced
	SucceededRepositories int32 `parquet:"succeeded_repositories,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RepositoryRecord is the flattened record of one analyzed repository.
// This struct maps to the repoquality_repository_records database table.
type RepositoryRecord struct {
	AnalysisID    int64     `parquet:"analysis_id,snappy"`
	Repository    string    `parquet:"repository,snappy"`
	AnalysisTime  time.Time `parquet:"analysis_time,snappy"`
	MetricsSource string    `parquet:"metrics_source,dict,snappy"`
	Strategy      *string   `parquet:"strategy,optional,snappy"`
	LOC           int32     `parquet:"loc,snappy"`
	Comments      int32     `parquet:"comments,snappy"`
	Stars         int32     `parquet:"stars,snappy"`
	AgeYears      float64   `parquet:"age_years,snappy"`
	Releases      int32     `parquet:"releases,snappy"`
	SizeKB        int32     `parquet:"size_kb,snappy"`

	// Class-level means are missing when the metric had no values
	CBOMean  *float64 `parquet:"cbo_mean,optional,snappy"`
	DITMean  *float64 `parquet:"dit_mean,optional,snappy"`
	LCOMMean *float64 `parquet:"lcom_mean,optional,snappy"`
	WMCMean  *float64 `parquet:"wmc_mean,optional,snappy"`

	// RecordJSON holds the complete record including every summary statistic
	RecordJSON string `parquet:"record_json,snappy"`
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRepositoryRecordsParquet writes a slice of RepositoryRecord structs to a Parquet file.
func WriteRepositoryRecordsParquet(data []RepositoryRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows using the schema inferred from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:            record.AnalysisID,
			StartTime:             record.StartTime,
			EndTime:               record.EndTime,
			RunDurationMs:         record.RunDurationMs,
			TotalRepositories:     record.TotalRepositories,
			SucceededRepositories: record.Succeeded,
			ConfigParams:          record.ConfigParams,
		}
	}
	return result
}

// ConvertRepositoryRecordRows converts schema.RepositoryRecordRow to RepositoryRecord for Parquet export.
func ConvertRepositoryRecordRows(rows []schema.RepositoryRecordRow) []RepositoryRecord {
	result := make([]RepositoryRecord, len(rows))
	for i, row := range rows {
		result[i] = RepositoryRecord{
			AnalysisID:    row.AnalysisID,
			Repository:    row.Repository,
			AnalysisTime:  row.AnalysisTime,
			MetricsSource: row.MetricsSource,
			Strategy:      row.Strategy,
			LOC:           row.LOC,
			Comments:      row.Comments,
			Stars:         row.Stars,
			AgeYears:      row.AgeYears,
			Releases:      row.Releases,
			SizeKB:        row.SizeKB,
			CBOMean:       row.CBOMean,
			DITMean:       row.DITMean,
			LCOMMean:      row.LCOMMean,
			WMCMean:       row.WMCMean,
			RecordJSON:    row.RecordJSON,
		}
	}
	return result
}
