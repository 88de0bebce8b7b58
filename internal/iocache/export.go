package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/internal/parquet"
)

// ErrNoAnalysisData is returned when an export finds no tracked run.
var ErrNoAnalysisData = errors.New("no analysis data found to export")

// ExecuteAnalysisExport exports the global analysis store to Parquet files.
func ExecuteAnalysisExport(outputFile string) error {
	store := Manager.GetAnalysisStore()
	if store == nil {
		return errors.New("analysis tracking is disabled")
	}
	_, err := ExportAnalysis(store, outputFile)
	return err
}

// ExportAnalysis writes the runs and repository records of a store next to outputFile
// and returns the two file paths.
func ExportAnalysis(store contract.AnalysisStore, outputFile string) ([]string, error) {
	if outputFile == "" {
		return nil, errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return nil, ErrNoAnalysisData
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total analysis runs: %d\n", status.TotalRuns)
	fmt.Printf("Total repository records: %d\n", status.TableSizes[RepositoryRecordsTable])

	analysisRuns, err := store.GetAllAnalysisRuns()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	records, err := store.GetAllRepositoryRecords()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve repository records: %w", err)
	}

	parquetRuns := parquet.ConvertAnalysisRunRecords(analysisRuns)
	parquetRecords := parquet.ConvertRepositoryRecordRows(records)

	analysisRunsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquetRuns, analysisRunsFile); err != nil {
		return nil, fmt.Errorf("failed to write analysis runs: %w", err)
	}
	fmt.Printf("Exported %d analysis runs to: %s\n", len(parquetRuns), analysisRunsFile)

	recordsFile := outputFile + ".repository_records.parquet"
	if err := parquet.WriteRepositoryRecordsParquet(parquetRecords, recordsFile); err != nil {
		return nil, fmt.Errorf("failed to write repository records: %w", err)
	}
	fmt.Printf("Exported %d repository records to: %s\n", len(parquetRecords), recordsFile)

	return []string{analysisRunsFile, recordsFile}, nil
}
