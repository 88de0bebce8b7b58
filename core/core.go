// Package core has core logic for acquisition, extraction, aggregation and correlation.
package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/huangsam/repoquality/core/agg"
	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/internal/extractor"
	"github.com/huangsam/repoquality/internal/ghmeta"
	"github.com/huangsam/repoquality/internal/listing"
	"github.com/huangsam/repoquality/internal/outwriter"
	"github.com/huangsam/repoquality/internal/report"
	"github.com/huangsam/repoquality/internal/telemetry"
	"github.com/huangsam/repoquality/schema"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ErrEmptyListing is returned when the listing holds no usable repository.
var ErrEmptyListing = errors.New("repository listing is empty")

// ExecuteAnalyze runs the batch over the repository listing and prints the outcome summary.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if err := contract.ValidateAnalyzeInputs(cfg); err != nil {
		return err
	}
	descs, err := listing.Read(cfg.ReposFile, cfg.MaxRepos)
	if err != nil {
		return err
	}
	if len(descs) == 0 {
		return ErrEmptyListing
	}

	recorder := telemetry.NewRecorder()
	pipeline, closeFn := newPipeline(cfg, recorder)
	defer closeFn()

	results, summary, err := runBatch(ctx, cfg, mgr, descs, pipeline.Analyze, recorder)
	if printErr := outwriter.WriteBatchResults(results, summary, cfg); printErr != nil {
		contract.LogWarn("Failed to print batch results", printErr)
	}
	return err
}

// AnalyzeRepository runs the pipeline for a single repository outside of a batch.
// The record is returned but not appended to the dataset.
func AnalyzeRepository(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, desc schema.RepositoryDescriptor) (schema.RepositoryResult, error) {
	if err := contract.ValidateExtractorInputs(cfg); err != nil {
		return schema.RepositoryResult{}, err
	}
	pipeline, closeFn := newPipeline(cfg, nil)
	defer closeFn()

	ctx = contextWithCacheManager(ctx, mgr)
	c := &Coordinator{Analyze: pipeline.Analyze, Workers: 1, Resume: cfg.Resume}
	results := c.Run(ctx, []schema.RepositoryDescriptor{desc}, NewRunContext(1, nil))
	result := results[0]
	return result, result.Err
}

// newPipeline wires the local git client, the bounded extractor launcher and the
// optional metadata client. The returned func releases the launcher pool.
func newPipeline(cfg *contract.Config, recorder *telemetry.Recorder) (*Pipeline, func()) {
	launcher := extractor.NewLauncher(contract.NewLocalCommandRunner(), cfg.ExtractorTimeout, cfg.EffectiveExtractorWorkers())
	adapter := extractor.NewDefaultAdapter(extractor.Settings{
		JavaPath: cfg.JavaPath,
		JarPath:  cfg.ExtractorJar,
	}, launcher).OnAttempt(func(a extractor.Attempt) {
		recorder.ObserveAttempt(a.Strategy, a.Table != "" && a.Err == nil)
	})

	var metadata contract.MetadataClient
	if cfg.Metadata {
		metadata = ghmeta.NewClient(cfg.Token)
	}
	return NewPipeline(contract.NewLocalGitClient(), adapter, metadata), launcher.Close
}

// runBatch fans the descriptors out, tracks the run in the analysis store and writes
// the telemetry file. It returns ErrNoResults when not a single record came out.
func runBatch(
	ctx context.Context,
	cfg *contract.Config,
	mgr contract.CacheManager,
	descs []schema.RepositoryDescriptor,
	analyze AnalyzeFunc,
	recorder *telemetry.Recorder,
) ([]schema.RepositoryResult, schema.BatchSummary, error) {
	contract.LogInfo("Analyzing %d repositories with %d workers (extractor pool %d)",
		len(descs), cfg.Workers, cfg.EffectiveExtractorWorkers())

	// Add cache manager to context for use in worker goroutines
	ctx = contextWithCacheManager(ctx, mgr)

	// --- 0. Begin Analysis Tracking (if configured) ---
	var analysisID int64
	var analysisStore contract.AnalysisStore
	if mgr != nil {
		analysisStore = mgr.GetAnalysisStore()
	}
	if analysisStore != nil {
		configParams := map[string]any{
			"repos_file":        cfg.ReposFile,
			"output_dir":        cfg.OutputDir,
			"workers":           cfg.Workers,
			"extractor_workers": cfg.EffectiveExtractorWorkers(),
			"extractor_timeout": cfg.ExtractorTimeout.String(),
			"max_repos":         cfg.MaxRepos,
			"metadata":          cfg.Metadata,
			"resume":            cfg.Resume,
		}
		var err error
		analysisID, err = analysisStore.BeginAnalysis(time.Now(), configParams)
		if err != nil {
			contract.LogWarn("Analysis tracking initialization failed", err)
		} else if analysisID > 0 {
			ctx = withAnalysisID(ctx, analysisID)
		}
	}

	// --- 1. Batch ---
	dataset := agg.NewDatasetWriter(filepath.Join(cfg.OutputDir, contract.DatasetFileName), agg.DatasetColumns(agg.DefaultMetrics))
	rc := NewRunContext(len(descs), dataset,
		WithProgress(outwriter.NewProgress(cfg, len(descs))),
		WithTelemetry(recorder),
		WithRecordDir(cfg.OutputDir),
	)
	c := &Coordinator{Analyze: analyze, Workers: cfg.Workers, Resume: cfg.Resume}
	results := c.Run(ctx, descs, rc)
	summary := rc.Summary()

	// --- 2. End Analysis Tracking ---
	if analysisStore != nil && analysisID > 0 {
		if err := analysisStore.EndAnalysis(analysisID, time.Now(), summary.Total, summary.Records()); err != nil {
			contract.LogWarn("Failed to finalize analysis tracking", err)
		}
	}

	if err := recorder.WriteFile(cfg.MetricsFile); err != nil {
		contract.LogWarn("Failed to write metrics file", err)
	}

	if len(Records(results)) == 0 {
		return results, summary, ErrNoResults
	}
	return results, summary, nil
}

// ExecuteReport correlates the dataset, renders the report with its charts and prints
// the correlation table. It serves as the main entry point for the 'report' command.
func ExecuteReport(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	start := time.Now()
	d, err := agg.ReadDataset(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	opts := DefaultCorrelateOptions()
	opts.OutlierColumns = cfg.OutlierColumns
	rep, err := Correlate(d, opts)
	if err != nil {
		return err
	}
	contract.LogInfo("Removed %d outlier rows out of %d", rep.TotalRows-rep.CleanedRows, rep.TotalRows)

	files, err := report.Write(cfg.OutputDir, rep, TrimOutliers(d, opts.OutlierColumns), report.Options{
		Precision:  cfg.Precision,
		Now:        time.Now(),
		ReportFile: contract.ReportFileName,
		ChartsDir:  contract.ChartsDirName,
	})
	if err != nil {
		return err
	}
	contract.LogInfo("Report written to %s with %d charts", files.Report, len(files.Charts))

	return outwriter.WriteCorrelationResults(rep, cfg, time.Since(start))
}

// ExecuteFetch searches GitHub for the most starred repositories and writes the listing.
// It serves as the main entry point for the 'fetch' command.
func ExecuteFetch(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	client := ghmeta.NewClient(cfg.Token)
	if !client.Authenticated() {
		contract.LogInfo("No GitHub token configured; search is rate limited")
	}
	descs, err := client.SearchRepositories(ctx, cfg.FetchQuery, cfg.FetchPages, ghmeta.DefaultPerPage)
	if err != nil {
		if len(descs) == 0 {
			return fmt.Errorf("repository search failed: %w", err)
		}
		contract.LogWarn(fmt.Sprintf("Search stopped early, keeping %d repositories", len(descs)), err)
	}
	if err := listing.Write(cfg.ReposFile, descs); err != nil {
		return err
	}
	contract.LogInfo("Wrote %d repositories to %s", len(descs), cfg.ReposFile)
	return nil
}
