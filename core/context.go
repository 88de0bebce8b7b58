package core

import (
	"context"
	"sync"
	"time"

	"github.com/huangsam/repoquality/core/agg"
	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/internal/telemetry"
	"github.com/huangsam/repoquality/schema"
)

// Context keys for run options
type contextKey string

const (
	analysisIDKey   contextKey = "analysisID"
	cacheManagerKey contextKey = "cacheManager"
)

// withAnalysisID stores the analysis run ID in the context
func withAnalysisID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, analysisIDKey, id)
}

// getAnalysisID returns the analysis run ID from context
func getAnalysisID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(analysisIDKey).(int64)
	return id, ok
}

// contextWithCacheManager stores the cache manager in the context
func contextWithCacheManager(ctx context.Context, mgr contract.CacheManager) context.Context {
	return context.WithValue(ctx, cacheManagerKey, mgr)
}

// cacheManagerFromContext returns the cache manager from context, or nil
func cacheManagerFromContext(ctx context.Context) contract.CacheManager {
	mgr, _ := ctx.Value(cacheManagerKey).(contract.CacheManager)
	return mgr
}

// ProgressReporter receives one call per finished repository, in completion order.
type ProgressReporter interface {
	Report(completed, total int, result schema.RepositoryResult)
	Finish()
}

// RunContext is the state shared by every worker of one batch.
// The counter, summary and dataset writer are guarded so workers can report concurrently.
type RunContext struct {
	mu        sync.Mutex
	total     int
	completed int
	summary   schema.BatchSummary
	started   time.Time

	dataset   *agg.DatasetWriter
	recordDir string
	progress  ProgressReporter
	telemetry *telemetry.Recorder
}

// RunOption configures a RunContext.
type RunOption func(*RunContext)

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) RunOption {
	return func(rc *RunContext) { rc.progress = p }
}

// WithTelemetry sets the telemetry recorder.
func WithTelemetry(t *telemetry.Recorder) RunOption {
	return func(rc *RunContext) { rc.telemetry = t }
}

// WithRecordDir makes every record also land in its own file under dir.
func WithRecordDir(dir string) RunOption {
	return func(rc *RunContext) { rc.recordDir = dir }
}

// NewRunContext prepares the shared state for total repositories.
// dataset may be nil when records are only returned.
func NewRunContext(total int, dataset *agg.DatasetWriter, opts ...RunOption) *RunContext {
	rc := &RunContext{
		total:   total,
		dataset: dataset,
		started: time.Now(),
		summary: schema.BatchSummary{Total: total},
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Complete records a finished repository: it persists the record, bumps the counter
// and reports progress. Dataset write failures turn the result into a failure.
func (rc *RunContext) Complete(result schema.RepositoryResult) schema.RepositoryResult {
	if result.Record != nil && result.Outcome != schema.ResumedOutcome {
		if err := rc.persist(*result.Record); err != nil {
			result.Outcome = schema.FailedOutcome
			result.Err = err
			result.Error = err.Error()
			result.Record = nil
		}
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.completed++
	switch result.Outcome {
	case schema.SucceededOutcome:
		rc.summary.Succeeded++
	case schema.FallbackOutcome:
		rc.summary.Fallback++
	case schema.SkippedOutcome:
		rc.summary.Skipped++
	case schema.ResumedOutcome:
		rc.summary.Resumed++
	default:
		rc.summary.Failed++
	}

	rc.telemetry.ObserveRepository(result.Outcome, result.Duration)
	// Reported under the lock so progress lines appear in completion order.
	if rc.progress != nil {
		rc.progress.Report(rc.completed, rc.total, result)
	}
	return result
}

func (rc *RunContext) persist(rec schema.RepositoryAnalysisRecord) error {
	if rc.dataset != nil {
		if err := rc.dataset.Append(rec); err != nil {
			return err
		}
	}
	if rc.recordDir != "" {
		if _, err := agg.WriteRecordFile(rc.recordDir, rec); err != nil {
			contract.LogWarn("Failed to write record file for "+rec.Repository, err)
		}
	}
	return nil
}

// Completed returns how many repositories have finished so far.
func (rc *RunContext) Completed() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.completed
}

// Summary returns the outcome counts so far.
func (rc *RunContext) Summary() schema.BatchSummary {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	s := rc.summary
	s.Duration = time.Since(rc.started)
	return s
}

// Telemetry returns the recorder, which may be nil.
func (rc *RunContext) Telemetry() *telemetry.Recorder {
	return rc.telemetry
}

func (rc *RunContext) finish() {
	if rc.progress != nil {
		rc.progress.Finish()
	}
}
