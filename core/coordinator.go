package core

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/schema"
)

// ErrNoResults is returned when a batch finishes without a single record.
var ErrNoResults = errors.New("no repository produced a record")

// AnalyzeFunc produces the record for one repository.
type AnalyzeFunc func(ctx context.Context, desc schema.RepositoryDescriptor) (*schema.RepositoryAnalysisRecord, error)

// Coordinator fans repositories out to a fixed number of workers.
type Coordinator struct {
	Analyze AnalyzeFunc
	Workers int
	Resume  bool // reuse cached records instead of analyzing again
}

// Run analyzes every descriptor and returns the results in completion order.
// A failing or panicking repository yields a failed result and never stops the others.
// The result store and analysis store are taken from ctx when present.
func (c *Coordinator) Run(ctx context.Context, descs []schema.RepositoryDescriptor, rc *RunContext) []schema.RepositoryResult {
	defer rc.finish()
	workers := max(1, min(c.Workers, len(descs)))

	descCh := make(chan schema.RepositoryDescriptor, len(descs))
	resultCh := make(chan schema.RepositoryResult, len(descs))
	var wg sync.WaitGroup

	// Start worker pool
	for range workers {
		wg.Go(func() {
			for d := range descCh {
				resultCh <- c.runOne(ctx, d, rc)
			}
		})
	}

	for _, d := range descs {
		descCh <- d
	}
	close(descCh)

	wg.Wait()
	close(resultCh)

	results := make([]schema.RepositoryResult, 0, len(descs))
	for r := range resultCh {
		results = append(results, r)
	}
	return results
}

func (c *Coordinator) runOne(ctx context.Context, desc schema.RepositoryDescriptor, rc *RunContext) schema.RepositoryResult {
	start := time.Now()
	mgr := cacheManagerFromContext(ctx)

	if c.Resume && mgr != nil {
		if rec := checkResumeHit(mgr.GetResultStore(), desc.FullName); rec != nil {
			return rc.Complete(schema.RepositoryResult{
				FullName: desc.FullName,
				Outcome:  schema.ResumedOutcome,
				Record:   rec,
			})
		}
	}

	rec, err := c.safeAnalyze(ctx, desc)
	result := schema.RepositoryResult{FullName: desc.FullName, Record: rec, Duration: time.Since(start)}
	switch {
	case errors.Is(err, ErrNoSourceFiles):
		result.Outcome = schema.SkippedOutcome
	case err != nil:
		result.Outcome = schema.FailedOutcome
	case rec.Source == schema.FallbackSource:
		result.Outcome = schema.FallbackOutcome
	default:
		result.Outcome = schema.SucceededOutcome
	}
	if err != nil {
		result.Err = err
		result.Error = err.Error()
		result.Record = nil
	}

	result = rc.Complete(result)
	if result.Record != nil && mgr != nil {
		storeResult(mgr.GetResultStore(), *result.Record)
		recordRepository(ctx, mgr.GetAnalysisStore(), *result.Record)
	}
	return result
}

// safeAnalyze turns a panic inside one repository into an error for that repository only.
func (c *Coordinator) safeAnalyze(ctx context.Context, desc schema.RepositoryDescriptor) (rec *schema.RepositoryAnalysisRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("panic while analyzing %s: %v\n%s", desc.FullName, r, debug.Stack())
		}
	}()
	rec, err = c.Analyze(ctx, desc)
	if err == nil && rec == nil {
		err = fmt.Errorf("no record produced for %s", desc.FullName)
	}
	return rec, err
}

// recordRepository stores the record under the current analysis run, if one is being tracked.
func recordRepository(ctx context.Context, store contract.AnalysisStore, rec schema.RepositoryAnalysisRecord) {
	if store == nil {
		return
	}
	id, ok := getAnalysisID(ctx)
	if !ok || id <= 0 {
		return
	}
	if err := store.RecordRepository(id, rec); err != nil {
		contract.LogWarn("Analysis tracking failed for "+rec.Repository, err)
	}
}

// Records returns the records of the successful results.
func Records(results []schema.RepositoryResult) []schema.RepositoryAnalysisRecord {
	var out []schema.RepositoryAnalysisRecord
	for _, r := range results {
		if r.Record != nil {
			out = append(out, *r.Record)
		}
	}
	return out
}
