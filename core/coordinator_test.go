package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/repoquality/internal/iocache"
	"github.com/huangsam/repoquality/schema"
)

func descriptors(names ...string) []schema.RepositoryDescriptor {
	out := make([]schema.RepositoryDescriptor, len(names))
	for i, n := range names {
		out[i] = schema.RepositoryDescriptor{FullName: n}
	}
	return out
}

func recordFor(name string, source schema.MetricsSource) *schema.RepositoryAnalysisRecord {
	return &schema.RepositoryAnalysisRecord{
		Repository:  name,
		Source:      source,
		Metrics:     map[string]float64{"cbo_mean": 1.5},
		MetricOrder: []string{"cbo_mean"},
	}
}

func TestCoordinatorIsolatesFailures(t *testing.T) {
	analyze := func(_ context.Context, d schema.RepositoryDescriptor) (*schema.RepositoryAnalysisRecord, error) {
		switch d.FullName {
		case "o/boom":
			panic("extractor exploded")
		case "o/broken":
			return nil, errors.New("clone failed")
		case "o/empty":
			return nil, fmt.Errorf("scan: %w", ErrNoSourceFiles)
		case "o/approx":
			return recordFor(d.FullName, schema.FallbackSource), nil
		}
		return recordFor(d.FullName, schema.ExtractorSource), nil
	}

	rc := NewRunContext(5, nil)
	c := &Coordinator{Analyze: analyze, Workers: 2}
	results := c.Run(context.Background(), descriptors("o/ok", "o/boom", "o/broken", "o/empty", "o/approx"), rc)
	require.Len(t, results, 5)

	outcomes := map[string]schema.Outcome{}
	for _, r := range results {
		outcomes[r.FullName] = r.Outcome
		if r.FullName == "o/boom" {
			assert.Contains(t, r.Error, "panic while analyzing o/boom")
			assert.Nil(t, r.Record)
		}
	}
	assert.Equal(t, map[string]schema.Outcome{
		"o/ok":     schema.SucceededOutcome,
		"o/boom":   schema.FailedOutcome,
		"o/broken": schema.FailedOutcome,
		"o/empty":  schema.SkippedOutcome,
		"o/approx": schema.FallbackOutcome,
	}, outcomes)
	assert.Len(t, Records(results), 2)
	assert.Equal(t, 5, rc.Completed())
}

func TestCoordinatorNilRecordIsFailure(t *testing.T) {
	analyze := func(context.Context, schema.RepositoryDescriptor) (*schema.RepositoryAnalysisRecord, error) {
		return nil, nil
	}
	results := (&Coordinator{Analyze: analyze, Workers: 1}).Run(context.Background(), descriptors("o/a"), NewRunContext(1, nil))
	require.Len(t, results, 1)
	assert.Equal(t, schema.FailedOutcome, results[0].Outcome)
}

func TestCoordinatorEmptyInput(t *testing.T) {
	results := (&Coordinator{Workers: 4}).Run(context.Background(), nil, NewRunContext(0, nil))
	assert.Empty(t, results)
}

func TestCoordinatorBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	release := make(chan struct{})
	analyze := func(_ context.Context, d schema.RepositoryDescriptor) (*schema.RepositoryAnalysisRecord, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		running.Add(-1)
		return recordFor(d.FullName, schema.ExtractorSource), nil
	}
	go func() {
		for range 8 {
			release <- struct{}{}
		}
	}()
	results := (&Coordinator{Analyze: analyze, Workers: 3}).Run(context.Background(),
		descriptors("a/1", "a/2", "a/3", "a/4", "a/5", "a/6", "a/7", "a/8"), NewRunContext(8, nil))
	assert.Len(t, results, 8)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestCoordinatorResumeHit(t *testing.T) {
	cached, err := json.Marshal(recordFor("o/cached", schema.ExtractorSource))
	require.NoError(t, err)

	store := &iocache.MockCacheStore{}
	store.On("Get", "o/cached").Return(cached, currentCacheVersion, int64(100), nil)
	store.On("Get", "o/fresh").Return(nil, 0, int64(0), errors.New("not found"))
	store.On("Set", "o/fresh", mock.Anything, currentCacheVersion, mock.Anything).Return(nil).Once()

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetResultStore").Return(store)
	mgr.On("GetAnalysisStore").Return(nil)

	var calls atomic.Int32
	analyze := func(_ context.Context, d schema.RepositoryDescriptor) (*schema.RepositoryAnalysisRecord, error) {
		calls.Add(1)
		return recordFor(d.FullName, schema.ExtractorSource), nil
	}

	ctx := contextWithCacheManager(context.Background(), mgr)
	rc := NewRunContext(2, nil)
	results := (&Coordinator{Analyze: analyze, Workers: 2, Resume: true}).Run(ctx, descriptors("o/cached", "o/fresh"), rc)
	require.Len(t, results, 2)

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		if r.FullName == "o/cached" {
			assert.Equal(t, schema.ResumedOutcome, r.Outcome)
			require.NotNil(t, r.Record)
			assert.InDelta(t, 1.5, r.Record.Metrics["cbo_mean"], 1e-9)
		} else {
			assert.Equal(t, schema.SucceededOutcome, r.Outcome)
		}
	}
	assert.Equal(t, 1, rc.Summary().Resumed)
	store.AssertExpectations(t)
}

func TestCoordinatorRecordsUnderAnalysisRun(t *testing.T) {
	analysis := &iocache.MockAnalysisStore{}
	analysis.On("RecordRepository", int64(9), mock.MatchedBy(func(r schema.RepositoryAnalysisRecord) bool {
		return r.Repository == "o/a"
	})).Return(nil).Once()

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetResultStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(analysis)

	analyze := func(_ context.Context, d schema.RepositoryDescriptor) (*schema.RepositoryAnalysisRecord, error) {
		return recordFor(d.FullName, schema.ExtractorSource), nil
	}
	ctx := withAnalysisID(contextWithCacheManager(context.Background(), mgr), 9)
	(&Coordinator{Analyze: analyze, Workers: 1}).Run(ctx, descriptors("o/a"), NewRunContext(1, nil))
	analysis.AssertExpectations(t)
}
