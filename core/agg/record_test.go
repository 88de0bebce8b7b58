package agg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/huangsam/repoquality/internal/fallback"
	"github.com/huangsam/repoquality/schema"
)

func TestAgeYears(t *testing.T) {
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0.0, AgeYears(time.Time{}, created))
	assert.Equal(t, 0.0, AgeYears(created, created.Add(-time.Hour)))
	assert.Equal(t, 1.0, AgeYears(created, created.AddDate(0, 0, 365).Add(12*time.Hour)))
	// 1461 days is exactly four Julian years
	assert.Equal(t, 4.0, AgeYears(created, created.AddDate(0, 0, 1461)))
}

func TestBuildRecord(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	desc := schema.RepositoryDescriptor{FullName: "acme/widgets", Stars: 10}
	meta := schema.ProcessMetadata{
		Stars:     42,
		Forks:     3,
		SizeKB:    2048,
		Releases:  5,
		CreatedAt: now.AddDate(-2, 0, 0),
	}
	summary := schema.MetricsSummary{
		{Metric: "cbo", Stats: map[schema.Statistic]float64{schema.StatCount: 2, schema.StatMean: 1.5}},
	}

	rec := BuildRecord(RecordInput{
		Descriptor: desc,
		Metadata:   meta,
		Counts:     fallback.LineCounts{Files: 4, LOC: 100, Comments: 12},
		Summary:    summary,
		Source:     schema.ExtractorSource,
		Strategy:   "run-in-source",
		Commit:     "abc123",
		Now:        now,
	})

	assert.Equal(t, "acme/widgets", rec.Repository)
	assert.Equal(t, 42, rec.Stars)
	assert.Equal(t, 5, rec.Releases)
	assert.Equal(t, 2.0, rec.AgeYears)
	assert.Equal(t, 100, rec.LOC)
	assert.Equal(t, 12, rec.Comments)
	assert.Equal(t, 4, rec.JavaFiles)
	assert.Equal(t, schema.ExtractorSource, rec.Source)
	assert.Equal(t, now, rec.AnalysisDate)
	assert.Equal(t, []string{"cbo_count", "cbo_mean"}, rec.MetricOrder)
	assert.Equal(t, 1.5, rec.Metrics["cbo_mean"])
}
