package agg

import (
	"math"
	"time"

	"github.com/huangsam/repoquality/internal/fallback"
	"github.com/huangsam/repoquality/schema"
)

// RecordInput gathers everything known about one repository once its metrics table is in hand.
type RecordInput struct {
	Descriptor schema.RepositoryDescriptor
	Metadata   schema.ProcessMetadata
	Counts     fallback.LineCounts
	Summary    schema.MetricsSummary
	Source     schema.MetricsSource
	Strategy   string
	Commit     string
	Now        time.Time
}

// BuildRecord flattens the input into a dataset row.
func BuildRecord(in RecordInput) schema.RepositoryAnalysisRecord {
	rec := schema.RepositoryAnalysisRecord{
		Repository:   in.Descriptor.FullName,
		Stars:        in.Metadata.Stars,
		Forks:        in.Metadata.Forks,
		AgeYears:     AgeYears(in.Metadata.CreatedAt, in.Now),
		Releases:     in.Metadata.Releases,
		SizeKB:       in.Metadata.SizeKB,
		OpenIssues:   in.Metadata.OpenIssues,
		CreatedAt:    in.Metadata.CreatedAt,
		UpdatedAt:    in.Metadata.UpdatedAt,
		AnalysisDate: in.Now,
		LOC:          in.Counts.LOC,
		Comments:     in.Counts.Comments,
		JavaFiles:    in.Counts.Files,
		Source:       in.Source,
		Strategy:     in.Strategy,
		Commit:       in.Commit,
		Metrics:      make(map[string]float64, len(in.Summary)*len(schema.AllStatistics)),
	}
	for _, m := range in.Summary {
		for _, s := range schema.AllStatistics {
			v, ok := m.Stats[s]
			if !ok {
				continue
			}
			col := schema.MetricColumn(m.Metric, s)
			rec.Metrics[col] = v
			rec.MetricOrder = append(rec.MetricOrder, col)
		}
	}
	return rec
}

// AgeYears is the number of whole days between created and now divided by 365.25,
// rounded to two decimals. A zero creation time yields 0.
func AgeYears(created, now time.Time) float64 {
	if created.IsZero() || now.Before(created) {
		return 0
	}
	days := math.Floor(now.Sub(created).Hours() / 24)
	return math.Round(days/365.25*100) / 100
}
