// Package agg turns metrics tables into per-repository records and maintains the dataset file.
package agg

import (
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/repoquality/internal/stats"
	"github.com/huangsam/repoquality/schema"
)

// Metric is a canonical metric name with the column names that may carry it.
type Metric struct {
	Name    string
	Aliases []string
}

// MetricSet is an ordered list of metrics of interest.
type MetricSet []Metric

// DefaultMetrics are the object-oriented metrics summarized for every repository.
var DefaultMetrics = MetricSet{
	{Name: "cbo", Aliases: []string{"cbo", "coupling"}},
	{Name: "dit", Aliases: []string{"dit", "depth_of_inheritance"}},
	{Name: "lcom", Aliases: []string{"lcom"}},
	{Name: "lcom*", Aliases: []string{"lcom*", "lcom_normalized"}},
	{Name: "wmc", Aliases: []string{"wmc", "weighted_methods"}},
	{Name: "loc", Aliases: []string{"loc", "lines_of_code"}},
	{Name: "noc", Aliases: []string{"noc", "children"}},
	{Name: "rfc", Aliases: []string{"rfc", "response_for_class"}},
	{Name: "fanin", Aliases: []string{"fanin", "fan_in"}},
	{Name: "fanout", Aliases: []string{"fanout", "fan_out"}},
}

// ResolvedColumn binds a metric to a table column index.
type ResolvedColumn struct {
	Metric string
	Index  int
}

// Resolve matches every metric to the first alias present in the table, case-insensitively.
// Metrics without a matching column are left out.
func (ms MetricSet) Resolve(table *schema.MetricsTable) []ResolvedColumn {
	var out []ResolvedColumn
	for _, m := range ms {
		for _, alias := range m.Aliases {
			if idx := table.ColumnIndex(alias); idx >= 0 {
				out = append(out, ResolvedColumn{Metric: m.Name, Index: idx})
				break
			}
		}
	}
	return out
}

// Columns returns every {metric}_{stat} column the set can produce, in record order.
func (ms MetricSet) Columns() []string {
	cols := make([]string, 0, len(ms)*len(schema.AllStatistics))
	for _, m := range ms {
		for _, s := range schema.AllStatistics {
			cols = append(cols, schema.MetricColumn(m.Name, s))
		}
	}
	return cols
}

// Summarize computes the statistics of every resolvable metric.
// Non-numeric cells are dropped; a metric with no numeric cells is omitted.
func Summarize(table *schema.MetricsTable, metrics MetricSet) schema.MetricsSummary {
	var summary schema.MetricsSummary
	if table == nil {
		return summary
	}
	for _, col := range metrics.Resolve(table) {
		values := numericColumn(table, col.Index)
		if len(values) == 0 {
			continue
		}
		summary = append(summary, schema.MetricSummary{
			Metric: col.Metric,
			Stats: map[schema.Statistic]float64{
				schema.StatCount:  float64(len(values)),
				schema.StatMean:   stats.Mean(values),
				schema.StatMedian: stats.Median(values),
				schema.StatStd:    stats.SampleStd(values),
				schema.StatMin:    stats.Min(values),
				schema.StatMax:    stats.Max(values),
			},
		})
	}
	return summary
}

// numericColumn parses the column, skipping empty, non-numeric and non-finite cells.
func numericColumn(table *schema.MetricsTable, idx int) []float64 {
	values := make([]float64, 0, table.Len())
	for i := range table.Rows {
		cell := strings.TrimSpace(table.Value(i, idx))
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values = append(values, v)
	}
	return values
}
