package agg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/repoquality/schema"
)

func TestMetricSetResolve(t *testing.T) {
	table := &schema.MetricsTable{Columns: []string{"class", "CBO", "Weighted_Methods", "lcom*", "unrelated"}}
	resolved := DefaultMetrics.Resolve(table)
	require.Len(t, resolved, 3)
	assert.Equal(t, ResolvedColumn{Metric: "cbo", Index: 1}, resolved[0])
	assert.Equal(t, ResolvedColumn{Metric: "lcom*", Index: 3}, resolved[1])
	assert.Equal(t, ResolvedColumn{Metric: "wmc", Index: 2}, resolved[2])
}

func TestMetricSetColumns(t *testing.T) {
	set := MetricSet{{Name: "cbo", Aliases: []string{"cbo"}}}
	assert.Equal(t, []string{"cbo_count", "cbo_mean", "cbo_median", "cbo_std", "cbo_min", "cbo_max"}, set.Columns())
	assert.Len(t, DefaultMetrics.Columns(), 60)
}

func TestSummarize(t *testing.T) {
	table := &schema.MetricsTable{
		Columns: []string{"class", "cbo", "dit", "wmc"},
		Rows: [][]string{
			{"A", "1", "n/a", "4"},
			{"B", "3", "", "1"},
			{"C", "abc", "", "3"},
			{"D", "2"},
		},
	}

	summary := Summarize(table, DefaultMetrics)

	t.Run("drops non-numeric cells", func(t *testing.T) {
		cbo, ok := summary.Get("cbo")
		require.True(t, ok)
		assert.Equal(t, 3.0, cbo.Stats[schema.StatCount])
		assert.InDelta(t, 2.0, cbo.Stats[schema.StatMean], 1e-9)
		assert.InDelta(t, 2.0, cbo.Stats[schema.StatMedian], 1e-9)
		assert.InDelta(t, 1.0, cbo.Stats[schema.StatStd], 1e-9)
		assert.Equal(t, 1.0, cbo.Stats[schema.StatMin])
		assert.Equal(t, 3.0, cbo.Stats[schema.StatMax])
	})

	t.Run("omits entirely non-numeric metrics", func(t *testing.T) {
		_, ok := summary.Get("dit")
		assert.False(t, ok)
		_, ok = summary.Get("rfc")
		assert.False(t, ok)
	})

	t.Run("count never exceeds rows", func(t *testing.T) {
		for _, m := range summary {
			assert.LessOrEqual(t, m.Stats[schema.StatCount], float64(table.Len()))
		}
	})

	t.Run("emits the dataset statistics only", func(t *testing.T) {
		cbo, ok := summary.Get("cbo")
		require.True(t, ok)
		var got []schema.Statistic
		for s := range cbo.Stats {
			got = append(got, s)
		}
		assert.ElementsMatch(t, schema.AllStatistics, got)
	})

	t.Run("single value has zero std", func(t *testing.T) {
		one := Summarize(&schema.MetricsTable{Columns: []string{"rfc"}, Rows: [][]string{{"7"}}}, DefaultMetrics)
		rfc, ok := one.Get("rfc")
		require.True(t, ok)
		assert.Equal(t, 0.0, rfc.Stats[schema.StatStd])
	})

	t.Run("idempotent", func(t *testing.T) {
		assert.Equal(t, summary, Summarize(table, DefaultMetrics))
	})

	t.Run("nil table", func(t *testing.T) {
		assert.Empty(t, Summarize(nil, DefaultMetrics))
	})
}
