package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/repoquality/core/agg"
)

func parseDataset(t *testing.T, csv string) *agg.Dataset {
	t.Helper()
	d, err := agg.ParseDataset(strings.NewReader(csv))
	require.NoError(t, err)
	return d
}

func TestTrimOutliersRemovesOnlyExtremeRows(t *testing.T) {
	d := parseDataset(t, "repository,stars,cbo_mean\na,1,2\nb,2,2\nc,3,2\nd,4,2\ne,5,2\nf,100,2\n")

	cleaned := TrimOutliers(d, []string{"stars"})
	require.Equal(t, 5, cleaned.Len())
	for _, row := range cleaned.Rows {
		assert.NotEqual(t, "f", row[0])
	}
	assert.Equal(t, 6, d.Len(), "input dataset is left untouched")
}

func TestTrimOutliersKeepsMissingValues(t *testing.T) {
	d := parseDataset(t, "repository,stars,dit_mean\na,1,1\nb,2,\nc,3,1\nd,4,1\ne,5,50\n")
	cleaned := TrimOutliers(d, []string{"stars", "dit_mean", "absent"})
	require.Equal(t, 4, cleaned.Len())
	for _, row := range cleaned.Rows {
		assert.NotEqual(t, "e", row[0])
	}
}

func TestCorrelateSkipsSmallSamples(t *testing.T) {
	d := parseDataset(t, `repository,stars,cbo_mean,dit_mean
a,10,1,1.0
b,20,2,
c,30,3,
d,40,5,1.5
e,50,4,2.0
`)
	rep, err := Correlate(d, CorrelateOptions{
		ProcessVariables: []string{"stars", "releases"},
		QualityVariables: []string{"cbo_mean", "dit_mean"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, rep.TotalRows)
	assert.Equal(t, 5, rep.CleanedRows)

	// dit_mean has only three paired values and releases is absent.
	require.Len(t, rep.Results, 1)
	r := rep.Results[0]
	assert.Equal(t, "stars", r.ProcessVar)
	assert.Equal(t, "cbo_mean", r.QualityVar)
	assert.Equal(t, 5, r.N)
	assert.InDelta(t, 0.9, r.Pearson, 1e-9)
	assert.InDelta(t, 0.9, r.Spearman, 1e-9)
	assert.Equal(t, "strong", r.Strength)
	assert.Equal(t, "positive", r.Direction)
	assert.True(t, r.Significant)

	require.Len(t, rep.Descriptions, 3)
	assert.Equal(t, "stars", rep.Descriptions[0].Column)
	assert.Equal(t, 3, rep.Descriptions[2].Count)
}

func TestCorrelateSkipsConstantColumns(t *testing.T) {
	d := parseDataset(t, "stars,cbo_mean\n1,3\n2,3\n3,3\n4,3\n")
	rep, err := Correlate(d, CorrelateOptions{ProcessVariables: []string{"stars"}, QualityVariables: []string{"cbo_mean"}})
	require.NoError(t, err)
	assert.Empty(t, rep.Results)
}

func TestCorrelateRequiresColumns(t *testing.T) {
	d := parseDataset(t, "repository,forks\na,1\nb,2\n")
	_, err := Correlate(d, DefaultCorrelateOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lacks process or quality columns")

	_, err = Correlate(nil, DefaultCorrelateOptions())
	assert.ErrorIs(t, err, agg.ErrEmptyDataset)
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		r, p        float64
		strength    string
		direction   string
		significant bool
	}{
		{0.85, 0.001, "strong", "positive", true},
		{-0.75, 0.2, "strong", "negative", false},
		{0.7, 0.01, "moderate", "positive", true},
		{-0.31, 0.049, "moderate", "negative", true},
		{0.3, 0.05, "weak", "positive", false},
		{0, 1, "weak", "negative", false},
	}
	for _, tt := range tests {
		strength, direction, significant := Interpret(tt.r, tt.p)
		assert.Equal(t, tt.strength, strength, "r=%v", tt.r)
		assert.Equal(t, tt.direction, direction, "r=%v", tt.r)
		assert.Equal(t, tt.significant, significant, "p=%v", tt.p)
	}
}

func TestDescribeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("repository,stars,note\na,1,x\nb,3,y\n"), 0o644))

	descs, err := DescribeFile(path)
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "stars", descs[0].Column)
	assert.InDelta(t, 2.0, descs[0].Mean, 1e-9)
	assert.InDelta(t, 1.5, descs[0].P25, 1e-9)

	_, err = DescribeFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
