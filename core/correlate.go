package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/huangsam/repoquality/core/agg"
	"github.com/huangsam/repoquality/internal/stats"
	"github.com/huangsam/repoquality/schema"
)

// MinPairedObservations is the smallest sample a correlation is computed on.
const MinPairedObservations = 4

// Interpretation thresholds.
const (
	strongThreshold   = 0.7
	moderateThreshold = 0.3
	significanceLevel = 0.05
)

// CorrelateOptions selects the variables of a correlation pass.
type CorrelateOptions struct {
	ProcessVariables []string
	QualityVariables []string
	OutlierColumns   []string
}

// DefaultCorrelateOptions uses the research variables and the default monitored columns.
func DefaultCorrelateOptions() CorrelateOptions {
	return CorrelateOptions{
		ProcessVariables: schema.ProcessVariables,
		QualityVariables: schema.QualityVariables,
		OutlierColumns:   schema.OutlierColumns,
	}
}

// CorrelateFile loads a dataset and correlates it.
func CorrelateFile(path string, opts CorrelateOptions) (*schema.CorrelationReport, error) {
	d, err := agg.ReadDataset(path)
	if err != nil {
		return nil, err
	}
	return Correlate(d, opts)
}

// Correlate trims outliers, describes the cleaned view and computes Pearson and Spearman
// coefficients for every process/quality pair with enough paired observations.
// The raw dataset is left untouched.
func Correlate(d *agg.Dataset, opts CorrelateOptions) (*schema.CorrelationReport, error) {
	if d == nil || d.Len() == 0 {
		return nil, agg.ErrEmptyDataset
	}
	process := presentColumns(d, opts.ProcessVariables)
	quality := presentColumns(d, opts.QualityVariables)
	if len(process) == 0 || len(quality) == 0 {
		return nil, errors.New("dataset lacks process or quality columns")
	}

	cleaned := TrimOutliers(d, opts.OutlierColumns)
	report := &schema.CorrelationReport{
		DatasetPath:  d.Path,
		TotalRows:    d.Len(),
		CleanedRows:  cleaned.Len(),
		Descriptions: Describe(cleaned, append(append([]string{}, process...), quality...)),
	}
	for _, pv := range process {
		x := cleaned.Float(pv)
		for _, qv := range quality {
			if res, ok := correlatePair(pv, qv, x, cleaned.Float(qv)); ok {
				report.Results = append(report.Results, res)
			}
		}
	}
	return report, nil
}

// correlatePair computes one pair on the rows where both values are present.
// Pairs below the minimum sample or with a constant variable are skipped.
func correlatePair(pv, qv string, x, y []float64) (schema.CorrelationResult, bool) {
	var px, py []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		px = append(px, x[i])
		py = append(py, y[i])
	}
	if len(px) < MinPairedObservations {
		return schema.CorrelationResult{}, false
	}
	r, p, err := stats.Pearson(px, py)
	if err != nil {
		return schema.CorrelationResult{}, false
	}
	rho, rhoP, err := stats.Spearman(px, py)
	if err != nil {
		return schema.CorrelationResult{}, false
	}
	strength, direction, significant := Interpret(r, p)
	return schema.CorrelationResult{
		ProcessVar:  pv,
		QualityVar:  qv,
		Pearson:     r,
		PearsonP:    p,
		Spearman:    rho,
		SpearmanP:   rhoP,
		N:           len(px),
		Strength:    strength,
		Direction:   direction,
		Significant: significant,
	}, true
}

// Interpret labels a coefficient by strength, direction and significance.
func Interpret(r, p float64) (strength string, direction string, significant bool) {
	switch a := math.Abs(r); {
	case a > strongThreshold:
		strength = "strong"
	case a > moderateThreshold:
		strength = "moderate"
	default:
		strength = "weak"
	}
	direction = "negative"
	if r > 0 {
		direction = "positive"
	}
	return strength, direction, p < significanceLevel
}

// TrimOutliers drops every row with a value outside [Q1-1.5*IQR, Q3+1.5*IQR] on any of
// the given columns. Bounds come from the untrimmed data; missing values never drop a row.
func TrimOutliers(d *agg.Dataset, columns []string) *agg.Dataset {
	keep := make([]bool, d.Len())
	for i := range keep {
		keep[i] = true
	}
	for _, col := range columns {
		values := d.Float(col)
		present := stats.DropNaN(values)
		if len(present) == 0 {
			continue
		}
		lo, hi := stats.IQRBounds(present)
		for i, v := range values {
			if !math.IsNaN(v) && (v < lo || v > hi) {
				keep[i] = false
			}
		}
	}
	return d.Filter(keep)
}

// Describe summarizes each present column holding at least one number.
func Describe(d *agg.Dataset, columns []string) []schema.ColumnDescription {
	var out []schema.ColumnDescription
	for _, col := range columns {
		if !d.Has(col) {
			continue
		}
		values := stats.DropNaN(d.Float(col))
		if len(values) == 0 {
			continue
		}
		desc := stats.Describe(values)
		out = append(out, schema.ColumnDescription{
			Column: col,
			Count:  desc.Count,
			Mean:   desc.Mean,
			Std:    desc.Std,
			Min:    desc.Min,
			P25:    desc.P25,
			P50:    desc.P50,
			P75:    desc.P75,
			Max:    desc.Max,
		})
	}
	return out
}

func presentColumns(d *agg.Dataset, names []string) []string {
	var out []string
	for _, n := range names {
		if d.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// DescribeFile loads a dataset and describes every numeric column of the raw rows.
func DescribeFile(path string) ([]schema.ColumnDescription, error) {
	d, err := agg.ReadDataset(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return Describe(d, d.NumericColumns()), nil
}
