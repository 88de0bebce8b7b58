// Package stats has the descriptive and correlation statistics used on metric data.
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or NaN for no values.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// Median returns the middle value, averaging the two middle values for even counts.
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// SampleStd returns the standard deviation with n-1 degrees of freedom.
// A single value has a deviation of 0.
func SampleStd(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// Min returns the smallest value, or NaN for no values.
func Min(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return slices.Min(xs)
}

// Max returns the largest value, or NaN for no values.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return slices.Max(xs)
}

// Quantile returns the q-th quantile using linear interpolation between closest ranks,
// the same definition spreadsheet and dataframe tools use by default.
func Quantile(xs []float64, q float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Description is the summary a dataframe describe() would print for one column.
type Description struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	P25   float64
	P50   float64
	P75   float64
	Max   float64
}

// Describe summarizes xs. NaN values must already be removed.
func Describe(xs []float64) Description {
	if len(xs) == 0 {
		nan := math.NaN()
		return Description{Mean: nan, Std: nan, Min: nan, P25: nan, P50: nan, P75: nan, Max: nan}
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	return Description{
		Count: len(xs),
		Mean:  Mean(xs),
		Std:   SampleStd(xs),
		Min:   sorted[0],
		P25:   quantileSorted(sorted, 0.25),
		P50:   quantileSorted(sorted, 0.5),
		P75:   quantileSorted(sorted, 0.75),
		Max:   sorted[len(sorted)-1],
	}
}

// IQRBounds returns [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
func IQRBounds(xs []float64) (lo float64, hi float64) {
	q1 := Quantile(xs, 0.25)
	q3 := Quantile(xs, 0.75)
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr
}

// DropNaN returns the values that are not NaN.
func DropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}
