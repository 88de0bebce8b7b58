package stats

import (
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrUndefined is returned when a coefficient cannot be computed:
// fewer than three pairs, mismatched lengths, or a constant input.
var ErrUndefined = errors.New("correlation undefined")

// Pearson returns the Pearson coefficient and its two-sided p-value.
func Pearson(x, y []float64) (r float64, p float64, err error) {
	n := len(x)
	if n != len(y) || n < 3 {
		return 0, 0, ErrUndefined
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0, 0, ErrUndefined
	}
	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, 0, ErrUndefined
	}
	r = math.Max(-1, math.Min(1, r))
	return r, correlationPValue(r, n), nil
}

// Spearman returns the Spearman rank coefficient and its two-sided p-value.
// Ties receive the average of the ranks they span.
func Spearman(x, y []float64) (rho float64, p float64, err error) {
	if len(x) != len(y) {
		return 0, 0, ErrUndefined
	}
	return Pearson(Ranks(x), Ranks(y))
}

// Ranks returns 1-based ranks with ties averaged.
func Ranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case xs[a] < xs[b]:
			return -1
		case xs[a] > xs[b]:
			return 1
		default:
			return 0
		}
	})
	ranks := make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// correlationPValue tests r against zero with a t statistic on n-2 degrees of freedom.
func correlationPValue(r float64, n int) float64 {
	df := float64(n - 2)
	if math.Abs(r) >= 1 {
		return 0
	}
	t := r * math.Sqrt(df/(1-r*r))
	return StudentTTwoSided(t, df)
}

// StudentTTwoSided returns P(|T| >= |t|) for Student's t with df degrees of freedom.
func StudentTTwoSided(t, df float64) float64 {
	if math.IsInf(t, 0) {
		return 0
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.CDF(-math.Abs(t))
}
