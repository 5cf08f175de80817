package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// dropNaN returns the values that are numbers.
func dropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// Mean is the arithmetic mean ignoring NaN; NaN when nothing remains.
func Mean(xs []float64) float64 {
	vals := dropNaN(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, nil)
}

// Median ignores NaN and averages the two middle values of an even count.
func Median(xs []float64) float64 {
	vals := dropNaN(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}

// Pearson computes the correlation of the pairs where both values are
// numbers. Fewer than two pairs or a constant side yields NaN.
func Pearson(x, y []float64) float64 {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 || stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// Range returns the minimum and maximum ignoring NaN.
func Range(xs []float64) (lo, hi float64) {
	vals := dropNaN(xs)
	if len(vals) == 0 {
		return math.NaN(), math.NaN()
	}
	lo, hi = vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Rank assigns descending ranks starting at 1. Ties share the average of
// the positions they span; NaN values keep a NaN rank.
func Rank(xs []float64) []float64 {
	idx := make([]int, 0, len(xs))
	for i, x := range xs {
		if !math.IsNaN(x) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] > xs[idx[b]] })

	ranks := make([]float64, len(xs))
	for i := range ranks {
		ranks[i] = math.NaN()
	}
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && xs[idx[end]] == xs[idx[start]] {
			end++
		}
		avg := float64(start+1+end) / 2
		for _, i := range idx[start:end] {
			ranks[i] = avg
		}
		start = end
	}
	return ranks
}

// Round rounds half to even at the given number of decimals.
func Round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*p) / p
}
