package core

import (
	"math"
	"sort"

	"github.com/huangsam/skymetrics/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// sortedCopy returns an ascending copy of xs, leaving the input untouched.
func sortedCopy(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}

// diffs returns the consecutive differences of xs.
func diffs(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = xs[i] - xs[i-1]
	}
	return out
}

// median returns the midpoint-average median of xs, or NaN for an empty
// input. The midpoint average matches the reference semantics; gonum's
// quantile interpolation modes do not.
func median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	s := sortedCopy(xs)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// percentile returns the pct-th percentile of xs using the empirical CDF
// with linear interpolation, or NaN for an empty input.
func percentile(xs []float64, pct float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Quantile(pct/100.0, stat.LinInterp, sortedCopy(xs), nil)
}

// robustRms estimates the spread of xs from the interquartile range,
// scaled to match a Gaussian standard deviation.
func robustRms(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := sortedCopy(xs)
	iqr := stat.Quantile(0.75, stat.LinInterp, s, nil) - stat.Quantile(0.25, stat.LinInterp, s, nil)
	return 0.741 * iqr
}

// applyReduce condenses xs to one scalar per the configured reduce mode.
// Empty inputs return NaN; callers map that to their bad value.
func applyReduce(mode schema.ReduceMode, xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	switch mode {
	case schema.ReduceMean:
		return stat.Mean(xs, nil)
	case schema.ReduceMin:
		return floats.Min(xs)
	case schema.ReduceMax:
		return floats.Max(xs)
	default:
		return median(xs)
	}
}
