package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/huangsam/skymetrics/schema"
)

// UniformityMetric measures how uniformly observations are spaced in time
// over the survey, based on how a KS test works: the empirical cumulative
// distribution of observation dates is compared against a perfectly uniform
// one. A value of 0 means perfectly uniform; 1 means maximally non-uniform.
type UniformityMetric struct {
	baseMetric
	mjdCol       string
	surveyLength float64 // years
}

// NewUniformityMetric creates a uniformity metric over the given survey
// duration in years.
func NewUniformityMetric(cols schema.Columns, surveyLengthYears float64) (*UniformityMetric, error) {
	if surveyLengthYears <= 0 {
		return nil, fmt.Errorf("survey length must be positive, got %g", surveyLengthYears)
	}
	return &UniformityMetric{
		baseMetric:   baseMetric{name: "Uniformity", cols: []string{cols.MJD}, badval: schema.DefaultBadValue},
		mjdCol:       cols.MJD,
		surveyLength: surveyLengthYears,
	}, nil
}

// Run computes the uniformity statistic for one slice.
func (m *UniformityMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	times := slice.Floats(m.mjdCol)
	if len(times) == 0 {
		return schema.Scalar(m.badval)
	}
	// A single observation is non-uniform by definition, not a bad value.
	if len(times) == 1 {
		return schema.Scalar(1)
	}
	dates := sortedCopy(times)
	t0 := dates[0]
	scale := m.surveyLength * schema.DaysPerYear
	for i := range dates {
		dates[i] = (dates[i] - t0) / scale
	}
	return schema.Scalar(ksDeviation(dates))
}

// ksDeviation computes the maximum deviation between the empirical CDF of
// the sorted unit-interval values and the values themselves. The offset by
// values[1] is carried over from the reference statistic and is preserved
// exactly; callers guarantee len(values) >= 2.
func ksDeviation(values []float64) float64 {
	n := float64(len(values))
	offset := values[1]
	dmax := 0.0
	for i, v := range values {
		d := math.Abs(float64(i+1)/n - v - offset)
		if d > dmax {
			dmax = d
		}
	}
	return dmax
}

// RapidRevisitMetric measures the uniformity of time between consecutive
// visits on short timescales, using the same KS-style statistic as
// UniformityMetric restricted to gaps within [dTmin, dTmax].
type RapidRevisitMetric struct {
	baseMetric
	mjdCol     string
	minNvisits int
	dTmin      float64 // days
	dTmax      float64 // days
}

// NewRapidRevisitMetric creates a rapid-revisit metric. Gap bounds are in
// days. A minNvisits below 2 is raised to 2, since zero gaps cannot be
// scored and a single gap is non-uniform by definition.
func NewRapidRevisitMetric(cols schema.Columns, minNvisits int, dTmin, dTmax float64) (*RapidRevisitMetric, error) {
	if dTmax <= dTmin {
		return nil, fmt.Errorf("dTmax (%g) must exceed dTmin (%g)", dTmax, dTmin)
	}
	if minNvisits < 2 {
		minNvisits = 2
	}
	return &RapidRevisitMetric{
		baseMetric: baseMetric{name: "RapidRevisit", cols: []string{cols.MJD}, badval: schema.DefaultBadValue},
		mjdCol:     cols.MJD,
		minNvisits: minNvisits,
		dTmin:      dTmin,
		dTmax:      dTmax,
	}, nil
}

// Run computes the gap uniformity statistic for one slice, or the bad value
// when fewer than minNvisits gaps fall within [dTmin, dTmax].
func (m *RapidRevisitMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	dtimes := diffs(sortedCopy(slice.Floats(m.mjdCol)))
	var good []float64
	for _, dt := range dtimes {
		if dt >= m.dTmin && dt <= m.dTmax {
			good = append(good, dt)
		}
	}
	if len(good) < m.minNvisits {
		return schema.Scalar(m.badval)
	}
	sort.Float64s(good)
	gmin := good[0]
	scale := m.dTmax - m.dTmin
	for i := range good {
		good[i] = (good[i] - gmin) / scale
	}
	return schema.Scalar(ksDeviation(good))
}

// NRevisitsMetric counts consecutive visits separated by at most dT,
// optionally normalized by the total number of visits.
type NRevisitsMetric struct {
	baseMetric
	mjdCol string
	dT     float64 // days
	normed bool
}

// NewNRevisitsMetric creates a revisit-count metric with the threshold given
// in minutes.
func NewNRevisitsMetric(cols schema.Columns, dTMinutes float64, normed bool) *NRevisitsMetric {
	name := fmt.Sprintf("NRevisits<%.1fmin", dTMinutes)
	if normed {
		name = fmt.Sprintf("FracRevisits<%.1fmin", dTMinutes)
	}
	return &NRevisitsMetric{
		baseMetric: baseMetric{name: name, cols: []string{cols.MJD}, badval: schema.DefaultBadValue},
		mjdCol:     cols.MJD,
		dT:         dTMinutes / 60.0 / 24.0,
		normed:     normed,
	}
}

// Run counts the in-threshold gaps for one slice.
func (m *NRevisitsMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	times := slice.Floats(m.mjdCol)
	if len(times) == 0 {
		return schema.Scalar(m.badval)
	}
	count := 0
	for _, dt := range diffs(sortedCopy(times)) {
		if dt <= m.dT {
			count++
		}
	}
	if m.normed {
		return schema.Scalar(float64(count) / float64(len(times)))
	}
	return schema.Scalar(float64(count))
}

// TgapsMetric histograms the time gaps between visits into the configured
// bins. With allGaps set, all pairwise gaps are counted instead of only
// consecutive ones.
type TgapsMetric struct {
	baseMetric
	mjdCol  string
	bins    []float64 // ascending bin edges, days
	allGaps bool
}

// NewTgapsMetric creates a time-gap histogram metric. Bin edges are in days
// and must be ascending with at least two edges.
func NewTgapsMetric(cols schema.Columns, bins []float64, allGaps bool) (*TgapsMetric, error) {
	if len(bins) < 2 {
		return nil, fmt.Errorf("need at least two bin edges, got %d", len(bins))
	}
	for i := 1; i < len(bins); i++ {
		if bins[i] <= bins[i-1] {
			return nil, fmt.Errorf("bin edges must be ascending at index %d", i)
		}
	}
	edges := make([]float64, len(bins))
	copy(edges, bins)
	return &TgapsMetric{
		baseMetric: baseMetric{name: "Tgaps", cols: []string{cols.MJD}, badval: schema.DefaultBadValue},
		mjdCol:     cols.MJD,
		bins:       edges,
		allGaps:    allGaps,
	}, nil
}

// Run builds the gap histogram for one slice.
func (m *TgapsMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	times := sortedCopy(slice.Floats(m.mjdCol))
	var gaps []float64
	if m.allGaps {
		for i := range times {
			for j := i + 1; j < len(times); j++ {
				gaps = append(gaps, times[j]-times[i])
			}
		}
	} else {
		gaps = diffs(times)
	}
	counts := make([]float64, len(m.bins)-1)
	for _, g := range gaps {
		if g < m.bins[0] || g > m.bins[len(m.bins)-1] {
			continue
		}
		// Last edge less than or equal to g; the final edge is inclusive.
		idx := sort.Search(len(m.bins), func(i int) bool { return m.bins[i] > g }) - 1
		if idx == len(counts) {
			idx--
		}
		counts[idx]++
	}
	return schema.Histogram(counts, m.bins)
}

// TemplateExistsMetric calculates the fraction of visits that have an
// earlier visit with equal or better seeing, a proxy for the availability
// of a usable difference-imaging template.
type TemplateExistsMetric struct {
	baseMetric
	seeingCol string
	mjdCol    string
}

// NewTemplateExistsMetric creates a template-availability metric.
func NewTemplateExistsMetric(cols schema.Columns) *TemplateExistsMetric {
	return &TemplateExistsMetric{
		baseMetric: baseMetric{name: "TemplateExists", cols: []string{cols.Seeing, cols.MJD}, badval: schema.DefaultBadValue},
		seeingCol:  cols.Seeing,
		mjdCol:     cols.MJD,
	}
}

// Run computes the template fraction for one slice.
func (m *TemplateExistsMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	times := slice.Floats(m.mjdCol)
	seeing := slice.Floats(m.seeingCol)
	if len(times) == 0 {
		return schema.Scalar(m.badval)
	}
	order := sortOrder(times)
	good := 0
	bestSeeing := math.Inf(1)
	for i, idx := range order {
		// The first visit never has a template.
		if i > 0 && seeing[idx] >= bestSeeing {
			good++
		}
		if seeing[idx] < bestSeeing {
			bestSeeing = seeing[idx]
		}
	}
	return schema.Scalar(float64(good) / float64(len(times)))
}

// sortOrder returns the index permutation that orders keys ascending,
// leaving the input untouched.
func sortOrder(keys []float64) []int {
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]] < keys[order[b]]
	})
	return order
}
