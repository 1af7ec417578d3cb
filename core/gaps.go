package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/huangsam/skymetrics/schema"
)

// gapMetric carries the state shared by the three gap metrics: time and
// night column bindings plus an enumerated reduce policy.
type gapMetric struct {
	baseMetric
	mjdCol   string
	nightCol string
	reduce   schema.ReduceMode
}

func newGapMetric(name string, cols schema.Columns, reduce schema.ReduceMode) (gapMetric, error) {
	if _, ok := schema.ValidReduceModes[reduce]; !ok {
		return gapMetric{}, fmt.Errorf("invalid reduce mode %q", reduce)
	}
	return gapMetric{
		baseMetric: baseMetric{
			name:   fmt.Sprintf("%s %s", titleReduce(reduce), name),
			cols:   []string{cols.MJD, cols.Night},
			badval: schema.DefaultBadValue,
		},
		mjdCol:   cols.MJD,
		nightCol: cols.Night,
		reduce:   reduce,
	}, nil
}

// titleReduce renders a reduce mode for display names ("Median", "Mean", ...).
func titleReduce(mode schema.ReduceMode) string {
	switch mode {
	case schema.ReduceMean:
		return "Mean"
	case schema.ReduceMin:
		return "Min"
	case schema.ReduceMax:
		return "Max"
	default:
		return "Median"
	}
}

// sortedByTime returns private copies of the time and night columns,
// co-sorted by time. The caller's slice is never reordered.
func (g *gapMetric) sortedByTime(slice *schema.VisitSlice) (times, nights []float64) {
	rawTimes := slice.Floats(g.mjdCol)
	rawNights := slice.Floats(g.nightCol)
	order := sortOrder(rawTimes)
	times = make([]float64, len(order))
	nights = make([]float64, len(order))
	for i, idx := range order {
		times[i] = rawTimes[idx]
		nights[i] = rawNights[idx]
	}
	return times, nights
}

// scalarOrBad maps an undefined reduction (NaN) to the bad value.
func (g *gapMetric) scalarOrBad(v float64) schema.MetricValue {
	if math.IsNaN(v) {
		return schema.Scalar(g.badval)
	}
	return schema.Scalar(v)
}

// IntraNightGapsMetric reduces the gaps between consecutive observations
// within the same night to one scalar, in hours.
type IntraNightGapsMetric struct {
	gapMetric
}

// NewIntraNightGapsMetric creates an intra-night gap metric with the given
// reduce policy.
func NewIntraNightGapsMetric(cols schema.Columns, reduce schema.ReduceMode) (*IntraNightGapsMetric, error) {
	g, err := newGapMetric("Intra-Night Gap", cols, reduce)
	if err != nil {
		return nil, err
	}
	return &IntraNightGapsMetric{gapMetric: g}, nil
}

// Run computes the reduced same-night gap for one slice, or the bad value
// when no same-night consecutive pair exists.
func (m *IntraNightGapsMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	times, nights := m.sortedByTime(slice)
	var gaps []float64
	for i := 1; i < len(times); i++ {
		if nights[i] == nights[i-1] {
			gaps = append(gaps, (times[i]-times[i-1])*24)
		}
	}
	if len(gaps) == 0 {
		return schema.Scalar(m.badval)
	}
	return m.scalarOrBad(applyReduce(m.reduce, gaps))
}

// InterNightGapsMetric reduces the gaps between the last observation of one
// night and the first observation of the next observed night to one scalar,
// in days.
type InterNightGapsMetric struct {
	gapMetric
}

// NewInterNightGapsMetric creates an inter-night gap metric with the given
// reduce policy.
func NewInterNightGapsMetric(cols schema.Columns, reduce schema.ReduceMode) (*InterNightGapsMetric, error) {
	g, err := newGapMetric("Inter-Night Gap", cols, reduce)
	if err != nil {
		return nil, err
	}
	return &InterNightGapsMetric{gapMetric: g}, nil
}

// Run computes the reduced night-to-night gap for one slice, or the bad
// value when fewer than two distinct nights were observed.
func (m *InterNightGapsMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	times, nights := m.sortedByTime(slice)
	unights := uniqueSorted(nights)
	if len(unights) < 2 {
		return schema.Scalar(m.badval)
	}
	// Nights are monotonic once visits are time-ordered, so binary search
	// locates each night's first and last observation.
	gaps := make([]float64, 0, len(unights)-1)
	for i := 1; i < len(unights); i++ {
		prev := unights[i-1]
		last := sort.Search(len(nights), func(j int) bool { return nights[j] > prev }) - 1
		first := sort.SearchFloat64s(nights, unights[i])
		gaps = append(gaps, times[first]-times[last])
	}
	return m.scalarOrBad(applyReduce(m.reduce, gaps))
}

// AveGapMetric reduces all consecutive observation gaps, regardless of night
// boundaries, to one scalar in hours.
type AveGapMetric struct {
	gapMetric
}

// NewAveGapMetric creates an average-gap metric with the given reduce policy.
func NewAveGapMetric(cols schema.Columns, reduce schema.ReduceMode) (*AveGapMetric, error) {
	g, err := newGapMetric("Gap", cols, reduce)
	if err != nil {
		return nil, err
	}
	g.cols = []string{g.mjdCol} // night column is not needed here
	return &AveGapMetric{gapMetric: g}, nil
}

// Run computes the reduced gap for one slice, or the bad value when fewer
// than two visits exist.
func (m *AveGapMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	gaps := diffs(sortedCopy(slice.Floats(m.mjdCol)))
	if len(gaps) == 0 {
		return schema.Scalar(m.badval)
	}
	for i := range gaps {
		gaps[i] *= 24
	}
	return m.scalarOrBad(applyReduce(m.reduce, gaps))
}

// uniqueSorted returns the distinct values of xs in ascending order.
func uniqueSorted(xs []float64) []float64 {
	if len(xs) == 0 {
		return nil
	}
	s := sortedCopy(xs)
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
