package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/huangsam/skymetrics/schema"
)

// SupernovaMetric measures how many visit sequences meet a time and filter
// distribution sufficient to detect a supernova at the configured redshift.
//
// Observation times are shifted to the supernova rest frame, and only visits
// in filters whose rest-frame effective wavelength falls between 300 and
// 900 nm participate. A grid of candidate peak epochs is scanned at the
// configured resolution; each candidate's window must satisfy the pre-peak,
// post-peak, filter-coverage, depth and near-peak gap requirements to count
// as a qualifying sequence.
//
// The result is a SequenceAggregate consumed by the reducers returned from
// Reducers: median near-peak max gap, sequence count, and median
// observation count per sequence.
type SupernovaMetric struct {
	baseMetric
	mjdCol    string
	filterCol string
	m5Col     string
	cfg       schema.SupernovaConfig
	accepted  map[string]bool // filters kept after the rest-frame wavelength cut
}

// NewSupernovaMetric creates a supernova detection metric. Configuration is
// validated at construction; an invalid window or resolution fails fast.
func NewSupernovaMetric(cols schema.Columns, cfg schema.SupernovaConfig) (*SupernovaMetric, error) {
	if cfg.Resolution <= 0 {
		return nil, fmt.Errorf("resolution must be positive, got %g", cfg.Resolution)
	}
	if cfg.TMax <= cfg.TMin {
		return nil, fmt.Errorf("TMax (%g) must exceed TMin (%g)", cfg.TMax, cfg.TMin)
	}
	if cfg.Redshift < 0 {
		return nil, fmt.Errorf("redshift must be non-negative, got %g", cfg.Redshift)
	}
	accepted := make(map[string]bool, len(schema.FilterNames))
	for _, f := range schema.FilterNames {
		restWave := schema.FilterWavelengths[f] / (1 + cfg.Redshift)
		if restWave > schema.RestWavelengthMin && restWave < schema.RestWavelengthMax {
			accepted[f] = true
		}
	}
	return &SupernovaMetric{
		baseMetric: baseMetric{
			name:   "Supernova",
			cols:   []string{cols.MJD, cols.Filter, cols.M5},
			badval: cfg.BadValue,
		},
		mjdCol:    cols.MJD,
		filterCol: cols.Filter,
		m5Col:     cols.M5,
		cfg:       cfg,
		accepted:  accepted,
	}, nil
}

// Run scans one slice for qualifying detection sequences. A slice with no
// visits in the accepted rest-frame filter set yields a nil aggregate, which
// every reducer reports as the bad value.
func (m *SupernovaMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	rawTimes := slice.Floats(m.mjdCol)
	rawFilters := slice.Strings(m.filterCol)
	rawM5 := slice.Floats(m.m5Col)

	// Keep only visits in filters that land in the rest-frame window.
	var times, m5 []float64
	var filters []string
	for i, f := range rawFilters {
		if m.accepted[f] {
			times = append(times, rawTimes[i])
			filters = append(filters, f)
			m5 = append(m5, rawM5[i])
		}
	}
	if len(times) == 0 {
		return schema.Aggregate(nil)
	}

	// Time-order the private copies and rebase to rest-frame days from the
	// first observation.
	order := sortOrder(times)
	t := make([]float64, len(order))
	sortedFilters := make([]string, len(order))
	sortedM5 := make([]float64, len(order))
	tmin := times[order[0]]
	for i, idx := range order {
		t[i] = (times[idx] - tmin) / (1 + m.cfg.Redshift)
		sortedFilters[i] = filters[idx]
		sortedM5[i] = m5[idx]
	}

	agg := &schema.SequenceAggregate{}
	windowLen := m.cfg.TMax - m.cfg.TMin
	span := math.Ceil(t[len(t)-1])
	covered := -1 // data index up to which accepted sequences extend

	for epoch := 0.0; epoch < span; epoch += m.cfg.Resolution {
		left := sort.SearchFloat64s(t, epoch)
		right := sort.Search(len(t), func(j int) bool { return t[j] > epoch+windowLen })
		if right-left <= m.cfg.NBetween {
			continue
		}
		if m.cfg.UniqueBlocks && left < covered {
			continue
		}
		maxGap, nobs, ok := m.qualify(t[left:right], sortedFilters[left:right], sortedM5[left:right], epoch)
		if !ok {
			continue
		}
		agg.NSequences++
		agg.MaxGaps = append(agg.MaxGaps, maxGap)
		agg.NObs = append(agg.NObs, float64(nobs))
		if m.cfg.UniqueBlocks {
			covered = right
		}
	}
	return schema.Aggregate(agg)
}

// qualify checks one candidate window against all detection criteria.
// Window times are shifted so the candidate peak sits at day zero spanning
// [TMin, TMax). It returns the maximum near-peak gap and the window
// observation count for qualifying windows.
func (m *SupernovaMetric) qualify(wt []float64, filters []string, m5 []float64, epoch float64) (maxGap float64, nobs int, ok bool) {
	shifted := make([]float64, len(wt))
	for i, v := range wt {
		shifted[i] = v - epoch + m.cfg.TMin
	}

	var nBefore, nAfter int
	for _, v := range shifted {
		if v < m.cfg.TLess {
			nBefore++
		}
		if v > m.cfg.TMore {
			nAfter++
		}
	}
	if nBefore <= m.cfg.NLess || nAfter <= m.cfg.NMore || len(shifted) <= m.cfg.NBetween {
		return 0, 0, false
	}
	if distinctStrings(filters) < m.cfg.NFilt {
		return 0, 0, false
	}

	// Near-peak sub-window: demand NFilt distinct filters each reaching the
	// single-visit depth limit.
	var nearTimes []float64
	deepFilters := make(map[string]bool)
	nearCount := 0
	for i, v := range shifted {
		if v > m.cfg.TLess && v < m.cfg.TMore {
			nearCount++
			nearTimes = append(nearTimes, v)
			if m5[i] > m.cfg.SingleDepthLimit {
				deepFilters[filters[i]] = true
			}
		}
	}
	if len(deepFilters) < m.cfg.NFilt {
		return 0, 0, false
	}

	// Fewer than two near-peak observations count as an effectively
	// unbounded gap, which disqualifies the sequence below.
	maxGap = m.cfg.PeakGap + 1e6
	if nearCount >= 2 {
		maxGap = 0
		for _, g := range diffs(nearTimes) {
			if g > maxGap {
				maxGap = g
			}
		}
	}
	if maxGap >= m.cfg.PeakGap {
		return 0, 0, false
	}
	return maxGap, len(shifted), true
}

// Reducers exposes the scalar reductions of the sequence aggregate.
func (m *SupernovaMetric) Reducers() []Reducer {
	return []Reducer{
		&sequenceReducer{name: "MedianMaxGap", badval: m.badval, fn: func(agg *schema.SequenceAggregate) float64 {
			return median(agg.MaxGaps)
		}},
		&sequenceReducer{name: "NSequences", badval: m.badval, fn: func(agg *schema.SequenceAggregate) float64 {
			return float64(agg.NSequences)
		}},
		&sequenceReducer{name: "MedianNObs", badval: m.badval, fn: func(agg *schema.SequenceAggregate) float64 {
			return median(agg.NObs)
		}},
	}
}

// sequenceReducer adapts a function over SequenceAggregate to the Reducer
// contract, mapping missing aggregates and undefined medians to the bad value.
type sequenceReducer struct {
	name   string
	badval float64
	fn     func(*schema.SequenceAggregate) float64
}

func (r *sequenceReducer) Name() string { return r.name }

func (r *sequenceReducer) Reduce(value schema.MetricValue) float64 {
	if value.Aggregate == nil {
		return r.badval
	}
	result := r.fn(value.Aggregate)
	if math.IsNaN(result) {
		return r.badval
	}
	return result
}

// distinctStrings counts the unique values in xs.
func distinctStrings(xs []string) int {
	seen := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		seen[x] = struct{}{}
	}
	return len(seen)
}
