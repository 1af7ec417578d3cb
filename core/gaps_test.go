package core

import (
	"testing"

	"github.com/huangsam/skymetrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gapSlice builds a slice with time and night columns.
func gapSlice(t *testing.T, times, nights []float64) *schema.VisitSlice {
	t.Helper()
	return newTestSlice(t, map[string][]float64{
		testCols.MJD:   times,
		testCols.Night: nights,
	}, nil)
}

// TestIntraNightGaps tests same-night gap reduction in hours.
func TestIntraNightGaps(t *testing.T) {
	m, err := NewIntraNightGapsMetric(testCols, schema.ReduceMedian)
	require.NoError(t, err)

	// Two visits three hours apart on night 1 and one lone visit on night 5.
	slice := gapSlice(t,
		[]float64{59000.0, 59000.125, 59005.0},
		[]float64{1, 1, 5},
	)
	v := m.Run(slice, nil)
	assert.InDelta(t, 3.0, v.Scalar, 1e-9)
}

// TestIntraNightGapsNoPairs ensures slices without a same-night pair yield
// the bad value.
func TestIntraNightGapsNoPairs(t *testing.T) {
	m, err := NewIntraNightGapsMetric(testCols, schema.ReduceMedian)
	require.NoError(t, err)

	slice := gapSlice(t, []float64{59000, 59001}, []float64{1, 2})
	v := m.Run(slice, nil)
	assert.Equal(t, schema.DefaultBadValue, v.Scalar)
}

// TestIntraNightGapsReduceModes tests the mean, min and max policies.
func TestIntraNightGapsReduceModes(t *testing.T) {
	// Same-night gaps of 1, 2 and 3 hours.
	times := []float64{59000.0, 59000.0 + 1.0/24, 59000.0 + 3.0/24, 59000.0 + 6.0/24}
	nights := []float64{1, 1, 1, 1}

	tests := []struct {
		name     string
		mode     schema.ReduceMode
		expected float64
	}{
		{name: "mean", mode: schema.ReduceMean, expected: 2.0},
		{name: "min", mode: schema.ReduceMin, expected: 1.0},
		{name: "max", mode: schema.ReduceMax, expected: 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewIntraNightGapsMetric(testCols, tt.mode)
			require.NoError(t, err)
			v := m.Run(gapSlice(t, times, nights), nil)
			assert.InDelta(t, tt.expected, v.Scalar, 1e-9)
		})
	}
}

// TestInterNightGaps tests last-of-night to first-of-next-night gaps in days.
func TestInterNightGaps(t *testing.T) {
	m, err := NewInterNightGapsMetric(testCols, schema.ReduceMedian)
	require.NoError(t, err)

	// Night 1 ends at 59000.2; night 3 starts at 59002.1.
	slice := gapSlice(t,
		[]float64{59000.0, 59000.2, 59002.1, 59002.3},
		[]float64{1, 1, 3, 3},
	)
	v := m.Run(slice, nil)
	assert.InDelta(t, 1.9, v.Scalar, 1e-9)
}

// TestInterNightGapsSingleNight ensures one observed night yields the bad
// value.
func TestInterNightGapsSingleNight(t *testing.T) {
	m, err := NewInterNightGapsMetric(testCols, schema.ReduceMedian)
	require.NoError(t, err)

	slice := gapSlice(t, []float64{59000.0, 59000.1}, []float64{1, 1})
	v := m.Run(slice, nil)
	assert.Equal(t, schema.DefaultBadValue, v.Scalar)
}

// TestInterNightGapsMultipleNights tests reduction across several night
// transitions.
func TestInterNightGapsMultipleNights(t *testing.T) {
	// Transitions of 1, 2 and 4 days between single-visit nights.
	times := []float64{59000, 59001, 59003, 59007}
	nights := []float64{1, 2, 4, 8}

	m, err := NewInterNightGapsMetric(testCols, schema.ReduceMax)
	require.NoError(t, err)
	v := m.Run(gapSlice(t, times, nights), nil)
	assert.InDelta(t, 4.0, v.Scalar, 1e-9)
}

// TestAveGap tests whole-slice gap reduction in hours.
func TestAveGap(t *testing.T) {
	m, err := NewAveGapMetric(testCols, schema.ReduceMedian)
	require.NoError(t, err)

	// Gaps of 1 and 2 hours.
	slice := mjdSlice(t, []float64{59000.0, 59000.0 + 1.0/24, 59000.0 + 3.0/24})
	v := m.Run(slice, nil)
	assert.InDelta(t, 1.5, v.Scalar, 1e-9)
}

// TestAveGapSingleVisit ensures fewer than two visits yield the bad value.
func TestAveGapSingleVisit(t *testing.T) {
	m, err := NewAveGapMetric(testCols, schema.ReduceMedian)
	require.NoError(t, err)

	v := m.Run(mjdSlice(t, []float64{59000}), nil)
	assert.Equal(t, schema.DefaultBadValue, v.Scalar)
}

// TestGapMetricNames checks that names carry the reduce policy.
func TestGapMetricNames(t *testing.T) {
	intra, err := NewIntraNightGapsMetric(testCols, schema.ReduceMedian)
	require.NoError(t, err)
	assert.Equal(t, "Median Intra-Night Gap", intra.Name())

	inter, err := NewInterNightGapsMetric(testCols, schema.ReduceMean)
	require.NoError(t, err)
	assert.Equal(t, "Mean Inter-Night Gap", inter.Name())

	ave, err := NewAveGapMetric(testCols, schema.ReduceMax)
	require.NoError(t, err)
	assert.Equal(t, "Max Gap", ave.Name())
}

// TestGapMetricInvalidReduce ensures unknown reduce modes fail at
// construction.
func TestGapMetricInvalidReduce(t *testing.T) {
	_, err := NewIntraNightGapsMetric(testCols, "variance")
	assert.Error(t, err)
}

// TestUniqueSorted tests night deduplication.
func TestUniqueSorted(t *testing.T) {
	assert.Nil(t, uniqueSorted(nil))
	assert.Equal(t, []float64{1, 2, 3}, uniqueSorted([]float64{3, 1, 2, 1, 3}))
}
