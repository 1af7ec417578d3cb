package core

import (
	"testing"

	"github.com/huangsam/skymetrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snSlice builds a slice with daily visits over the given span, alternating
// the provided filters with constant depth.
func snSlice(t *testing.T, days int, filters []string, m5 float64) *schema.VisitSlice {
	t.Helper()
	times := make([]float64, days)
	filterCol := make([]string, days)
	m5Col := make([]float64, days)
	for i := range days {
		times[i] = float64(i)
		filterCol[i] = filters[i%len(filters)]
		m5Col[i] = m5
	}
	return newTestSlice(t,
		map[string][]float64{testCols.MJD: times, testCols.M5: m5Col},
		map[string][]string{testCols.Filter: filterCol},
	)
}

// TestSupernovaDenseCadence ensures a dense two-filter cadence produces
// qualifying sequences with day-scale near-peak gaps.
func TestSupernovaDenseCadence(t *testing.T) {
	m, err := NewSupernovaMetric(testCols, schema.DefaultSupernovaConfig())
	require.NoError(t, err)

	v := m.Run(snSlice(t, 100, []string{"g", "r"}, 24), nil)
	require.Equal(t, schema.AggregateShape, v.Shape)
	require.NotNil(t, v.Aggregate)
	assert.Greater(t, v.Aggregate.NSequences, 0)

	reducers := m.Reducers()
	require.Len(t, reducers, 3)
	byName := map[string]Reducer{}
	for _, r := range reducers {
		byName[r.Name()] = r
	}
	// Daily sampling means every near-peak gap is one rest-frame day.
	assert.InDelta(t, 1.0, byName["MedianMaxGap"].Reduce(v), 1e-9)
	assert.InDelta(t, float64(v.Aggregate.NSequences), byName["NSequences"].Reduce(v), 1e-12)
	assert.GreaterOrEqual(t, byName["MedianNObs"].Reduce(v), float64(schema.DefaultSupernovaConfig().NBetween))
}

// TestSupernovaShallowVisits ensures visits below the single-visit depth
// limit never qualify.
func TestSupernovaShallowVisits(t *testing.T) {
	m, err := NewSupernovaMetric(testCols, schema.DefaultSupernovaConfig())
	require.NoError(t, err)

	v := m.Run(snSlice(t, 100, []string{"g", "r"}, 21), nil)
	require.NotNil(t, v.Aggregate)
	assert.Equal(t, 0, v.Aggregate.NSequences)
}

// TestSupernovaSingleFilter ensures a one-filter cadence fails the filter
// coverage requirement.
func TestSupernovaSingleFilter(t *testing.T) {
	m, err := NewSupernovaMetric(testCols, schema.DefaultSupernovaConfig())
	require.NoError(t, err)

	v := m.Run(snSlice(t, 100, []string{"r"}, 24), nil)
	require.NotNil(t, v.Aggregate)
	assert.Equal(t, 0, v.Aggregate.NSequences)
}

// TestSupernovaRedshiftFilterCut ensures a redshift that pushes every filter
// out of the rest-frame window yields a nil aggregate and bad reductions.
func TestSupernovaRedshiftFilterCut(t *testing.T) {
	cfg := schema.DefaultSupernovaConfig()
	cfg.Redshift = 3
	m, err := NewSupernovaMetric(testCols, cfg)
	require.NoError(t, err)

	v := m.Run(snSlice(t, 100, []string{"g", "r"}, 24), nil)
	require.Equal(t, schema.AggregateShape, v.Shape)
	assert.Nil(t, v.Aggregate)

	for _, r := range m.Reducers() {
		assert.Equal(t, cfg.BadValue, r.Reduce(v))
	}
}

// TestSupernovaUniqueBlocks ensures sequence deduplication never increases
// the count.
func TestSupernovaUniqueBlocks(t *testing.T) {
	overlapping, err := NewSupernovaMetric(testCols, schema.DefaultSupernovaConfig())
	require.NoError(t, err)

	cfgUnique := schema.DefaultSupernovaConfig()
	cfgUnique.UniqueBlocks = true
	unique, err := NewSupernovaMetric(testCols, cfgUnique)
	require.NoError(t, err)

	slice := snSlice(t, 200, []string{"g", "r"}, 24)
	all := overlapping.Run(slice, nil)
	deduped := unique.Run(slice, nil)
	require.NotNil(t, all.Aggregate)
	require.NotNil(t, deduped.Aggregate)
	assert.Greater(t, deduped.Aggregate.NSequences, 0)
	assert.Less(t, deduped.Aggregate.NSequences, all.Aggregate.NSequences)
}

// TestSupernovaEmptyAggregateReductions tests reducing an aggregate with no
// sequences.
func TestSupernovaEmptyAggregateReductions(t *testing.T) {
	m, err := NewSupernovaMetric(testCols, schema.DefaultSupernovaConfig())
	require.NoError(t, err)

	v := schema.Aggregate(&schema.SequenceAggregate{})
	for _, r := range m.Reducers() {
		switch r.Name() {
		case "NSequences":
			assert.Zero(t, r.Reduce(v))
		default:
			// Median of no sequences is undefined.
			assert.Equal(t, schema.DefaultBadValue, r.Reduce(v))
		}
	}
}

// TestSupernovaConfigValidation ensures invalid scan parameters fail at
// construction.
func TestSupernovaConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*schema.SupernovaConfig)
	}{
		{
			name:   "zero resolution",
			mutate: func(c *schema.SupernovaConfig) { c.Resolution = 0 },
		},
		{
			name:   "inverted window",
			mutate: func(c *schema.SupernovaConfig) { c.TMax = c.TMin },
		},
		{
			name:   "negative redshift",
			mutate: func(c *schema.SupernovaConfig) { c.Redshift = -0.5 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := schema.DefaultSupernovaConfig()
			tt.mutate(&cfg)
			_, err := NewSupernovaMetric(testCols, cfg)
			assert.Error(t, err)
		})
	}
}

// TestDistinctStrings tests unique value counting.
func TestDistinctStrings(t *testing.T) {
	assert.Zero(t, distinctStrings(nil))
	assert.Equal(t, 2, distinctStrings([]string{"g", "r", "g"}))
}

// BenchmarkSupernovaRun benchmarks the sequence scan over a dense season.
func BenchmarkSupernovaRun(b *testing.B) {
	const days = 365
	times := make([]float64, days)
	filters := make([]string, days)
	m5 := make([]float64, days)
	for i := range days {
		times[i] = float64(i)
		if i%2 == 0 {
			filters[i] = "g"
		} else {
			filters[i] = "r"
		}
		m5[i] = 24.0
	}
	slice := schema.NewVisitSlice(days)
	_ = slice.SetFloats(testCols.MJD, times)
	_ = slice.SetFloats(testCols.M5, m5)
	_ = slice.SetStrings(testCols.Filter, filters)

	m, err := NewSupernovaMetric(testCols, schema.DefaultSupernovaConfig())
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		m.Run(slice, nil)
	}
}
