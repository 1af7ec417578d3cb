package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestVisitSliceColumns attaches and reads back both column kinds.
func TestVisitSliceColumns(t *testing.T) {
	vs := NewVisitSlice(3)
	assert.Equal(t, 3, vs.Len())

	require.NoError(t, vs.SetFloats("expMJD", []float64{59000, 59001, 59002}))
	require.NoError(t, vs.SetStrings("filter", []string{"g", "r", "g"}))

	assert.Equal(t, []float64{59000, 59001, 59002}, vs.Floats("expMJD"))
	assert.Equal(t, []string{"g", "r", "g"}, vs.Strings("filter"))
	assert.Nil(t, vs.Floats("absent"))
	assert.Nil(t, vs.Strings("absent"))
}

// TestVisitSliceLengthMismatch rejects columns whose length differs from the
// visit count.
func TestVisitSliceLengthMismatch(t *testing.T) {
	vs := NewVisitSlice(2)
	assert.Error(t, vs.SetFloats("expMJD", []float64{59000}))
	assert.Error(t, vs.SetStrings("filter", []string{"g", "r", "i"}))
}

// TestVisitSliceHasColumn covers both kinds plus absence.
func TestVisitSliceHasColumn(t *testing.T) {
	vs := NewVisitSlice(1)
	require.NoError(t, vs.SetFloats("airmass", []float64{1.1}))
	require.NoError(t, vs.SetStrings("filter", []string{"z"}))

	assert.True(t, vs.HasColumn("airmass"))
	assert.True(t, vs.HasColumn("filter"))
	assert.False(t, vs.HasColumn("night"))
}

// TestMetricValueConstructors checks the shape tagging of each wrapper.
func TestMetricValueConstructors(t *testing.T) {
	v := Scalar(1.5)
	assert.Equal(t, ScalarShape, v.Shape)
	assert.InDelta(t, 1.5, v.Scalar, 1e-12)

	agg := &SequenceAggregate{NSequences: 2}
	v = Aggregate(agg)
	assert.Equal(t, AggregateShape, v.Shape)
	assert.Same(t, agg, v.Aggregate)

	v = Histogram([]float64{1, 0, 2}, []float64{0, 1, 2, 3})
	assert.Equal(t, HistogramShape, v.Shape)
	assert.Equal(t, []float64{1, 0, 2}, v.Counts)
	assert.Equal(t, []float64{0, 1, 2, 3}, v.BinEdges)
}

// TestDefaultColumns pins the reference visit schema names.
func TestDefaultColumns(t *testing.T) {
	cols := DefaultColumns()
	assert.Equal(t, "expMJD", cols.MJD)
	assert.Equal(t, "fiveSigmaDepth", cols.M5)
	assert.Equal(t, "fieldID", cols.FieldID)
}

// TestDefaultSupernovaConfig pins the reference detection parameters.
func TestDefaultSupernovaConfig(t *testing.T) {
	cfg := DefaultSupernovaConfig()
	assert.Zero(t, cfg.Redshift)
	assert.InDelta(t, -20.0, cfg.TMin, 1e-12)
	assert.InDelta(t, 60.0, cfg.TMax, 1e-12)
	assert.Equal(t, 7, cfg.NBetween)
	assert.Equal(t, 2, cfg.NFilt)
	assert.InDelta(t, 15.0, cfg.PeakGap, 1e-12)
	assert.InDelta(t, 23.0, cfg.SingleDepthLimit, 1e-12)
	assert.InDelta(t, 5.0, cfg.Resolution, 1e-12)
	assert.False(t, cfg.UniqueBlocks)
	assert.Equal(t, DefaultBadValue, cfg.BadValue)
}

// TestFilterTables checks that every filter has a wavelength and a fiducial
// depth.
func TestFilterTables(t *testing.T) {
	for _, f := range FilterNames {
		assert.Contains(t, FilterWavelengths, f)
		assert.Contains(t, FiducialDepths, f)
	}
	assert.Len(t, FilterWavelengths, len(FilterNames))
	assert.Len(t, FiducialDepths, len(FilterNames))
}
