package core

import (
	"testing"

	"github.com/huangsam/skymetrics/schema"
	"github.com/stretchr/testify/require"
)

// testCols is the column binding used across core tests.
var testCols = schema.DefaultColumns()

// newTestSlice builds a visit slice from per-column values. Float and string
// columns must all share the same length.
func newTestSlice(t *testing.T, floats map[string][]float64, strings map[string][]string) *schema.VisitSlice {
	t.Helper()
	n := 0
	for _, v := range floats {
		n = len(v)
		break
	}
	if n == 0 {
		for _, v := range strings {
			n = len(v)
			break
		}
	}
	vs := schema.NewVisitSlice(n)
	for name, v := range floats {
		require.NoError(t, vs.SetFloats(name, v))
	}
	for name, v := range strings {
		require.NoError(t, vs.SetStrings(name, v))
	}
	return vs
}

// mjdSlice builds a slice with only the observation time column.
func mjdSlice(t *testing.T, times []float64) *schema.VisitSlice {
	t.Helper()
	return newTestSlice(t, map[string][]float64{testCols.MJD: times}, nil)
}
