// Package schema has configs, models and global variables for all parts of skymetrics.
package schema

import "fmt"

// VisitSlice is the subset of visit records associated with one spatial cell
// of the survey footprint. It is a fixed-length, column-addressable table:
// numeric columns (times, depths, seeing, airmass) and string columns (filter).
//
// Metrics treat the backing column slices as read-only. Any ordering a metric
// needs is established on a private copy, so a slice can be shared across
// concurrent metric invocations.
type VisitSlice struct {
	n       int
	floats  map[string][]float64
	strings map[string][]string
}

// NewVisitSlice creates an empty slice holding n visits.
func NewVisitSlice(n int) *VisitSlice {
	return &VisitSlice{
		n:       n,
		floats:  make(map[string][]float64),
		strings: make(map[string][]string),
	}
}

// Len returns the number of visits in the slice.
func (vs *VisitSlice) Len() int {
	return vs.n
}

// SetFloats attaches a numeric column. The column length must match Len.
func (vs *VisitSlice) SetFloats(name string, values []float64) error {
	if len(values) != vs.n {
		return fmt.Errorf("column %q has %d values, slice has %d visits", name, len(values), vs.n)
	}
	vs.floats[name] = values
	return nil
}

// SetStrings attaches a string column. The column length must match Len.
func (vs *VisitSlice) SetStrings(name string, values []string) error {
	if len(values) != vs.n {
		return fmt.Errorf("column %q has %d values, slice has %d visits", name, len(values), vs.n)
	}
	vs.strings[name] = values
	return nil
}

// Floats returns the numeric column with the given name, or nil if absent.
// Callers must not modify the returned slice.
func (vs *VisitSlice) Floats(name string) []float64 {
	return vs.floats[name]
}

// Strings returns the string column with the given name, or nil if absent.
// Callers must not modify the returned slice.
func (vs *VisitSlice) Strings(name string) []string {
	return vs.strings[name]
}

// HasColumn reports whether a column with the given name is attached.
func (vs *VisitSlice) HasColumn(name string) bool {
	if _, ok := vs.floats[name]; ok {
		return true
	}
	_, ok := vs.strings[name]
	return ok
}

// SlicePoint carries auxiliary per-location attributes from the slicing layer
// (cell ID, sky coordinates). The metrics defined here accept it for interface
// fidelity but do not read it.
type SlicePoint map[string]float64

// Well-known SlicePoint keys populated by the field slicer.
const (
	PointSliceID = "sid"
	PointRA      = "ra"
	PointDec     = "dec"
)
