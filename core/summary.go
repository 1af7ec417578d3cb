package core

import (
	"fmt"
	"math"

	"github.com/huangsam/skymetrics/schema"
)

// CountMetric counts the visits in a slice that carry the configured column.
type CountMetric struct {
	baseMetric
	col string
}

// NewCountMetric creates a visit-count metric over one column.
func NewCountMetric(name, col string) *CountMetric {
	return &CountMetric{
		baseMetric: baseMetric{name: name, cols: []string{col}, badval: schema.DefaultBadValue},
		col:        col,
	}
}

// Run counts the column entries for one slice.
func (m *CountMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	return schema.Scalar(float64(len(slice.Floats(m.col))))
}

// ColumnStatMetric reduces one numeric column of a slice to a scalar with
// the configured reduce policy (median, mean, min, max).
type ColumnStatMetric struct {
	baseMetric
	col    string
	reduce schema.ReduceMode
}

// NewColumnStatMetric creates a single-column statistic metric.
func NewColumnStatMetric(name, col string, reduce schema.ReduceMode) (*ColumnStatMetric, error) {
	if _, ok := schema.ValidReduceModes[reduce]; !ok {
		return nil, fmt.Errorf("invalid reduce mode %q", reduce)
	}
	return &ColumnStatMetric{
		baseMetric: baseMetric{name: name, cols: []string{col}, badval: schema.DefaultBadValue},
		col:        col,
		reduce:     reduce,
	}, nil
}

// Run reduces the column for one slice, or reports the bad value for an
// empty column.
func (m *ColumnStatMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	v := applyReduce(m.reduce, slice.Floats(m.col))
	if math.IsNaN(v) {
		return schema.Scalar(m.badval)
	}
	return schema.Scalar(v)
}

// PercentileMetric reports one percentile of a numeric column.
type PercentileMetric struct {
	baseMetric
	col string
	pct float64
}

// NewPercentileMetric creates a percentile metric; pct must be in (0, 100).
func NewPercentileMetric(name, col string, pct float64) (*PercentileMetric, error) {
	if pct <= 0 || pct >= 100 {
		return nil, fmt.Errorf("percentile must be in (0, 100), got %g", pct)
	}
	return &PercentileMetric{
		baseMetric: baseMetric{name: name, cols: []string{col}, badval: schema.DefaultBadValue},
		col:        col,
		pct:        pct,
	}, nil
}

// Run computes the percentile for one slice.
func (m *PercentileMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	v := percentile(slice.Floats(m.col), m.pct)
	if math.IsNaN(v) {
		return schema.Scalar(m.badval)
	}
	return schema.Scalar(v)
}

// RobustRmsMetric estimates a column's spread from its interquartile range,
// scaled to a Gaussian-equivalent standard deviation.
type RobustRmsMetric struct {
	baseMetric
	col string
}

// NewRobustRmsMetric creates a robust RMS metric over one column.
func NewRobustRmsMetric(name, col string) *RobustRmsMetric {
	return &RobustRmsMetric{
		baseMetric: baseMetric{name: name, cols: []string{col}, badval: schema.DefaultBadValue},
		col:        col,
	}
}

// Run computes the robust RMS for one slice.
func (m *RobustRmsMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	v := robustRms(slice.Floats(m.col))
	if math.IsNaN(v) {
		return schema.Scalar(m.badval)
	}
	return schema.Scalar(v)
}

// FracMetric reports the fraction of visits whose column value lies above
// (or below) a cutoff.
type FracMetric struct {
	baseMetric
	col    string
	cutoff float64
	above  bool
}

// NewFracAboveMetric creates a metric counting the fraction of visits at or
// above the cutoff.
func NewFracAboveMetric(name, col string, cutoff float64) *FracMetric {
	return &FracMetric{
		baseMetric: baseMetric{name: name, cols: []string{col}, badval: schema.DefaultBadValue},
		col:        col,
		cutoff:     cutoff,
		above:      true,
	}
}

// NewFracBelowMetric creates a metric counting the fraction of visits at or
// below the cutoff.
func NewFracBelowMetric(name, col string, cutoff float64) *FracMetric {
	return &FracMetric{
		baseMetric: baseMetric{name: name, cols: []string{col}, badval: schema.DefaultBadValue},
		col:        col,
		cutoff:     cutoff,
		above:      false,
	}
}

// Run computes the cutoff fraction for one slice.
func (m *FracMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	values := slice.Floats(m.col)
	if len(values) == 0 {
		return schema.Scalar(m.badval)
	}
	count := 0
	for _, v := range values {
		if (m.above && v >= m.cutoff) || (!m.above && v <= m.cutoff) {
			count++
		}
	}
	return schema.Scalar(float64(count) / float64(len(values)))
}
