package core

import (
	"fmt"
	"math"

	"github.com/huangsam/skymetrics/schema"
)

// Coaddm5Metric calculates the coadded five-sigma limiting depth of all
// visits in a slice. Depths stack as fluxes, so the coadd is
// 1.25 * log10(sum(10^(0.8 * m5))).
type Coaddm5Metric struct {
	baseMetric
	m5Col string
}

// NewCoaddm5Metric creates a coadded depth metric.
func NewCoaddm5Metric(cols schema.Columns) *Coaddm5Metric {
	return &Coaddm5Metric{
		baseMetric: baseMetric{name: "CoaddM5", cols: []string{cols.M5}, badval: schema.DefaultBadValue},
		m5Col:      cols.M5,
	}
}

// Run computes the coadded depth for one slice.
func (m *Coaddm5Metric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	m5 := slice.Floats(m.m5Col)
	if len(m5) == 0 {
		return schema.Scalar(m.badval)
	}
	var fluxSum float64
	for _, v := range m5 {
		fluxSum += math.Pow(10, 0.8*v)
	}
	return schema.Scalar(1.25 * math.Log10(fluxSum))
}

// TeffMetric calculates the effective open-shutter time of a slice: each
// visit contributes exposure time scaled by how its depth compares to the
// per-filter fiducial depth, 10^(0.8 * (m5 - fiducial)). With Normed set the
// result is divided by the total nominal exposure time, yielding a
// dimensionless efficiency.
type TeffMetric struct {
	baseMetric
	m5Col     string
	filterCol string
	fiducials map[string]float64
	expTime   float64 // nominal exposure seconds per visit
	normed    bool
}

// NewTeffMetric creates an effective-time metric against the given fiducial
// depths (nil selects the design values).
func NewTeffMetric(cols schema.Columns, fiducials map[string]float64, expTimeSec float64, normed bool) (*TeffMetric, error) {
	if expTimeSec <= 0 {
		return nil, fmt.Errorf("exposure time must be positive, got %g", expTimeSec)
	}
	if fiducials == nil {
		fiducials = schema.FiducialDepths
	}
	name := "Teff"
	if normed {
		name = "NormTeff"
	}
	return &TeffMetric{
		baseMetric: baseMetric{name: name, cols: []string{cols.M5, cols.Filter}, badval: schema.DefaultBadValue},
		m5Col:      cols.M5,
		filterCol:  cols.Filter,
		fiducials:  fiducials,
		expTime:    expTimeSec,
		normed:     normed,
	}, nil
}

// Run computes the effective time for one slice, in seconds (or the nominal
// fraction when normalized). Visits in filters without a fiducial depth are
// skipped.
func (m *TeffMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	m5 := slice.Floats(m.m5Col)
	filters := slice.Strings(m.filterCol)
	if len(m5) == 0 {
		return schema.Scalar(m.badval)
	}
	var teff float64
	counted := 0
	for i, v := range m5 {
		fiducial, ok := m.fiducials[filters[i]]
		if !ok {
			continue
		}
		teff += math.Pow(10, 0.8*(v-fiducial))
		counted++
	}
	if counted == 0 {
		return schema.Scalar(m.badval)
	}
	if m.normed {
		return schema.Scalar(teff / float64(counted))
	}
	return schema.Scalar(teff * m.expTime)
}
