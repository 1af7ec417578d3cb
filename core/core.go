// Package core has the metric computation layer: stateless reducer algorithms
// that transform one slice of visit records into survey-performance statistics.
package core

import (
	"github.com/huangsam/skymetrics/schema"
)

// Metric is the shared capability contract for all survey metrics.
//
// A metric is immutable after construction and may be invoked concurrently
// across slices. It declares its column dependencies so the fetch layer can
// load exactly what is needed, and a bad-value sentinel it reports when the
// result is undefined for a slice. Run must not mutate the caller's slice:
// any ordering a metric needs is established on a private copy.
type Metric interface {
	// Name returns the display name of the metric.
	Name() string

	// Columns returns the visit columns the metric reads.
	Columns() []string

	// BadValue returns the sentinel reported when the metric is undefined.
	BadValue() float64

	// Run evaluates the metric on one slice. The slice point carries
	// auxiliary per-location attributes and may be nil.
	Run(slice *schema.VisitSlice, point schema.SlicePoint) schema.MetricValue
}

// Reducer turns a complex metric aggregate into one reportable scalar.
// Reducers run only after the invocation that produced the aggregate has
// completed for the same slice; they read the aggregate but never modify it.
type Reducer interface {
	// Name returns the reducer suffix appended to the parent metric name.
	Name() string

	// Reduce condenses the aggregate to a scalar, or the parent metric's
	// bad value when the aggregate is absent or its statistic is undefined.
	Reduce(value schema.MetricValue) float64
}

// ReducibleMetric is a metric whose result carries an intermediate aggregate
// consumed by one or more reducers.
type ReducibleMetric interface {
	Metric
	Reducers() []Reducer
}

// baseMetric carries the identity shared by every metric implementation.
type baseMetric struct {
	name   string
	cols   []string
	badval float64
}

func (b *baseMetric) Name() string      { return b.name }
func (b *baseMetric) Columns() []string { return b.cols }
func (b *baseMetric) BadValue() float64 { return b.badval }
