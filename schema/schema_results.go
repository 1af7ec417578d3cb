package schema

import "time"

// SequenceAggregate is the intermediate result of the supernova detection
// scan. It is owned by the single invocation that produced it; reducers read
// it but never modify it.
type SequenceAggregate struct {
	NSequences int       // number of qualifying sequences found
	MaxGaps    []float64 // maximum near-peak gap per sequence, rest-frame days
	NObs       []float64 // total in-window observation count per sequence
}

// MetricValue is the result of one metric invocation on one slice.
// Shape tells consumers which fields are populated.
type MetricValue struct {
	Shape     ResultShape
	Scalar    float64
	Aggregate *SequenceAggregate
	Counts    []float64 // histogram counts, HistogramShape only
	BinEdges  []float64 // histogram bin edges, len(Counts)+1
}

// Scalar wraps a plain numeric result.
func Scalar(v float64) MetricValue {
	return MetricValue{Shape: ScalarShape, Scalar: v}
}

// Aggregate wraps a supernova sequence aggregate.
func Aggregate(agg *SequenceAggregate) MetricValue {
	return MetricValue{Shape: AggregateShape, Aggregate: agg}
}

// Histogram wraps binned counts with their edges.
func Histogram(counts, edges []float64) MetricValue {
	return MetricValue{Shape: HistogramShape, Counts: counts, BinEdges: edges}
}

// MetricResult is one reportable value: one metric (or reducer) evaluated on
// one slice.
type MetricResult struct {
	Metric   string      `json:"metric"`
	SliceID  int64       `json:"slice_id"`
	RA       float64     `json:"ra"`
	Dec      float64     `json:"dec"`
	NVisits  int         `json:"n_visits"`
	Shape    ResultShape `json:"shape"`
	Value    float64     `json:"value"`
	Bad      bool        `json:"bad"`
	Counts   []float64   `json:"counts,omitempty"`
	BinEdges []float64   `json:"bin_edges,omitempty"`
}

// MetricSummary condenses one metric's values across all slices of a run.
// Bad-value slices are excluded from the statistics and counted separately.
type MetricSummary struct {
	Metric    string  `json:"metric"`
	NSlices   int     `json:"n_slices"`
	NBad      int     `json:"n_bad"`
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	RobustRms float64 `json:"robust_rms"`
}

// MetricInfo describes one configured metric for listing purposes.
type MetricInfo struct {
	Name     string   `json:"name"`
	Columns  []string `json:"columns"`
	BadValue float64  `json:"bad_value"`
	Shape    string   `json:"shape"`
}

// RunOutput bundles everything a single metric run produced.
type RunOutput struct {
	Results   []MetricResult  `json:"results"`
	Summaries []MetricSummary `json:"summaries"`
	NSlices   int             `json:"n_slices"`
	NVisits   int             `json:"n_visits"`
	Started   time.Time       `json:"started"`
	Duration  time.Duration   `json:"duration"`
}
