// Package contract has shared configuration, interfaces and helpers that the
// metric core, storage layers and CLI all depend on.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/skymetrics/schema"
)

// VisitStore fetches field-grouped visit slices from a survey observation
// database. Implementations return one VisitSlice per field, each paired
// with a SlicePoint holding the field identifier and sky position.
type VisitStore interface {
	// FetchSlices loads the configured columns for all visits matching the
	// optional SQL constraint, grouped by field.
	FetchSlices(ctx context.Context) ([]*schema.VisitSlice, []schema.SlicePoint, error)

	// Close releases the underlying database handle.
	Close() error
}

// ResultsStore persists metric runs and their per-slice values.
type ResultsStore interface {
	// BeginRun records the start of a metric run and returns its ID.
	BeginRun(start time.Time, params map[string]any) (int64, error)

	// RecordResults stores the per-slice metric values for a run.
	RecordResults(runID int64, results []schema.MetricResult) error

	// EndRun finalizes a run with its end time and result count.
	EndRun(runID int64, end time.Time, nResults int) error

	// Close releases the underlying database handle.
	Close() error
}
