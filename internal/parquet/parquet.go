// Package parquet provides data structures and functions for exporting metric
// run data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/skymetrics/schema"
	"github.com/parquet-go/parquet-go"
)

// MetricRow represents one metric value on one slice in a run.
type MetricRow struct {
	// RunStart is when the metric run began (stored as TIMESTAMP with nanosecond precision)
	RunStart time.Time `parquet:"run_start,snappy"`

	// Metric is the full metric name, including any reducer suffix
	Metric string `parquet:"metric,snappy"`

	// SliceID identifies the field the metric was evaluated on
	SliceID int64 `parquet:"slice_id,snappy"`

	// RA is the field right ascension in degrees
	RA float64 `parquet:"ra,snappy"`

	// Dec is the field declination in degrees
	Dec float64 `parquet:"dec,snappy"`

	// NVisits is the number of visits in the slice
	NVisits int32 `parquet:"n_visits,snappy"`

	// Value is the computed metric value
	Value float64 `parquet:"value,snappy"`

	// Bad marks slices where the metric was undefined
	Bad bool `parquet:"bad,snappy"`
}

// SummaryRow represents one metric's statistics across all slices of a run.
type SummaryRow struct {
	// RunStart is when the metric run began
	RunStart time.Time `parquet:"run_start,snappy"`

	// Metric is the full metric name
	Metric string `parquet:"metric,snappy"`

	// NSlices is the number of slices the metric produced a value on
	NSlices int32 `parquet:"n_slices,snappy"`

	// NBad is the number of slices where the metric was undefined
	NBad int32 `parquet:"n_bad,snappy"`

	Mean      float64 `parquet:"mean,snappy"`
	Median    float64 `parquet:"median,snappy"`
	Min       float64 `parquet:"min,snappy"`
	Max       float64 `parquet:"max,snappy"`
	RobustRms float64 `parquet:"robust_rms,snappy"`
}

// WriteMetricRowsParquet writes a slice of MetricRow structs to a Parquet file.
func WriteMetricRowsParquet(data []MetricRow, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the MetricRow struct tags
	writer := parquet.NewGenericWriter[MetricRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteSummaryRowsParquet writes a slice of SummaryRow structs to a Parquet file.
func WriteSummaryRowsParquet(data []SummaryRow, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[SummaryRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// MockFetchMetricRows generates sample MetricRow data for demonstration.
func MockFetchMetricRows() []MetricRow {
	started := time.Now().Add(-5 * time.Minute)

	return []MetricRow{
		{
			RunStart: started,
			Metric:   "NVisits",
			SliceID:  101,
			RA:       34.2,
			Dec:      -5.1,
			NVisits:  842,
			Value:    842,
		},
		{
			RunStart: started,
			Metric:   "Supernova_NSequences",
			SliceID:  101,
			RA:       34.2,
			Dec:      -5.1,
			NVisits:  842,
			Value:    12,
		},
		{
			RunStart: started,
			Metric:   "Median Intra-Night Gap",
			SliceID:  207,
			RA:       51.8,
			Dec:      -27.4,
			NVisits:  3,
			Value:    -666,
			Bad:      true, // too few visit pairs on this field
		},
	}
}

// MockFetchSummaryRows generates sample SummaryRow data for demonstration.
func MockFetchSummaryRows() []SummaryRow {
	started := time.Now().Add(-5 * time.Minute)

	return []SummaryRow{
		{
			RunStart:  started,
			Metric:    "NVisits",
			NSlices:   2,
			NBad:      0,
			Mean:      422.5,
			Median:    422.5,
			Min:       3,
			Max:       842,
			RobustRms: 310.9,
		},
		{
			RunStart:  started,
			Metric:    "Median Intra-Night Gap",
			NSlices:   2,
			NBad:      1,
			Mean:      0.021,
			Median:    0.021,
			Min:       0.021,
			Max:       0.021,
			RobustRms: 0,
		},
	}
}

// ConvertMetricResults converts schema.MetricResult rows to MetricRow for
// Parquet export.
func ConvertMetricResults(output *schema.RunOutput) []MetricRow {
	result := make([]MetricRow, len(output.Results))
	for i, r := range output.Results {
		result[i] = MetricRow{
			RunStart: output.Started,
			Metric:   r.Metric,
			SliceID:  r.SliceID,
			RA:       r.RA,
			Dec:      r.Dec,
			NVisits:  int32(r.NVisits),
			Value:    r.Value,
			Bad:      r.Bad,
		}
	}
	return result
}

// ConvertMetricSummaries converts schema.MetricSummary rows to SummaryRow for
// Parquet export.
func ConvertMetricSummaries(output *schema.RunOutput) []SummaryRow {
	result := make([]SummaryRow, len(output.Summaries))
	for i, s := range output.Summaries {
		result[i] = SummaryRow{
			RunStart:  output.Started,
			Metric:    s.Metric,
			NSlices:   int32(s.NSlices),
			NBad:      int32(s.NBad),
			Mean:      s.Mean,
			Median:    s.Median,
			Min:       s.Min,
			Max:       s.Max,
			RobustRms: s.RobustRms,
		}
	}
	return result
}
