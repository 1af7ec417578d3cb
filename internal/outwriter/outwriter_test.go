package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/skymetrics/internal/contract"
	"github.com/huangsam/skymetrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleRun builds a small run with one good and one bad result.
func sampleRun() *schema.RunOutput {
	return &schema.RunOutput{
		Results: []schema.MetricResult{
			{Metric: "NVisits", SliceID: 1, RA: 10.5, Dec: -20.25, NVisits: 3, Shape: schema.ScalarShape, Value: 3},
			{Metric: "Uniformity", SliceID: 1, RA: 10.5, Dec: -20.25, NVisits: 3, Shape: schema.ScalarShape, Value: schema.DefaultBadValue, Bad: true},
		},
		Summaries: []schema.MetricSummary{
			{Metric: "NVisits", NSlices: 1, Mean: 3, Median: 3, Min: 3, Max: 3},
		},
		NSlices:  1,
		NVisits:  3,
		Started:  time.Now(),
		Duration: 10 * time.Millisecond,
	}
}

// TestWriteRunJSON writes a run to a JSON file and decodes it back.
func TestWriteRunJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path, Precision: 2}

	require.NoError(t, NewOutWriter().WriteRun(sampleRun(), cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded schema.RunOutput
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, "NVisits", decoded.Results[0].Metric)
	assert.True(t, decoded.Results[1].Bad)
	assert.Equal(t, 1, decoded.NSlices)
}

// TestWriteRunCSV writes a run to a CSV file and checks header and rows.
func TestWriteRunCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	cfg := &contract.Config{Output: schema.CSVOut, OutputFile: path, Precision: 2}

	require.NoError(t, NewOutWriter().WriteRun(sampleRun(), cfg))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"metric", "slice_id", "ra", "dec", "n_visits", "value", "label"}, records[0])
	assert.Equal(t, []string{"NVisits", "1", "10.50", "-20.25", "3", "3.00", contract.OKLabel}, records[1])
	assert.Equal(t, contract.BadLabel, records[2][6])
}

// TestWriteRunTables writes the default table format to a file.
func TestWriteRunTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.txt")
	cfg := &contract.Config{
		Output:         schema.TextOut,
		OutputFile:     path,
		Precision:      2,
		ResultLimit:    1,
		Workers:        4,
		ResultsBackend: schema.NoneBackend,
	}

	require.NoError(t, NewOutWriter().WriteRun(sampleRun(), cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "NVisits")
	assert.Contains(t, text, "Showing 1 of 2 results across 1 slices (3 visits)")
	assert.Contains(t, text, "Robust RMS")
	assert.Contains(t, text, "with 4 workers")
	// The limit cuts the second result row from the table.
	assert.NotContains(t, text, "Uniformity")
}

// TestWriteMetricDefinitions writes the metric listing in each format.
func TestWriteMetricDefinitions(t *testing.T) {
	metrics := []schema.MetricInfo{
		{Name: "NVisits", Columns: []string{"expMJD"}, BadValue: schema.DefaultBadValue, Shape: string(schema.ScalarShape)},
		{Name: "Supernova", Columns: []string{"expMJD", "filter", "fiveSigmaDepth"}, BadValue: schema.DefaultBadValue, Shape: string(schema.AggregateShape)},
	}

	t.Run("table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "metrics.txt")
		cfg := &contract.Config{Output: schema.TextOut, OutputFile: path, Precision: 2}
		require.NoError(t, NewOutWriter().WriteMetrics(metrics, cfg))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Supernova")
		assert.Contains(t, string(data), "Configured 2 metrics")
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "metrics.csv")
		cfg := &contract.Config{Output: schema.CSVOut, OutputFile: path, Precision: 2}
		require.NoError(t, NewOutWriter().WriteMetrics(metrics, cfg))

		f, err := os.Open(path)
		require.NoError(t, err)
		defer func() { require.NoError(t, f.Close()) }()
		records, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "expMJD|filter|fiveSigmaDepth", records[2][2])
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "metrics.json")
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path, Precision: 2}
		require.NoError(t, NewOutWriter().WriteMetrics(metrics, cfg))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var decoded []schema.MetricInfo
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "Supernova", decoded[1].Name)
	})
}

// TestWriteJSONIndent checks the encoder indentation.
func TestWriteJSONIndent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"n": 1}))
	assert.Equal(t, "{\n  \"n\": 1\n}\n", buf.String())
}

// TestCreateFormatters checks the configured precision closure.
func TestCreateFormatters(t *testing.T) {
	fmtFloat, intFmt := createFormatters(3)
	assert.Equal(t, "1.500", fmtFloat(1.5))
	assert.Equal(t, "%d", intFmt)
}

// TestTruncateName covers short, long and tiny limits.
func TestTruncateName(t *testing.T) {
	assert.Equal(t, "NVisits", truncateName("NVisits", 15))
	long := strings.Repeat("x", 30)
	got := truncateName(long, 10)
	assert.Len(t, got, 10)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, "xx", truncateName(long, 2))
}
