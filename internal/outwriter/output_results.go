package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/skymetrics/internal/contract"
	"github.com/huangsam/skymetrics/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRunResults outputs a metric run, dispatching based on the output
// format configured.
func WriteRunResults(output *schema.RunOutput, cfg *contract.Config) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeRunJSONResults(output, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeRunCSVResults(output, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunTables(output, cfg, fmtFloat, intFmt, w)
		}, "Wrote table")
	}
	return nil
}

// writeRunJSONResults handles opening the file and calling the JSON writer.
func writeRunJSONResults(output *schema.RunOutput, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, output)
	}, "Wrote JSON")
}

// writeRunCSVResults handles opening the file and calling the CSV writer.
func writeRunCSVResults(output *schema.RunOutput, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"metric",
		"slice_id",
		"ra",
		"dec",
		"n_visits",
		"value",
		"label",
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, r := range output.Results {
				rec := []string{
					r.Metric,
					strconv.FormatInt(r.SliceID, 10),
					fmtFloat(r.RA),
					fmtFloat(r.Dec),
					fmt.Sprintf(intFmt, r.NVisits),
					fmtFloat(r.Value),
					contract.GetPlainLabel(r.Bad),
				}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// writeRunTables generates and writes the human-readable result and summary
// tables.
func writeRunTables(output *schema.RunOutput, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, writer io.Writer) error {
	shown := output.Results
	if len(shown) > cfg.ResultLimit {
		shown = shown[:cfg.ResultLimit]
	}

	if err := writeResultTable(shown, cfg, fmtFloat, intFmt, writer); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Showing %d of %d results across %d slices (%d visits)\n",
		len(shown), len(output.Results), output.NSlices, output.NVisits); err != nil {
		return err
	}

	if len(output.Summaries) > 0 {
		if _, err := fmt.Fprintln(writer); err != nil {
			return err
		}
		if err := writeSummaryTable(output.Summaries, fmtFloat, intFmt, writer); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(writer, "Run completed in %v with %d workers. Results backend: %s\n",
		output.Duration, cfg.Workers, cfg.ResultsBackend); err != nil {
		return err
	}
	return nil
}

// writeResultTable renders the per-slice metric values.
func writeResultTable(results []schema.MetricResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	table.Header([]string{"Metric", "Slice", "RA", "Dec", "Visits", "Value", "Label"})

	// 2. Configure alignment to match a minimal look
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	maxWidth := getMaxTableMetricWidth()
	var data [][]string
	for _, r := range results {
		row := []string{
			truncateName(r.Metric, maxWidth),
			strconv.FormatInt(r.SliceID, 10),
			fmtFloat(r.RA),
			fmtFloat(r.Dec),
			fmt.Sprintf(intFmt, r.NVisits),
			fmtFloat(r.Value),
			contract.GetColorLabel(r.Bad),
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeSummaryTable renders the per-metric statistics across slices.
func writeSummaryTable(summaries []schema.MetricSummary, fmtFloat func(float64) string, intFmt string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Metric", "Slices", "Bad", "Mean", "Median", "Min", "Max", "Robust RMS"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := getMaxTableMetricWidth()
	var data [][]string
	for _, s := range summaries {
		row := []string{
			truncateName(s.Metric, maxWidth),
			fmt.Sprintf(intFmt, s.NSlices),
			fmt.Sprintf(intFmt, s.NBad),
			fmtFloat(s.Mean),
			fmtFloat(s.Median),
			fmtFloat(s.Min),
			fmtFloat(s.Max),
			fmtFloat(s.RobustRms),
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// WriteMetricDefinitions outputs the configured metric set, dispatching based
// on the output format configured.
func WriteMetricDefinitions(metrics []schema.MetricInfo, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, metrics)
		}, "Wrote JSON")
	case schema.CSVOut:
		header := []string{"metric", "shape", "columns", "bad_value"}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
				for _, m := range metrics {
					rec := []string{
						m.Name,
						m.Shape,
						strings.Join(m.Columns, "|"),
						fmtFloat(m.BadValue),
					}
					if err := csvWriter.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricTable(metrics, fmtFloat, w)
		}, "Wrote table")
	}
}

// writeMetricTable renders the metric definitions table.
func writeMetricTable(metrics []schema.MetricInfo, fmtFloat func(float64) string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Metric", "Shape", "Columns", "Bad Value"})

	var data [][]string
	for _, m := range metrics {
		data = append(data, []string{
			m.Name,
			m.Shape,
			strings.Join(m.Columns, ", "),
			fmtFloat(m.BadValue),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Configured %d metrics\n", len(metrics))
	return err
}
