package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/skymetrics/internal/contract"
	"github.com/huangsam/skymetrics/internal/opsimdb"
	"github.com/huangsam/skymetrics/internal/outwriter"
	"github.com/huangsam/skymetrics/internal/parquet"
	"github.com/huangsam/skymetrics/internal/resultsdb"
	"github.com/huangsam/skymetrics/schema"
)

// ExecuteMetricRun evaluates the configured metric set over every field slice
// of the visit database and writes the results in the configured output
// format. Runs are optionally recorded in the results store.
func ExecuteMetricRun(ctx context.Context, cfg *contract.Config) error {
	metrics, err := DefaultMetricSet(cfg)
	if err != nil {
		return fmt.Errorf("failed to build metric set: %w", err)
	}

	store, err := opsimdb.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	contract.LogInfo(fmt.Sprintf("Reading visits from %s (%s)", cfg.DBConnect, cfg.Backend))
	slices, points, err := store.FetchSlices(ctx)
	if err != nil {
		return err
	}
	if len(slices) == 0 {
		contract.LogInfo("No visits matched the constraint")
		return nil
	}

	output := RunMetrics(ctx, cfg, metrics, slices, points)
	if err := ctx.Err(); err != nil {
		return err
	}

	persistRun(cfg, output)

	if cfg.Output == schema.ParquetOut {
		return writeRunParquet(cfg, output)
	}
	return outwriter.NewOutWriter().WriteRun(output, cfg)
}

// ExecuteMetricList displays the configured metric set without touching the
// visit database.
func ExecuteMetricList(_ context.Context, cfg *contract.Config) error {
	metrics, err := DefaultMetricSet(cfg)
	if err != nil {
		return fmt.Errorf("failed to build metric set: %w", err)
	}
	return outwriter.NewOutWriter().WriteMetrics(MetricInfos(metrics), cfg)
}

// MetricInfos converts a metric set into listing rows.
func MetricInfos(metrics []Metric) []schema.MetricInfo {
	infos := make([]schema.MetricInfo, len(metrics))
	for i, m := range metrics {
		shape := schema.ScalarShape
		switch m.(type) {
		case ReducibleMetric:
			shape = schema.AggregateShape
		case *TgapsMetric:
			shape = schema.HistogramShape
		}
		infos[i] = schema.MetricInfo{
			Name:     m.Name(),
			Columns:  m.Columns(),
			BadValue: m.BadValue(),
			Shape:    string(shape),
		}
	}
	return infos
}

// persistRun records the run in the results store when one is configured.
// Persistence failures degrade to warnings so the run output is never lost.
func persistRun(cfg *contract.Config, output *schema.RunOutput) {
	if cfg.ResultsBackend == schema.NoneBackend {
		return
	}

	rs, err := resultsdb.NewStore(cfg.ResultsBackend, cfg.ResultsConnect)
	if err != nil {
		contract.LogWarn("Cannot open results store", err)
		return
	}
	defer func() { _ = rs.Close() }()

	params := map[string]any{
		"db":             cfg.DBConnect,
		"visit_table":    cfg.VisitTable,
		"constraint":     cfg.Constraint,
		"survey_length":  cfg.SurveyLength,
		"reduce":         string(cfg.ReduceMode),
		"revisit_window": cfg.RevisitWindow,
		"workers":        cfg.Workers,
	}
	runID, err := rs.BeginRun(output.Started, params)
	if err != nil {
		contract.LogWarn("Cannot begin run tracking", err)
		return
	}
	if err := rs.RecordResults(runID, output.Results); err != nil {
		contract.LogWarn("Cannot record run results", err)
		return
	}
	if err := rs.EndRun(runID, output.Started.Add(output.Duration), len(output.Results)); err != nil {
		contract.LogWarn("Cannot finalize run tracking", err)
	}
}

// writeRunParquet exports results and summaries to Parquet files. Summaries
// go to a sibling file derived from the output path.
func writeRunParquet(cfg *contract.Config, output *schema.RunOutput) error {
	if err := parquet.WriteMetricRowsParquet(parquet.ConvertMetricResults(output), cfg.OutputFile); err != nil {
		return err
	}
	summaryPath := strings.TrimSuffix(cfg.OutputFile, ".parquet") + "_summary.parquet"
	if err := parquet.WriteSummaryRowsParquet(parquet.ConvertMetricSummaries(output), summaryPath); err != nil {
		return err
	}
	contract.LogInfo(fmt.Sprintf("Wrote Parquet to %s and %s", cfg.OutputFile, summaryPath))
	return nil
}
