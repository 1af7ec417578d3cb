package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/huangsam/skymetrics/internal/contract"
	"github.com/huangsam/skymetrics/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RunMetrics evaluates every metric on every slice using a worker pool of
// cfg.Workers goroutines. Slices are independent, so any scheduling is
// correct; workers only share the job and result channels.
func RunMetrics(ctx context.Context, cfg *contract.Config, metrics []Metric, slices []*schema.VisitSlice, points []schema.SlicePoint) *schema.RunOutput {
	start := time.Now()

	jobCh := make(chan int, len(slices))
	rowCh := make(chan []schema.MetricResult, len(slices))
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Go(func() {
			for idx := range jobCh {
				if ctx.Err() != nil {
					continue // drain remaining jobs after cancellation
				}
				rowCh <- evalSlice(metrics, slices[idx], points[idx])
			}
		})
	}

	for i := range slices {
		jobCh <- i
	}
	close(jobCh)
	wg.Wait()
	close(rowCh)

	var results []schema.MetricResult
	for rows := range rowCh {
		results = append(results, rows...)
	}
	// Deterministic ordering regardless of worker interleaving.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Metric != results[j].Metric {
			return results[i].Metric < results[j].Metric
		}
		return results[i].SliceID < results[j].SliceID
	})

	nvisits := 0
	for _, s := range slices {
		nvisits += s.Len()
	}

	return &schema.RunOutput{
		Results:   results,
		Summaries: summarize(results),
		NSlices:   len(slices),
		NVisits:   nvisits,
		Started:   start,
		Duration:  time.Since(start),
	}
}

// evalSlice runs all metrics against one slice. Aggregate-shaped results
// fan out into one row per reducer; the reducers read the aggregate produced
// by the same invocation.
func evalSlice(metrics []Metric, slice *schema.VisitSlice, point schema.SlicePoint) []schema.MetricResult {
	sid := int64(point[schema.PointSliceID])
	ra := point[schema.PointRA]
	dec := point[schema.PointDec]

	var rows []schema.MetricResult
	for _, m := range metrics {
		value := m.Run(slice, point)
		base := schema.MetricResult{
			Metric:  m.Name(),
			SliceID: sid,
			RA:      ra,
			Dec:     dec,
			NVisits: slice.Len(),
			Shape:   value.Shape,
		}
		switch value.Shape {
		case schema.AggregateShape:
			rm, ok := m.(ReducibleMetric)
			if !ok {
				continue
			}
			for _, r := range rm.Reducers() {
				row := base
				row.Metric = m.Name() + "_" + r.Name()
				row.Shape = schema.ScalarShape
				row.Value = r.Reduce(value)
				row.Bad = row.Value == m.BadValue()
				rows = append(rows, row)
			}
		case schema.HistogramShape:
			row := base
			row.Counts = value.Counts
			row.BinEdges = value.BinEdges
			row.Value = floats.Sum(value.Counts)
			rows = append(rows, row)
		default:
			row := base
			row.Value = value.Scalar
			row.Bad = value.Scalar == m.BadValue()
			rows = append(rows, row)
		}
	}
	return rows
}

// summarize condenses scalar rows into per-metric summaries across slices.
// Bad-value rows are counted but excluded from the statistics.
func summarize(results []schema.MetricResult) []schema.MetricSummary {
	grouped := make(map[string][]float64)
	badCount := make(map[string]int)
	total := make(map[string]int)
	var names []string

	for _, r := range results {
		if r.Shape != schema.ScalarShape {
			continue
		}
		if _, seen := total[r.Metric]; !seen {
			names = append(names, r.Metric)
		}
		total[r.Metric]++
		if r.Bad {
			badCount[r.Metric]++
			continue
		}
		grouped[r.Metric] = append(grouped[r.Metric], r.Value)
	}
	sort.Strings(names)

	summaries := make([]schema.MetricSummary, 0, len(names))
	for _, name := range names {
		s := schema.MetricSummary{
			Metric:  name,
			NSlices: total[name],
			NBad:    badCount[name],
		}
		values := grouped[name]
		if len(values) == 0 {
			s.Mean = schema.DefaultBadValue
			s.Median = schema.DefaultBadValue
			s.Min = schema.DefaultBadValue
			s.Max = schema.DefaultBadValue
			s.RobustRms = schema.DefaultBadValue
		} else {
			s.Mean = stat.Mean(values, nil)
			s.Median = median(values)
			s.Min = floats.Min(values)
			s.Max = floats.Max(values)
			s.RobustRms = robustRms(values)
		}
		summaries = append(summaries, s)
	}
	return summaries
}
