package core

import (
	"fmt"

	"github.com/huangsam/skymetrics/internal/contract"
	"github.com/huangsam/skymetrics/schema"
)

// DefaultMetricSet builds the science-performance metric set from the run
// configuration: cadence uniformity, revisit statistics, gap statistics,
// supernova detection, astrometric precision, depth and image quality.
func DefaultMetricSet(cfg *contract.Config) ([]Metric, error) {
	cols := cfg.Columns
	var metrics []Metric

	uniformity, err := NewUniformityMetric(cols, cfg.SurveyLength)
	if err != nil {
		return nil, fmt.Errorf("uniformity: %w", err)
	}
	metrics = append(metrics, uniformity)

	rapid, err := NewRapidRevisitMetric(cols, cfg.RapidMinVisits, cfg.RapidDTmin, cfg.RapidDTmax)
	if err != nil {
		return nil, fmt.Errorf("rapid revisit: %w", err)
	}
	metrics = append(metrics,
		rapid,
		NewNRevisitsMetric(cols, cfg.RevisitWindow, false),
		NewNRevisitsMetric(cols, cfg.RevisitWindow, true),
	)

	intra, err := NewIntraNightGapsMetric(cols, cfg.ReduceMode)
	if err != nil {
		return nil, fmt.Errorf("intra-night gaps: %w", err)
	}
	inter, err := NewInterNightGapsMetric(cols, cfg.ReduceMode)
	if err != nil {
		return nil, fmt.Errorf("inter-night gaps: %w", err)
	}
	ave, err := NewAveGapMetric(cols, cfg.ReduceMode)
	if err != nil {
		return nil, fmt.Errorf("average gap: %w", err)
	}
	metrics = append(metrics, intra, inter, ave)

	sn, err := NewSupernovaMetric(cols, cfg.Supernova)
	if err != nil {
		return nil, fmt.Errorf("supernova: %w", err)
	}
	metrics = append(metrics, sn)

	astro, err := NewAstroPrecMetric(cols, cfg.AstroMag, cfg.AtmLimit)
	if err != nil {
		return nil, fmt.Errorf("astrometric precision: %w", err)
	}
	metrics = append(metrics, astro)

	teff, err := NewTeffMetric(cols, nil, cfg.ExpTime, true)
	if err != nil {
		return nil, fmt.Errorf("effective time: %w", err)
	}
	minSeeing, err := NewColumnStatMetric(fmt.Sprintf("Min %s", cols.Seeing), cols.Seeing, schema.ReduceMin)
	if err != nil {
		return nil, fmt.Errorf("min seeing: %w", err)
	}
	minAirmass, err := NewColumnStatMetric(fmt.Sprintf("Min %s", cols.Airmass), cols.Airmass, schema.ReduceMin)
	if err != nil {
		return nil, fmt.Errorf("min airmass: %w", err)
	}
	tgaps, err := NewTgapsMetric(cols, tgapBinEdges(), false)
	if err != nil {
		return nil, fmt.Errorf("time gaps: %w", err)
	}
	metrics = append(metrics,
		NewCountMetric("NVisits", cols.MJD),
		NewCoaddm5Metric(cols),
		teff,
		NewTemplateExistsMetric(cols),
		tgaps,
		minSeeing,
		NewFracAboveMetric(fmt.Sprintf("FracAbove %s %.2f", cols.Seeing, cfg.SeeingLimit), cols.Seeing, cfg.SeeingLimit),
		minAirmass,
		NewFracAboveMetric(fmt.Sprintf("FracAbove %s %.2f", cols.Airmass, cfg.AirmassLimit), cols.Airmass, cfg.AirmassLimit),
	)

	return metrics, nil
}

// tgapBinEdges returns the default gap histogram bins: half-day steps out
// to sixty days.
func tgapBinEdges() []float64 {
	var edges []float64
	for e := 0.0; e <= 60.0; e += 0.5 {
		edges = append(edges, e)
	}
	return edges
}

// MetricColumns collects the distinct visit columns the metric set depends
// on, so the fetch layer loads exactly what is needed.
func MetricColumns(metrics []Metric) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, m := range metrics {
		for _, c := range m.Columns() {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			cols = append(cols, c)
		}
	}
	return cols
}
