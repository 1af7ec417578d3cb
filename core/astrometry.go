package core

import (
	"fmt"
	"math"

	"github.com/huangsam/skymetrics/schema"
)

// AstroPrecMetric calculates the average astrometric precision, in
// milliarcseconds, delivered to a star of the reference magnitude across the
// visits of a slice.
type AstroPrecMetric struct {
	baseMetric
	m5Col     string
	seeingCol string
	mag       float64 // reference stellar magnitude
	atmLimit  float64 // atmospheric noise floor, arcsec
}

// NewAstroPrecMetric creates an astrometric precision metric for a star of
// magnitude mag, with the atmospheric floor in arcseconds.
func NewAstroPrecMetric(cols schema.Columns, mag, atmLimit float64) (*AstroPrecMetric, error) {
	if atmLimit < 0 {
		return nil, fmt.Errorf("atmospheric limit must be non-negative, got %g", atmLimit)
	}
	return &AstroPrecMetric{
		baseMetric: baseMetric{
			name:   fmt.Sprintf("AstroPrec r=%g", mag),
			cols:   []string{cols.M5, cols.Seeing},
			badval: schema.DefaultBadValue,
		},
		m5Col:     cols.M5,
		seeingCol: cols.Seeing,
		mag:       mag,
		atmLimit:  atmLimit,
	}, nil
}

// Run computes the mean astrometric precision for one slice.
func (m *AstroPrecMetric) Run(slice *schema.VisitSlice, _ schema.SlicePoint) schema.MetricValue {
	m5 := slice.Floats(m.m5Col)
	seeing := slice.Floats(m.seeingCol)
	if len(m5) == 0 {
		return schema.Scalar(m.badval)
	}
	var sum float64
	for i := range m5 {
		snr := m52snr(m.mag, m5[i])
		prec := seeing[i] / snr
		sum += math.Sqrt(prec*prec + m.atmLimit*m.atmLimit)
	}
	// Mean precision in arcsec, reported in milliarcsec.
	return schema.Scalar(sum / float64(len(m5)) * 1e3)
}

// m52snr finds the SNR for a star of magnitude m observed under conditions
// of five-sigma limiting depth m5.
func m52snr(m, m5 float64) float64 {
	return 5 * math.Pow(10, -0.4*(m-m5))
}
