package schema

// SupernovaConfig holds the fixed configuration of the supernova detection
// metric. All times are days relative to the candidate peak epoch unless
// noted otherwise.
type SupernovaConfig struct {
	Redshift         float64 // redshift used to shift times and filters to the rest frame
	TMin             float64 // earliest day of the detection window relative to peak
	TMax             float64 // latest day of the detection window relative to peak
	NBetween         int     // observations demanded inside the whole window
	NFilt            int     // distinct filters demanded near the peak
	TLess            float64 // near-peak window start; observations before count as "pre-peak"
	NLess            int     // observations demanded before TLess
	TMore            float64 // near-peak window end; observations after count as "post-peak"
	NMore            int     // observations demanded after TMore
	PeakGap          float64 // maximum allowed gap between near-peak observations, days
	SingleDepthLimit float64 // depth each qualifying near-peak filter must reach
	Resolution       float64 // candidate peak epoch spacing, rest-frame days
	UniqueBlocks     bool    // deduplicate overlapping qualifying sequences
	BadValue         float64 // sentinel for undefined reductions
}

// DefaultSupernovaConfig returns the reference configuration for a rest-frame
// supernova detection scan.
func DefaultSupernovaConfig() SupernovaConfig {
	return SupernovaConfig{
		Redshift:         0,
		TMin:             -20,
		TMax:             60,
		NBetween:         7,
		NFilt:            2,
		TLess:            -5,
		NLess:            1,
		TMore:            30,
		NMore:            1,
		PeakGap:          15,
		SingleDepthLimit: 23,
		Resolution:       5,
		UniqueBlocks:     false,
		BadValue:         DefaultBadValue,
	}
}
