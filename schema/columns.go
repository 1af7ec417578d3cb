package schema

// Columns binds metric algorithms to the column names of a particular visit
// schema, so the same metric can run over differently-named tables.
type Columns struct {
	MJD     string // observation time, modified Julian date
	Night   string // integer night index, coarser than MJD
	Filter  string // filter identifier (u/g/r/i/z/y)
	M5      string // five-sigma limiting depth
	Seeing  string // delivered seeing FWHM, arcsec
	Airmass string // airmass of the observation
	RA      string // field right ascension
	Dec     string // field declination
	FieldID string // survey field identifier, the slicing key
}

// DefaultColumns returns the column bindings of the reference visit schema.
func DefaultColumns() Columns {
	return Columns{
		MJD:     "expMJD",
		Night:   "night",
		Filter:  "filter",
		M5:      "fiveSigmaDepth",
		Seeing:  "finSeeing",
		Airmass: "airmass",
		RA:      "fieldRA",
		Dec:     "fieldDec",
		FieldID: "fieldID",
	}
}
