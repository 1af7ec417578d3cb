package schema

// Custom string types for type safety.
type (
	// ReduceMode selects how an array of gaps is condensed to one scalar.
	ReduceMode string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for visit and result storage.
	DatabaseBackend string

	// ResultShape describes the shape of a metric result.
	ResultShape string
)

// All reduce modes supported by the gap metrics.
const (
	ReduceMedian ReduceMode = "median" // default
	ReduceMean   ReduceMode = "mean"
	ReduceMin    ReduceMode = "min"
	ReduceMax    ReduceMode = "max"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All result shapes supported.
const (
	ScalarShape    ResultShape = "scalar"
	AggregateShape ResultShape = "aggregate"
	HistogramShape ResultShape = "histogram"
)

// DefaultBadValue is the sentinel reported when a metric is undefined for a
// slice (too few visits, no qualifying pairs, undefined median).
const DefaultBadValue = -666.0

// ValidReduceModes lists all valid reduce modes.
var ValidReduceModes = map[ReduceMode]struct{}{
	ReduceMedian: {},
	ReduceMean:   {},
	ReduceMin:    {},
	ReduceMax:    {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// FilterNames is the survey filter alphabet, ordered from blue to red.
var FilterNames = []string{"u", "g", "r", "i", "z", "y"}

// FilterWavelengths maps each filter to its rough effective wavelength in nm.
var FilterWavelengths = map[string]float64{
	"u": 375.0,
	"g": 476.0,
	"r": 621.0,
	"i": 754.0,
	"z": 870.0,
	"y": 980.0,
}

// Rest-frame wavelength acceptance window for transient detection, in nm.
const (
	RestWavelengthMin = 300.0
	RestWavelengthMax = 900.0
)

// FiducialDepths holds the design single-visit five-sigma depths per filter,
// used as the reference depth for effective-time calculations.
var FiducialDepths = map[string]float64{
	"u": 23.9,
	"g": 25.0,
	"r": 24.7,
	"i": 24.0,
	"z": 23.3,
	"y": 22.1,
}

// DaysPerYear is the Julian year length used to scale survey durations.
const DaysPerYear = 365.25
