package contract

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/huangsam/skymetrics/schema"
)

// Default values for configuration.
const (
	DefaultSurveyLength  = 10.0 // years
	DefaultResultLimit   = 25
	MaxResultLimit       = 10000
	DefaultPrecision     = 2
	DefaultRevisitWindow = 30.0        // minutes
	DefaultRapidMinVis   = 100         // visits
	DefaultRapidDTminSec = 40.0        // seconds
	DefaultRapidDTmaxMin = 30.0        // minutes
	DefaultSeeingLimit   = 0.7         // arcsec
	DefaultAirmassLimit  = 1.2         // airmasses
	DefaultAstroMag      = 20.0        // reference magnitude
	DefaultAtmLimit      = 0.01        // arcsec
	DefaultExpTime       = 30.0        // seconds
	DefaultVisitTable    = "summary"   // opsim visit table name
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the validated runtime configuration for a metric run.
type Config struct {
	DBConnect      string // sqlite path or driver DSN for the visit database
	Backend        schema.DatabaseBackend
	VisitTable     string // name of the visit table
	Constraint     string // optional SQL fragment restricting visits
	Columns        schema.Columns
	SurveyLength   float64 // years
	ReduceMode     schema.ReduceMode
	Workers        int
	Output         schema.OutputMode
	OutputFile     string
	Precision      int
	ResultLimit    int // maximum per-metric slice rows displayed
	RevisitWindow  float64 // minutes, revisit-count threshold
	RapidMinVisits int
	RapidDTmin     float64 // days
	RapidDTmax     float64 // days
	SeeingLimit    float64 // arcsec, good-seeing cutoff
	AirmassLimit   float64 // low-airmass cutoff
	AstroMag       float64 // reference magnitude for astrometric precision
	AtmLimit       float64 // arcsec, atmospheric astrometric floor
	ExpTime        float64 // seconds, nominal exposure per visit
	Supernova      schema.SupernovaConfig
	ResultsBackend schema.DatabaseBackend
	ResultsConnect string
}

// ColumnsRawInput holds column-name overrides from the config file.
type ColumnsRawInput struct {
	MJD     string `mapstructure:"mjd"`
	Night   string `mapstructure:"night"`
	Filter  string `mapstructure:"filter"`
	M5      string `mapstructure:"m5"`
	Seeing  string `mapstructure:"seeing"`
	Airmass string `mapstructure:"airmass"`
	RA      string `mapstructure:"ra"`
	Dec     string `mapstructure:"dec"`
	FieldID string `mapstructure:"field_id"`
}

// SupernovaRawInput holds supernova scan overrides from the config file.
// Pointers distinguish "absent" from legitimate zero values.
type SupernovaRawInput struct {
	Redshift         *float64 `mapstructure:"redshift"`
	TMin             *float64 `mapstructure:"t_min"`
	TMax             *float64 `mapstructure:"t_max"`
	NBetween         *int     `mapstructure:"n_between"`
	NFilt            *int     `mapstructure:"n_filt"`
	TLess            *float64 `mapstructure:"t_less"`
	NLess            *int     `mapstructure:"n_less"`
	TMore            *float64 `mapstructure:"t_more"`
	NMore            *int     `mapstructure:"n_more"`
	PeakGap          *float64 `mapstructure:"peak_gap"`
	SingleDepthLimit *float64 `mapstructure:"single_depth_limit"`
	Resolution       *float64 `mapstructure:"resolution"`
	UniqueBlocks     *bool    `mapstructure:"unique_blocks"`
}

// ConfigRawInput holds the raw inputs from all sources (file, env, flags).
// Viper unmarshals into this struct; ProcessAndValidate turns it into the
// final Config.
type ConfigRawInput struct {
	DBConnect      string             `mapstructure:"db"`
	Backend        string             `mapstructure:"db-backend"`
	VisitTable     string             `mapstructure:"visit-table"`
	Constraint     string             `mapstructure:"constraint"`
	SurveyLength   float64            `mapstructure:"survey-length"`
	Reduce         string             `mapstructure:"reduce"`
	Workers        int                `mapstructure:"workers"`
	Output         string             `mapstructure:"output"`
	OutputFile     string             `mapstructure:"output-file"`
	Precision      int                `mapstructure:"precision"`
	ResultLimit    int                `mapstructure:"limit"`
	RevisitWindow  float64            `mapstructure:"revisit-window"`
	RapidMinVisits int                `mapstructure:"rapid-min-visits"`
	RapidDTminSec  float64            `mapstructure:"rapid-dt-min"`
	RapidDTmaxMin  float64            `mapstructure:"rapid-dt-max"`
	SeeingLimit    float64            `mapstructure:"seeing-limit"`
	AirmassLimit   float64            `mapstructure:"airmass-limit"`
	AstroMag       float64            `mapstructure:"astro-mag"`
	AtmLimit       float64            `mapstructure:"atm-limit"`
	ExpTime        float64            `mapstructure:"exp-time"`
	ResultsBackend string             `mapstructure:"results-backend"`
	ResultsConnect string             `mapstructure:"results-db-connect"`
	Columns        *ColumnsRawInput   `mapstructure:"columns"`
	Supernova      *SupernovaRawInput `mapstructure:"supernova"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// --- 1. Visit database ---
	if input.DBConnect == "" {
		return fmt.Errorf("a visit database is required (--db)")
	}
	cfg.DBConnect = input.DBConnect

	cfg.Backend = schema.DatabaseBackend(strings.ToLower(input.Backend))
	if cfg.Backend == "" {
		cfg.Backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.Backend]; !ok || cfg.Backend == schema.NoneBackend {
		return fmt.Errorf("invalid database backend %q. must be sqlite, mysql or postgresql", input.Backend)
	}

	cfg.VisitTable = input.VisitTable
	if cfg.VisitTable == "" {
		cfg.VisitTable = DefaultVisitTable
	}
	cfg.Constraint = strings.TrimSpace(input.Constraint)

	// --- 2. Execution parameters ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.ResultLimit <= 0 || input.ResultLimit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.ResultLimit)
	}
	cfg.ResultLimit = input.ResultLimit

	if input.Precision < 0 || input.Precision > 6 {
		return fmt.Errorf("precision must be between 0 and 6 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	// --- 3. Output ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format %q. must be text, csv, json, parquet", input.Output)
	}
	cfg.OutputFile = input.OutputFile
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 4. Metric parameters ---
	cfg.SurveyLength = input.SurveyLength
	if cfg.SurveyLength <= 0 {
		return fmt.Errorf("survey length must be positive (received %g)", input.SurveyLength)
	}

	cfg.ReduceMode = schema.ReduceMode(strings.ToLower(input.Reduce))
	if cfg.ReduceMode == "" {
		cfg.ReduceMode = schema.ReduceMedian
	}
	if _, ok := schema.ValidReduceModes[cfg.ReduceMode]; !ok {
		return fmt.Errorf("invalid reduce mode %q. must be median, mean, min, max", input.Reduce)
	}

	if input.RevisitWindow <= 0 {
		return fmt.Errorf("revisit window must be positive (received %g)", input.RevisitWindow)
	}
	cfg.RevisitWindow = input.RevisitWindow

	cfg.RapidMinVisits = input.RapidMinVisits
	cfg.RapidDTmin = input.RapidDTminSec / 60.0 / 60.0 / 24.0
	cfg.RapidDTmax = input.RapidDTmaxMin / 60.0 / 24.0
	if cfg.RapidDTmax <= cfg.RapidDTmin {
		return fmt.Errorf("rapid-dt-max (%g min) must exceed rapid-dt-min (%g sec)", input.RapidDTmaxMin, input.RapidDTminSec)
	}

	cfg.SeeingLimit = input.SeeingLimit
	cfg.AirmassLimit = input.AirmassLimit
	cfg.AstroMag = input.AstroMag
	cfg.AtmLimit = input.AtmLimit
	if input.ExpTime <= 0 {
		return fmt.Errorf("exposure time must be positive (received %g)", input.ExpTime)
	}
	cfg.ExpTime = input.ExpTime

	// --- 5. Column bindings ---
	cfg.Columns = schema.DefaultColumns()
	if input.Columns != nil {
		applyColumnOverrides(&cfg.Columns, input.Columns)
	}

	// --- 6. Supernova configuration ---
	cfg.Supernova = schema.DefaultSupernovaConfig()
	if input.Supernova != nil {
		applySupernovaOverrides(&cfg.Supernova, input.Supernova)
	}

	// --- 7. Results persistence ---
	cfg.ResultsBackend = schema.DatabaseBackend(strings.ToLower(input.ResultsBackend))
	if cfg.ResultsBackend == "" {
		cfg.ResultsBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.ResultsBackend]; !ok {
		return fmt.Errorf("invalid results backend %q. must be sqlite, mysql, postgresql or none", input.ResultsBackend)
	}
	cfg.ResultsConnect = input.ResultsConnect
	if cfg.ResultsBackend != schema.NoneBackend && cfg.ResultsBackend != schema.SQLiteBackend && cfg.ResultsConnect == "" {
		return fmt.Errorf("results backend %s requires --results-db-connect", cfg.ResultsBackend)
	}

	return nil
}

// applyColumnOverrides copies non-empty override names into the bindings.
func applyColumnOverrides(cols *schema.Columns, raw *ColumnsRawInput) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cols.MJD, raw.MJD)
	set(&cols.Night, raw.Night)
	set(&cols.Filter, raw.Filter)
	set(&cols.M5, raw.M5)
	set(&cols.Seeing, raw.Seeing)
	set(&cols.Airmass, raw.Airmass)
	set(&cols.RA, raw.RA)
	set(&cols.Dec, raw.Dec)
	set(&cols.FieldID, raw.FieldID)
}

// applySupernovaOverrides copies present override values into the scan config.
func applySupernovaOverrides(sn *schema.SupernovaConfig, raw *SupernovaRawInput) {
	if raw.Redshift != nil {
		sn.Redshift = *raw.Redshift
	}
	if raw.TMin != nil {
		sn.TMin = *raw.TMin
	}
	if raw.TMax != nil {
		sn.TMax = *raw.TMax
	}
	if raw.NBetween != nil {
		sn.NBetween = *raw.NBetween
	}
	if raw.NFilt != nil {
		sn.NFilt = *raw.NFilt
	}
	if raw.TLess != nil {
		sn.TLess = *raw.TLess
	}
	if raw.NLess != nil {
		sn.NLess = *raw.NLess
	}
	if raw.TMore != nil {
		sn.TMore = *raw.TMore
	}
	if raw.NMore != nil {
		sn.NMore = *raw.NMore
	}
	if raw.PeakGap != nil {
		sn.PeakGap = *raw.PeakGap
	}
	if raw.SingleDepthLimit != nil {
		sn.SingleDepthLimit = *raw.SingleDepthLimit
	}
	if raw.Resolution != nil {
		sn.Resolution = *raw.Resolution
	}
	if raw.UniqueBlocks != nil {
		sn.UniqueBlocks = *raw.UniqueBlocks
	}
}
