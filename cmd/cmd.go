// Package cmd defines the command-line interface for skymetrics.
package cmd

import (
	"github.com/huangsam/skymetrics/internal/contract"
	"github.com/huangsam/skymetrics/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the results subcommands to the parent results command
	resultsCmd.AddCommand(resultsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("db", "", "Visit database: sqlite path or driver DSN")
	rootCmd.PersistentFlags().String("db-backend", string(schema.SQLiteBackend), "Visit database backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("visit-table", contract.DefaultVisitTable, "Name of the visit table")
	rootCmd.PersistentFlags().String("constraint", "", "SQL fragment restricting visits (e.g. \"filter = 'r'\")")
	rootCmd.PersistentFlags().Float64("survey-length", contract.DefaultSurveyLength, "Survey length in years")
	rootCmd.PersistentFlags().String("reduce", string(schema.ReduceMedian), "Gap reduce mode: median or mean or min or max")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of result rows to display")
	rootCmd.PersistentFlags().Float64("revisit-window", contract.DefaultRevisitWindow, "Revisit window in minutes")
	rootCmd.PersistentFlags().Int("rapid-min-visits", contract.DefaultRapidMinVis, "Minimum visits for the rapid revisit metric")
	rootCmd.PersistentFlags().Float64("rapid-dt-min", contract.DefaultRapidDTminSec, "Rapid revisit minimum gap in seconds")
	rootCmd.PersistentFlags().Float64("rapid-dt-max", contract.DefaultRapidDTmaxMin, "Rapid revisit maximum gap in minutes")
	rootCmd.PersistentFlags().Float64("seeing-limit", contract.DefaultSeeingLimit, "Good-seeing cutoff in arcseconds")
	rootCmd.PersistentFlags().Float64("airmass-limit", contract.DefaultAirmassLimit, "Low-airmass cutoff")
	rootCmd.PersistentFlags().Float64("astro-mag", contract.DefaultAstroMag, "Reference magnitude for astrometric precision")
	rootCmd.PersistentFlags().Float64("atm-limit", contract.DefaultAtmLimit, "Atmospheric astrometric floor in arcseconds")
	rootCmd.PersistentFlags().Float64("exp-time", contract.DefaultExpTime, "Nominal exposure time per visit in seconds")
	rootCmd.PersistentFlags().String("results-backend", string(schema.NoneBackend), "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("results-db-connect", "", "Database connection string for run tracking")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of resultsMigrateCmd to Viper
	resultsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(resultsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding results migrate flags", err)
	}
}
