package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/skymetrics/internal/contract"
	"github.com/huangsam/skymetrics/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "skymetrics",
	Short:              "Evaluate survey cadence quality metrics over a visit database.",
	Long:               `Skymetrics reads simulated survey observation logs and scores each sky field on cadence, depth and seeing quality.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".skymetrics") // Name of config file (without extension)
		viper.SetConfigType("yaml")        // We'll use YAML format
		viper.AddConfigPath(".")           // Look in the current directory
		viper.AddConfigPath("$HOME")       // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("SKYMETRICS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("visit-table", contract.DefaultVisitTable)
	viper.SetDefault("survey-length", contract.DefaultSurveyLength)
	viper.SetDefault("reduce", schema.ReduceMedian)
	viper.SetDefault("revisit-window", contract.DefaultRevisitWindow)
	viper.SetDefault("rapid-min-visits", contract.DefaultRapidMinVis)
	viper.SetDefault("rapid-dt-min", contract.DefaultRapidDTminSec)
	viper.SetDefault("rapid-dt-max", contract.DefaultRapidDTmaxMin)
	viper.SetDefault("seeing-limit", contract.DefaultSeeingLimit)
	viper.SetDefault("airmass-limit", contract.DefaultAirmassLimit)
	viper.SetDefault("astro-mag", contract.DefaultAstroMag)
	viper.SetDefault("atm-limit", contract.DefaultAtmLimit)
	viper.SetDefault("exp-time", contract.DefaultExpTime)
	viper.SetDefault("results-backend", schema.NoneBackend)
	viper.SetDefault("results-db-connect", "")
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	if len(args) == 1 {
		input.DBConnect = args[0]
	}

	// 4. Run all validation and complex parsing.
	// This function now populates the global 'cfg' from 'input'.
	return contract.ProcessAndValidate(cfg, input)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
