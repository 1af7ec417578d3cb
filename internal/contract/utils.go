package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
)

// Result label constants.
const (
	BadLabel = "BAD" // slice where the metric was undefined
	OKLabel  = "ok"
)

// Color variables for console output.
var (
	BadColor = color.New(color.FgRed, color.Bold)
	OKColor  = color.New(color.FgGreen)
)

// GetPlainLabel returns a plain text label for a metric result row. This is
// the core logic used for CSV and JSON printing.
func GetPlainLabel(bad bool) string {
	if bad {
		return BadLabel
	}
	return OKLabel
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(bad bool) string {
	if bad {
		return BadColor.Sprint(BadLabel)
	}
	return OKColor.Sprint(OKLabel)
}

// FormatFloat renders a value with the configured precision.
func FormatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// SelectOutputFile returns the file to write output to: stdout when
// filePath is empty, otherwise the created file.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %q: %w", filePath, err)
	}
	return file, nil
}

// GetResultsDBFilePath returns the path to the SQLite DB file for run
// tracking.
func GetResultsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".skymetrics_results.db"
	}
	return filepath.Join(homeDir, ".skymetrics_results.db")
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "❌ %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning with its cause.
func LogWarn(msg string, err error) {
	fmt.Fprintf(os.Stderr, "⚠️  %s: %v\n", msg, err)
}

// LogInfo logs a progress message.
func LogInfo(msg string) {
	fmt.Fprintf(os.Stderr, "ℹ️  %s\n", msg)
}
