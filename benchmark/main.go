// Package main provides a performance benchmarking tool for the skymetrics CLI.
// It generates synthetic visit databases of increasing size, measures run
// times across worker counts, treating the first run per case as cold and
// averaging the rest as warm, and writes CSV output for performance tracking.
//
// Prerequisites:
// - skymetrics binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic databases are generated
package main

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// BenchmarkResult holds the result of a benchmark case (cold run and average of warm runs).
type BenchmarkResult struct {
	Database string
	Workers  int
	ColdTime string
	WarmTime string
}

// BenchmarkCase describes one synthetic database size.
type BenchmarkCase struct {
	Name           string
	Fields         int
	VisitsPerField int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir string
	Timeout time.Duration
	Runs    int
	Workers []int
	Cases   []BenchmarkCase
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: os.Args[1],
		Timeout: 5 * time.Minute,
		Runs:    4,
		Workers: []int{1, 4, 8},
		Cases: []BenchmarkCase{
			{Name: "small", Fields: 50, VisitsPerField: 200},
			{Name: "medium", Fields: 500, VisitsPerField: 500},
			{Name: "large", Fields: 2000, VisitsPerField: 1000},
		},
	}

	if _, err := exec.LookPath("skymetrics"); err != nil {
		fmt.Println("skymetrics binary not found in PATH")
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks generates each database and times the runs.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d cases, %v timeout, %d runs per case\n",
		len(config.Cases), config.Timeout, config.Runs)

	for _, c := range config.Cases {
		dbPath := filepath.Join(config.WorkDir, c.Name+".db")
		fmt.Printf("Generating %s (%d fields x %d visits)\n", c.Name, c.Fields, c.VisitsPerField)
		if err := generateVisitDB(dbPath, c.Fields, c.VisitsPerField); err != nil {
			return nil, fmt.Errorf("generate %s: %w", c.Name, err)
		}

		for _, workers := range config.Workers {
			fmt.Printf("Benchmarking %s with %d workers\n", c.Name, workers)
			cold, warm := timeRuns(config, dbPath, workers)
			results = append(results, BenchmarkResult{
				Database: c.Name,
				Workers:  workers,
				ColdTime: cold,
				WarmTime: warm,
			})
		}
	}

	return results, nil
}

// timeRuns executes the run command repeatedly; the first run is cold, the
// rest average into the warm time.
func timeRuns(config BenchmarkConfig, dbPath string, workers int) (cold, warm string) {
	var times []float64
	for i := 0; i < config.Runs; i++ {
		cmd := exec.Command("skymetrics", "run", dbPath,
			"--workers", fmt.Sprintf("%d", workers),
			"--output", "csv", "--output-file", os.DevNull)

		start := time.Now()
		err := cmd.Start()
		if err == nil {
			done := make(chan error, 1)
			go func() { done <- cmd.Wait() }()
			select {
			case err = <-done:
			case <-time.After(config.Timeout):
				_ = cmd.Process.Kill()
				err = fmt.Errorf("timeout")
			}
		}
		if err != nil {
			return "TIMEOUT", "TIMEOUT"
		}
		times = append(times, time.Since(start).Seconds())
	}

	cold = fmt.Sprintf("%.3fs", times[0])
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		warm = fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	} else {
		warm = cold
	}
	return cold, warm
}

// generateVisitDB writes a synthetic visit table with plausible cadence,
// depth and seeing distributions.
func generateVisitDB(path string, fields, visitsPerField int) error {
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(`CREATE TABLE summary (
		fieldID INTEGER,
		expMJD REAL,
		night REAL,
		filter TEXT,
		fiveSigmaDepth REAL,
		finSeeing REAL,
		airmass REAL,
		fieldRA REAL,
		fieldDec REAL
	)`); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(42))
	filters := []string{"u", "g", "r", "i", "z", "y"}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO summary VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()

	for field := 1; field <= fields; field++ {
		ra := rng.Float64() * 360
		dec := rng.Float64()*120 - 90
		for v := 0; v < visitsPerField; v++ {
			night := float64(rng.Intn(3650))
			mjd := 59000.0 + night + rng.Float64()*0.4
			if _, err := stmt.Exec(
				field, mjd, night, filters[rng.Intn(len(filters))],
				23.5+rng.Float64()*1.5, 0.5+rng.Float64()*0.8, 1.0+rng.Float64()*0.5,
				ra, dec); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
	}
	return tx.Commit()
}

// saveResults writes benchmark results to a CSV file.
func saveResults(results []BenchmarkResult) error {
	file, err := os.Create("benchmark_results.csv")
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"database", "workers", "cold_time", "warm_time"}); err != nil {
		return err
	}
	for _, r := range results {
		rec := []string{r.Database, fmt.Sprintf("%d", r.Workers), r.ColdTime, r.WarmTime}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// printSummary prints the results table to stdout.
func printSummary(results []BenchmarkResult) {
	fmt.Println("\nBenchmark summary:")
	fmt.Printf("%-10s %8s %12s %12s\n", "database", "workers", "cold", "warm")
	for _, r := range results {
		fmt.Printf("%-10s %8d %12s %12s\n", r.Database, r.Workers, r.ColdTime, r.WarmTime)
	}
	fmt.Println("\nResults saved to benchmark_results.csv")
}
