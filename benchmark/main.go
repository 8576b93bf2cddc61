// Package main provides a performance benchmarking tool for the sqlscope CLI.
// It generates synthetic report inventories of increasing size, runs each
// command several times without and with the report cache, treating the first
// successful cached run as cold and averaging the rest as warm, and writes a CSV
// of the timings.
//
// Prerequisites:
// - sqlscope binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated inventories and cache files
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Inventory   string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Sizes       []int
	DupEvery    int // every Nth report is a near copy of its predecessor
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Sizes:       []int{100, 1000, 5000},
		DupEvery:    5,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the sqlscope binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("sqlscope"); err != nil {
		return fmt.Errorf("sqlscope binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// templates are rotated to give inventories a realistic mix of complexity.
var templates = []string{
	"SELECT id, name FROM customers_%d WHERE active = 1",
	"SELECT o.id, SUM(o.amount) FROM orders_%d o JOIN customers c ON o.cid = c.id GROUP BY o.id",
	"WITH recent AS (SELECT * FROM events_%d WHERE ts > SYSDATE - 7) SELECT user_id, COUNT(*) FROM recent GROUP BY user_id",
	"SELECT region, CASE WHEN total > 1000 THEN 'high' ELSE 'low' END, ROW_NUMBER() OVER (PARTITION BY region ORDER BY total DESC) FROM sales_%d",
	"SELECT a.id FROM a_%d a WHERE a.id IN (SELECT b.id FROM b UNION SELECT c.id FROM c)",
}

// generateInventory writes a CSV inventory of n reports and returns its path.
func generateInventory(config BenchmarkConfig, n int) (string, error) {
	path := filepath.Join(config.WorkDir, fmt.Sprintf("inventory_%d.csv", n))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"report_name", "owner", "query_sql"}); err != nil {
		return "", err
	}
	for i := range n {
		sql := fmt.Sprintf(templates[i%len(templates)], i/len(templates))
		if config.DupEvery > 0 && i%config.DupEvery == config.DupEvery-1 {
			sql = fmt.Sprintf(templates[(i-1)%len(templates)], (i-1)/len(templates)) + " AND 1 = 1"
		}
		owner := fmt.Sprintf("team-%d", i%7)
		if err := writer.Write([]string{fmt.Sprintf("Report %d", i), owner, sql}); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return path, writer.Error()
}

// runBenchmarks executes all benchmark tests across the configured inventory sizes
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d inventories, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Sizes), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, n := range config.Sizes {
		path, err := generateInventory(config, n)
		if err != nil {
			fmt.Printf("Skipping %d reports: %v\n", n, err)
			continue
		}
		name := filepath.Base(path)
		fmt.Printf("Benchmarking %s\n", name)

		results = append(results, runBenchmarkSuite(config, name, []string{"analyze", path}))
		results = append(results, runBenchmarkSuite(config, name, []string{"check", path, "--max-score", "1000"}))
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, inventory string, args []string) BenchmarkResult {
	command := args[0]
	fmt.Printf("Running %s on %s\n", command, inventory)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, args, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	clearCache(config)
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Inventory:   inventory,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

func cacheFile(config BenchmarkConfig) string {
	return filepath.Join(config.WorkDir, "bench_cache.db")
}

// clearCache removes the benchmark cache so the first cached run is cold
func clearCache(config BenchmarkConfig) {
	cmd := exec.Command("sqlscope", "cache", "clear", "--cache-backend", "sqlite", "--cache-db-connect", cacheFile(config))
	if output, err := cmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}
}

// runBenchmark executes a sqlscope command multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, baseArgs []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, baseArgs...)
	args = append(args, "--cache-backend", cacheBackend, "--workers", fmt.Sprint(config.Workers))
	if cacheBackend == "sqlite" {
		args = append(args, "--cache-db-connect", cacheFile(config))
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("sqlscope", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, baseArgs[0]) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	if command == "check" {
		return strings.Contains(outputStr, "passed")
	}
	return strings.Contains(outputStr, "Analysis completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("sqlscope_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"inventory", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Inventory, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "analyze", "Analyze:")
	printCommandSummary(results, "check", "Check:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-22s: No-cache: %s, Cold: %s, Warm: %s\n", result.Inventory, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
