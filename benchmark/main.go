// Package main benchmarks the codeline CLI across a set of local repositories.
// Each command runs a no-cache phase and a cached phase; the first successful
// cached run is reported as cold and the remainder averaged as warm. Results
// land in a timestamped CSV under /tmp.
//
// Usage: go run benchmark/main.go <repo-base-dir>
//
// The base directory must contain the repositories listed in testRepos, and a
// codeline binary must be on PATH.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	runTimeout  = 5 * time.Minute
	noCacheRuns = 3
	cacheRuns   = 4
)

var testRepos = []string{"csv-parser", "fd", "git", "kubernetes"}

type benchmarkRow struct {
	repo    string
	command string
	noCache string
	cold    string
	warm    string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s <repo-base-dir>\n", os.Args[0])
		os.Exit(1)
	}
	repoBase := os.Args[1]

	if _, err := exec.LookPath("codeline"); err != nil {
		fmt.Println("codeline binary not found in PATH")
		os.Exit(1)
	}
	for _, repo := range testRepos {
		if _, err := os.Stat(filepath.Join(repoBase, repo)); err != nil {
			fmt.Printf("repository %s not found under %s\n", repo, repoBase)
			os.Exit(1)
		}
	}

	fmt.Println("Clearing cache...")
	if out, err := exec.Command("codeline", "cache", "clear").CombinedOutput(); err != nil {
		fmt.Printf("Warning: cache clear failed: %v\n%s", err, out)
	}

	var rows []benchmarkRow
	for _, repo := range testRepos {
		repoPath := filepath.Join(repoBase, repo)
		for _, command := range []string{"affinity", "timeline"} {
			fmt.Printf("Benchmarking %s %s\n", repo, command)
			rows = append(rows, benchmarkCommand(repo, repoPath, command))
		}
	}

	if err := saveResults(rows); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	printSummary(rows)
}

// benchmarkCommand times one codeline command in both cache phases.
func benchmarkCommand(repo, repoPath, command string) benchmarkRow {
	noCacheTimes := timeRuns(repoPath, command, "none", noCacheRuns)
	cacheTimes := timeRuns(repoPath, command, "sqlite", cacheRuns)

	row := benchmarkRow{
		repo:    repo,
		command: command,
		noCache: average(noCacheTimes),
		cold:    "TIMEOUT",
		warm:    "TIMEOUT",
	}
	if len(cacheTimes) > 0 {
		row.cold = fmt.Sprintf("%.3fs", cacheTimes[0])
		row.warm = average(cacheTimes[1:])
	}
	fmt.Printf("  no-cache %s, cold %s, warm %s\n", row.noCache, row.cold, row.warm)
	return row
}

// timeRuns executes the command numRuns times against one repository and
// returns the wall times of the successful runs in order.
func timeRuns(repoPath, command, cacheBackend string, numRuns int) []float64 {
	var times []float64
	for run := 0; run < numRuns; run++ {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		cmd := exec.CommandContext(ctx, "codeline", command, "--cache-backend", cacheBackend, "--lookback", "1y")
		cmd.Dir = repoPath

		start := time.Now()
		output, err := cmd.CombinedOutput()
		cancel()
		if err == nil && isSuccess(output, command) {
			times = append(times, time.Since(start).Seconds())
		}
	}
	return times
}

// isSuccess checks the completion marker each command prints.
func isSuccess(output []byte, command string) bool {
	if command == "timeline" {
		return bytes.Contains(output, []byte("Analysis completed in"))
	}
	return bytes.Contains(output, []byte("Analyzed")) && bytes.Contains(output, []byte("commits"))
}

func average(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes the timings to a timestamped CSV under /tmp.
func saveResults(rows []benchmarkRow) error {
	filename := fmt.Sprintf("/tmp/codeline_benchmark_%s.csv", time.Now().Format("20060102_150405"))
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"repo", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{row.repo, row.command, row.noCache, row.cold, row.warm}); err != nil {
			return err
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

func printSummary(rows []benchmarkRow) {
	for _, command := range []string{"affinity", "timeline"} {
		fmt.Printf("%s:\n", command)
		for _, row := range rows {
			if row.command == command {
				fmt.Printf("  %-12s no-cache %s, cold %s, warm %s\n", row.repo, row.noCache, row.cold, row.warm)
			}
		}
	}
}
