package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/codelinehq/codeline/internal/contract"
	"github.com/codelinehq/codeline/internal/parquet"
	"github.com/codelinehq/codeline/schema"
)

// PrintAffinityResults outputs the affinity results, dispatching based on the output format configured.
func PrintAffinityResults(result *schema.AffinityResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForAffinity(w, result, cfg)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForAffinity(w, result, cfg, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for parquet output")
		}
		records := parquet.ConvertFilePairs(rankedPairs(result, cfg.ResultLimit))
		if err := parquet.WriteAffinityParquet(records, cfg.OutputFile); err != nil {
			return err
		}
		fmt.Printf("Wrote %d pair records to: %s\n", len(records), cfg.OutputFile)
		return nil
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAffinityTable(result, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
}

// rankedPairs returns the top pairs by score, respecting the result limit.
func rankedPairs(result *schema.AffinityResult, limit int) []schema.FileAffinity {
	if limit <= 0 || limit >= len(result.Pairs) {
		return result.Pairs
	}
	return result.Pairs[:limit]
}

// maxPairScore returns the highest pair score. Pairs arrive sorted by score,
// so this is the first entry.
func maxPairScore(pairs []schema.FileAffinity) float64 {
	if len(pairs) == 0 {
		return 0
	}
	return pairs[0].Score
}

// relativeStrength scales a raw score into [0, 1] against the strongest pair.
func relativeStrength(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return score / maxScore
}

// writeAffinityTable generates and writes the human-readable table.
func writeAffinityTable(result *schema.AffinityResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Rank", "File A", "File B", "Score", "Strength"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	maxScore := maxPairScore(result.Pairs)
	maxPathWidth := getMaxTablePathWidth(cfg)

	var data [][]string
	for i, pair := range rankedPairs(result, cfg.ResultLimit) {
		relative := relativeStrength(pair.Score, maxScore)
		strength := contract.GetPlainStrength(relative)
		if cfg.UseColors {
			strength = contract.GetColorStrength(relative)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(pair.Pair.A, maxPathWidth),
			contract.TruncatePath(pair.Pair.B, maxPathWidth),
			fmtFloat(pair.Score),
			strength,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	threshold := result.Threshold
	if _, err := fmt.Fprintf(writer, "Tuned cutoff %s keeps %d files in the network\n",
		fmtFloat(threshold.Cutoff), threshold.NodeCount); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Analyzed %d commits across %d files in %v. Cache backend: %s\n",
		result.Commits, result.FileCount, duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForAffinity writes the affinity results in CSV format.
func writeCSVResultsForAffinity(w io.Writer, result *schema.AffinityResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	header := []string{
		"rank",
		"file_a",
		"file_b",
		"score",
		"strength",
		"commits",
	}
	maxScore := maxPairScore(result.Pairs)
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, pair := range rankedPairs(result, cfg.ResultLimit) {
			rec := []string{
				strconv.Itoa(i + 1),
				pair.Pair.A,
				pair.Pair.B,
				fmtFloat(pair.Score),
				contract.GetPlainStrength(relativeStrength(pair.Score, maxScore)),
				strconv.Itoa(pair.Commits),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONResultsForAffinity writes the affinity results in JSON format.
func writeJSONResultsForAffinity(w io.Writer, result *schema.AffinityResult, cfg *contract.Config) error {
	// Prepare the data structure for JSON with rank and strength added
	type JSONPairResult struct {
		Rank     int    `json:"rank"`
		Strength string `json:"strength"`
		schema.FileAffinity
	}

	maxScore := maxPairScore(result.Pairs)
	ranked := rankedPairs(result, cfg.ResultLimit)
	pairs := make([]JSONPairResult, len(ranked))
	for i, pair := range ranked {
		pairs[i] = JSONPairResult{
			Rank:         i + 1,
			Strength:     contract.GetPlainStrength(relativeStrength(pair.Score, maxScore)),
			FileAffinity: pair,
		}
	}

	output := struct {
		Pairs     []JSONPairResult         `json:"pairs"`
		TopFiles  []schema.FileTotal       `json:"top_files"`
		Threshold schema.AffinityThreshold `json:"threshold"`
		Commits   int                      `json:"commits"`
		FileCount int                      `json:"file_count"`
	}{
		Pairs:     pairs,
		TopFiles:  result.TopFiles,
		Threshold: result.Threshold,
		Commits:   result.Commits,
		FileCount: result.FileCount,
	}

	return writeJSON(w, output)
}
