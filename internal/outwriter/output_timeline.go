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

// PrintTimelineResults outputs the timeline results, dispatching based on the output format configured.
func PrintTimelineResults(result *schema.TimelineResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForTimeline(w, result)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for parquet output")
		}
		records := parquet.ConvertTimelineRows(result.Rows)
		if err := parquet.WriteTimelineParquet(records, cfg.OutputFile); err != nil {
			return err
		}
		fmt.Printf("Wrote %d timeline rows to: %s\n", len(records), cfg.OutputFile)
		return nil
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTimelineTable(result, cfg, duration, w)
		}, "Wrote table")
	}
}

// writeTimelineTable generates and writes the human-readable table.
func writeTimelineTable(result *schema.TimelineResult, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Slot", "Head", "Start", "End", "Commits", "Clamped", "Branch Point"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, row := range result.Rows {
		data = append(data, []string{
			strconv.Itoa(row.Slot),
			schema.ShortHash(row.Head),
			row.Start.Format(contract.DateOnlyFormat),
			row.End.Format(contract.DateOnlyFormat),
			strconv.Itoa(len(row.Commits)),
			formatClampFlags(row.ClampedChain),
			formatBranchPoint(row.BranchPoint),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Stacked %d chains into %d slots over %s to %s\n",
		result.ChainCount, result.SlotCount,
		result.WindowStart.Format(contract.DateOnlyFormat),
		result.WindowEnd.Format(contract.DateOnlyFormat)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Analysis completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// formatClampFlags renders the truncation flags as a compact marker.
func formatClampFlags(chain schema.ClampedChain) string {
	switch {
	case chain.TruncatedStart && chain.TruncatedEnd:
		return "<>"
	case chain.TruncatedStart:
		return "<"
	case chain.TruncatedEnd:
		return ">"
	default:
		return ""
	}
}

// formatBranchPoint renders the branch point hash, or a dash for root chains.
func formatBranchPoint(branchPoint string) string {
	if branchPoint == "" {
		return "-"
	}
	return schema.ShortHash(branchPoint)
}

// writeCSVResultsForTimeline writes the timeline results in CSV format.
func writeCSVResultsForTimeline(w io.Writer, result *schema.TimelineResult) error {
	header := []string{
		"slot",
		"head",
		"tail",
		"start",
		"end",
		"commit_count",
		"truncated_start",
		"truncated_end",
		"branch_point",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, row := range result.Rows {
			rec := []string{
				strconv.Itoa(row.Slot),
				row.Head,
				row.Tail,
				row.Start.Format(contract.DateTimeFormat),
				row.End.Format(contract.DateTimeFormat),
				strconv.Itoa(len(row.Commits)),
				strconv.FormatBool(row.TruncatedStart),
				strconv.FormatBool(row.TruncatedEnd),
				row.BranchPoint,
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
