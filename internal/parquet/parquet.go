// Package parquet provides data structures and functions for exporting codeline
// analysis data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/codelinehq/codeline/schema"
)

// FilePair represents a single co-change affinity pair for export.
type FilePair struct {
	// FileA is the lexicographically smaller path of the pair
	FileA string `parquet:"file_a,snappy"`

	// FileB is the lexicographically larger path of the pair
	FileB string `parquet:"file_b,snappy"`

	// Score is the accumulated co-change affinity mass
	Score float64 `parquet:"score,snappy"`

	// Commits is the number of commits that touched both files
	Commits int32 `parquet:"commits,snappy"`
}

// TimelineRow represents a single stacked chain row for export.
type TimelineRow struct {
	// Slot is the display lane the chain was assigned to
	Slot int32 `parquet:"slot,snappy"`

	// Head is the hash of the oldest commit in the chain
	Head string `parquet:"head,snappy"`

	// Tail is the hash of the newest commit in the chain
	Tail string `parquet:"tail,snappy"`

	// Start is the clamped start of the chain lifespan
	Start time.Time `parquet:"start,snappy"`

	// End is the clamped end of the chain lifespan
	End time.Time `parquet:"end,snappy"`

	// CommitCount is the number of commits inside the window
	CommitCount int32 `parquet:"commit_count,snappy"`

	// TruncatedStart marks a chain cut off at the window start
	TruncatedStart bool `parquet:"truncated_start,snappy"`

	// TruncatedEnd marks a chain cut off at the window end
	TruncatedEnd bool `parquet:"truncated_end,snappy"`

	// BranchPoint is the commit where the chain forked off (nullable)
	BranchPoint *string `parquet:"branch_point,optional,snappy"`
}

// AnalysisRun represents a single codeline analysis run with metadata.
// This struct maps to the codeline_analysis_runs database table.
type AnalysisRun struct {
	// RunID is the unique identifier for this analysis run
	RunID int64 `parquet:"run_id,snappy"`

	// Operation names the analysis mode that produced the run
	Operation string `parquet:"operation,snappy"`

	// StartTime is when the analysis began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the analysis completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the analysis run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// CommitCount is the number of commits processed in this run
	CommitCount int32 `parquet:"commit_count,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// WriteAffinityParquet writes a slice of FilePair structs to a Parquet file.
func WriteAffinityParquet(data []FilePair, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteTimelineParquet writes a slice of TimelineRow structs to a Parquet file.
func WriteTimelineParquet(data []TimelineRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes records to a Parquet file using struct schema inference.
// The schema is automatically derived from the struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertFilePairs converts schema.FileAffinity to FilePair for Parquet export.
func ConvertFilePairs(pairs []schema.FileAffinity) []FilePair {
	result := make([]FilePair, len(pairs))
	for i, pair := range pairs {
		result[i] = FilePair{
			FileA:   pair.Pair.A,
			FileB:   pair.Pair.B,
			Score:   pair.Score,
			Commits: int32(pair.Commits),
		}
	}
	return result
}

// ConvertTimelineRows converts schema.TimelineRow to TimelineRow for Parquet export.
func ConvertTimelineRows(rows []schema.TimelineRow) []TimelineRow {
	result := make([]TimelineRow, len(rows))
	for i, row := range rows {
		var branchPoint *string
		if row.BranchPoint != "" {
			bp := row.BranchPoint
			branchPoint = &bp
		}
		result[i] = TimelineRow{
			Slot:           int32(row.Slot),
			Head:           row.Head,
			Tail:           row.Tail,
			Start:          row.Start,
			End:            row.End,
			CommitCount:    int32(len(row.Commits)),
			TruncatedStart: row.TruncatedStart,
			TruncatedEnd:   row.TruncatedEnd,
			BranchPoint:    branchPoint,
		}
	}
	return result
}

// ConvertRunRecords converts schema.RunRecord to AnalysisRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			RunID:         record.RunID,
			Operation:     record.Operation,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			CommitCount:   record.CommitCount,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}
