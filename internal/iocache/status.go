package iocache

import (
	"fmt"

	"github.com/codelinehq/codeline/schema"
)

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Cache Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		fmt.Printf("Last Entry: %s\n", status.LastEntryTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Entry: %s\n", status.OldestEntryTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintRunRecords prints a compact listing of recorded analysis runs.
func PrintRunRecords(records []schema.RunRecord) {
	if len(records) == 0 {
		fmt.Println("No analysis runs recorded.")
		return
	}
	for _, record := range records {
		duration := "-"
		if record.RunDurationMs != nil {
			duration = fmt.Sprintf("%dms", *record.RunDurationMs)
		}
		fmt.Printf("#%d %s started %s duration %s commits %d\n",
			record.RunID, record.Operation,
			record.StartTime.Format("2006-01-02 15:04:05"),
			duration, record.CommitCount)
	}
}

// PrintRunStatus prints run store status information.
func PrintRunStatus(status schema.RunStatus) {
	fmt.Printf("Run Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Printf("Last Run ID: %d\n", status.LastRunID)
		fmt.Printf("Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
	}
}
