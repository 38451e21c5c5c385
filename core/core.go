// Package core has core logic for commit graphs, affinity scoring and chain timelines.
package core

import (
	"context"
	"time"

	"github.com/codelinehq/codeline/internal/chart"
	"github.com/codelinehq/codeline/internal/contract"
	"github.com/codelinehq/codeline/internal/iocache"
	"github.com/codelinehq/codeline/internal/outwriter"
	"github.com/codelinehq/codeline/schema"
)

// ExecutorFunc defines the function signature for executing different analysis modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// ExecuteAffinity runs the co-change affinity analysis and prints results to stdout.
// It serves as the main entry point for the 'affinity' mode.
func ExecuteAffinity(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	client := contract.NewLocalGitClient()
	runID := beginRun("affinity", cfg, start)
	result, err := cachedAffinityResult(ctx, cfg, client, iocache.Manager)
	if err != nil {
		return err
	}
	endRun(runID, result.Commits)
	duration := time.Since(start)
	return outwriter.PrintAffinityResults(result, cfg, duration)
}

// ExecuteTimeline runs the chain timeline analysis and prints results to stdout.
// It serves as the main entry point for the 'timeline' mode.
func ExecuteTimeline(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	client := contract.NewLocalGitClient()
	runID := beginRun("timeline", cfg, start)
	result, err := runTimelineCore(ctx, cfg, client)
	if err != nil {
		return err
	}
	endRun(runID, result.ChainCount)
	duration := time.Since(start)
	return outwriter.PrintTimelineResults(result, cfg, duration)
}

// ExecuteChart runs both analyses and renders them as an HTML dashboard.
// It serves as the main entry point for the 'chart' mode.
func ExecuteChart(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	client := contract.NewLocalGitClient()
	runID := beginRun("chart", cfg, start)
	affinity, err := cachedAffinityResult(ctx, cfg, client, iocache.Manager)
	if err != nil {
		return err
	}
	timeline, err := runTimelineCore(ctx, cfg, client)
	if err != nil {
		return err
	}
	endRun(runID, affinity.Commits)
	return chart.WriteChartPage(affinity, timeline, cfg)
}

// GetAffinityResults computes the affinity result without printing, for
// programmatic consumers such as the MCP server.
func GetAffinityResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.AffinityResult, error) {
	client := contract.NewLocalGitClient()
	return cachedAffinityResult(ctx, cfg, client, mgr)
}

// GetTimelineResults computes the timeline result without printing.
func GetTimelineResults(ctx context.Context, cfg *contract.Config) (*schema.TimelineResult, error) {
	client := contract.NewLocalGitClient()
	return runTimelineCore(ctx, cfg, client)
}

// runAffinityCore fetches the commit log and computes the full affinity output:
// pair scores, per-file totals and the tuned display threshold.
func runAffinityCore(ctx context.Context, cfg *contract.Config, client contract.GitClient) (*schema.AffinityResult, error) {
	commits, err := client.GetCommitLog(ctx, cfg.RepoPath, cfg.GetAnalysisStartTime(), cfg.GetAnalysisEndTime())
	if err != nil {
		return nil, err
	}
	filtered := contract.FilterCommitFiles(commits, cfg.Excludes)

	// Surface duplicate commit hashes with conflicting content early.
	if _, err := BuildGraph(filtered); err != nil {
		return nil, err
	}

	pairs := CalculateAffinities(filtered)
	threshold, err := IdealThreshold(pairs, cfg.TargetNodes, DefaultTunerIterations, cfg.TunerTolerance)
	if err != nil {
		return nil, err
	}

	fileSet := make(map[string]struct{})
	for _, commit := range filtered {
		for path := range commit.Files {
			fileSet[path] = struct{}{}
		}
	}

	return &schema.AffinityResult{
		Pairs:     pairs,
		TopFiles:  TopFilesByAffinity(pairs, cfg.ResultLimit),
		Threshold: threshold,
		Commits:   len(filtered),
		FileCount: len(fileSet),
	}, nil
}

// runTimelineCore fetches the commit log, extracts linear chains from the commit
// graph and stacks them into non-overlapping display slots.
func runTimelineCore(ctx context.Context, cfg *contract.Config, client contract.GitClient) (*schema.TimelineResult, error) {
	windowStart := cfg.GetAnalysisStartTime()
	windowEnd := cfg.GetAnalysisEndTime()

	commits, err := client.GetCommitLog(ctx, cfg.RepoPath, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	filtered := contract.FilterCommitFiles(commits, cfg.Excludes)

	g, err := BuildGraph(filtered)
	if err != nil {
		return nil, err
	}

	chains, err := ExtractChains(g)
	if err != nil {
		// Cyclic parent links abort their own walk; the remaining chains are intact.
		contract.LogWarn("skipped chains with cyclic history", err)
	}

	clamped := ClampChains(chains, windowStart, windowEnd)
	rows := StackChains(clamped)

	slotCount := 0
	for _, row := range rows {
		if row.Slot+1 > slotCount {
			slotCount = row.Slot + 1
		}
	}

	return &schema.TimelineResult{
		Rows:        rows,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		SlotCount:   slotCount,
		ChainCount:  len(rows),
	}, nil
}

// beginRun records the start of an analysis run. Failures are non-fatal.
func beginRun(operation string, cfg *contract.Config, start time.Time) int64 {
	runs := iocache.Manager.GetRunStore()
	if runs == nil {
		return 0
	}
	params := map[string]any{
		"repo":         cfg.RepoPath,
		"limit":        cfg.ResultLimit,
		"target-nodes": cfg.TargetNodes,
		"start":        cfg.GetAnalysisStartTime().Format(contract.DateTimeFormat),
		"end":          cfg.GetAnalysisEndTime().Format(contract.DateTimeFormat),
	}
	runID, err := runs.BeginRun(operation, start, params)
	if err != nil {
		contract.LogWarn("failed to record analysis run", err)
		return 0
	}
	return runID
}

// endRun records the completion of an analysis run. Failures are non-fatal.
func endRun(runID int64, commitCount int) {
	runs := iocache.Manager.GetRunStore()
	if runs == nil || runID == 0 {
		return
	}
	if err := runs.EndRun(runID, time.Now(), commitCount); err != nil {
		contract.LogWarn("failed to finalize analysis run", err)
	}
}
