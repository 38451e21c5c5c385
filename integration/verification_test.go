//go:build integration

// Package integration contains integration tests for codeline.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
// Or use: make test-integration
package integration

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAffinityPairVerification runs codeline affinity with CSV output and
// verifies each pair's co-change count against git log for both files.
func TestAffinityPairVerification(t *testing.T) {
	// Skip if not in a git repo
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	// Get current repo path
	repoPath, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	require.NoError(t, err)
	repoDir := strings.TrimSpace(string(repoPath))

	// Run codeline affinity with CSV output on stdout
	cmd := exec.Command("./codeline", "affinity", "--output", "csv", "--start", "2000-01-01")
	cmd.Dir = repoDir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	err = cmd.Run()
	require.NoError(t, err)

	pairs := parseAffinityCSV(t, stdout.String())
	if len(pairs) == 0 {
		t.Skip("no co-change pairs in this repository")
	}

	// A pair cannot co-change more often than either file changes on its own.
	for _, pair := range pairs {
		t.Run(pair.fileA+"+"+pair.fileB, func(t *testing.T) {
			commitsA := gitCommitCount(t, repoDir, pair.fileA)
			commitsB := gitCommitCount(t, repoDir, pair.fileB)

			assert.LessOrEqual(t, pair.commits, commitsA,
				"pair commits exceed total commits of %s", pair.fileA)
			assert.LessOrEqual(t, pair.commits, commitsB,
				"pair commits exceed total commits of %s", pair.fileB)
			assert.Positive(t, pair.commits)
		})
	}
}

type affinityPair struct {
	fileA   string
	fileB   string
	commits int
}

// parseAffinityCSV extracts pairs from the affinity CSV output
// (rank,file_a,file_b,score,strength,commits).
func parseAffinityCSV(t *testing.T, output string) []affinityPair {
	var pairs []affinityPair

	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i, line := range lines {
		if i == 0 || line == "" {
			continue // Header
		}
		parts := strings.Split(line, ",")
		if len(parts) < 6 {
			continue
		}
		commits, err := strconv.Atoi(parts[5])
		require.NoError(t, err, "malformed commits column in %q", line)
		pairs = append(pairs, affinityPair{
			fileA:   parts[1],
			fileB:   parts[2],
			commits: commits,
		})
	}

	return pairs
}

// gitCommitCount counts commits touching the given file.
func gitCommitCount(t *testing.T, repoDir, file string) int {
	gitCmd := exec.Command("git", "log", "--oneline", "--", file)
	gitCmd.Dir = repoDir
	gitOutput, err := gitCmd.Output()
	if err != nil {
		t.Skipf("git log failed for %s: %v", file, err)
	}
	gitLines := strings.Split(strings.TrimSpace(string(gitOutput)), "\n")
	if gitLines[0] == "" {
		return 0
	}
	return len(gitLines)
}
