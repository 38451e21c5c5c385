package core

import (
	"errors"
	"testing"
	"time"

	"github.com/codelinehq/codeline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// testCommit builds a commit with single-line changes to each file,
// timestamped at an hourly offset from the test epoch.
func testCommit(hash string, parents []string, hourOffset int, files ...string) schema.Commit {
	fileMap := make(map[string]schema.FileChange, len(files))
	for _, f := range files {
		fileMap[f] = schema.FileChange{Insertions: 1}
	}
	return schema.Commit{
		Hash:      hash,
		Parents:   parents,
		Author:    "Test Author",
		Timestamp: testEpoch.Add(time.Duration(hourOffset) * time.Hour),
		Files:     fileMap,
	}
}

func TestBuildGraph(t *testing.T) {
	commits := []schema.Commit{
		testCommit("c2", []string{"c1"}, 2, "a.go"),
		testCommit("c1", nil, 1, "a.go"),
		testCommit("c3", []string{"c2", "c0"}, 3, "b.go"),
	}

	g, err := BuildGraph(commits)
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"c2"}, g.Children("c1"))
	assert.Equal(t, []string{"c3"}, g.Children("c2"))
	assert.Empty(t, g.Children("c3"))

	c2, ok := g.Commit("c2")
	require.True(t, ok)
	assert.Equal(t, []string{"c1"}, c2.Parents)

	// c0 is referenced but never seen: a history horizon, not an error.
	assert.True(t, g.IsExternal("c0"))
	assert.False(t, g.IsExternal("c1"))

	assert.Equal(t, []string{"c3"}, g.Heads())
	assert.Equal(t, []string{"c1", "c2", "c3"}, g.Hashes())
}

func TestBuildGraphOrderIndependent(t *testing.T) {
	commits := []schema.Commit{
		testCommit("c1", nil, 1, "a.go"),
		testCommit("c2", []string{"c1"}, 2, "a.go"),
	}
	reversed := []schema.Commit{commits[1], commits[0]}

	g1, err := BuildGraph(commits)
	require.NoError(t, err)
	g2, err := BuildGraph(reversed)
	require.NoError(t, err)

	assert.Equal(t, g1.Hashes(), g2.Hashes())
	assert.Equal(t, g1.Children("c1"), g2.Children("c1"))
}

func TestBuildGraphDuplicates(t *testing.T) {
	identical := testCommit("c1", nil, 1, "a.go")
	g, err := BuildGraph([]schema.Commit{identical, identical})
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())

	conflicting := testCommit("c1", nil, 1, "b.go")
	_, err = BuildGraph([]schema.Commit{identical, conflicting})
	var dupErr *DuplicateCommitError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "c1", dupErr.Hash)
}

func TestBuildGraphEmpty(t *testing.T) {
	g, err := BuildGraph(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Heads())
}
