package core

import (
	"errors"
	"testing"
	"time"

	"github.com/codelinehq/codeline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainHashes(c schema.Chain) []string {
	hashes := make([]string, len(c.Commits))
	for i, cc := range c.Commits {
		hashes[i] = cc.Hash
	}
	return hashes
}

func findChainWithHash(chains []schema.Chain, hash string) (schema.Chain, bool) {
	for _, c := range chains {
		for _, cc := range c.Commits {
			if cc.Hash == hash {
				return c, true
			}
		}
	}
	return schema.Chain{}, false
}

func TestExtractChainsLinear(t *testing.T) {
	g, err := BuildGraph([]schema.Commit{
		testCommit("c1", nil, 1, "a.go"),
		testCommit("c2", []string{"c1"}, 2, "a.go"),
		testCommit("c3", []string{"c2"}, 3, "a.go"),
	})
	require.NoError(t, err)

	chains, err := ExtractChains(g)
	require.NoError(t, err)
	require.Len(t, chains, 1)

	assert.Equal(t, []string{"c1", "c2", "c3"}, chainHashes(chains[0]))
	assert.Equal(t, testEpoch.Add(1*time.Hour), chains[0].Start)
	assert.Equal(t, testEpoch.Add(3*time.Hour), chains[0].End)
	assert.Empty(t, chains[0].BranchPoint)
}

func TestExtractChainsMerge(t *testing.T) {
	// c1 -> c2 -> c3(merge of c2 and c0); c0 is beyond the horizon.
	g, err := BuildGraph([]schema.Commit{
		testCommit("c1", nil, 1, "a.go", "b.go"),
		testCommit("c2", []string{"c1"}, 2, "a.go", "b.go"),
		testCommit("c3", []string{"c2", "c0"}, 3, "a.go", "c.go"),
	})
	require.NoError(t, err)

	chains, err := ExtractChains(g)
	require.NoError(t, err)
	require.Len(t, chains, 2)

	mergeChain, ok := findChainWithHash(chains, "c3")
	require.True(t, ok)
	assert.Equal(t, []string{"c3"}, chainHashes(mergeChain))

	lineage, ok := findChainWithHash(chains, "c2")
	require.True(t, ok)
	assert.Equal(t, []string{"c1", "c2"}, chainHashes(lineage))
	assert.Equal(t, "c3", lineage.BranchPoint)
}

func TestExtractChainsBranchPoint(t *testing.T) {
	// Two tips diverging from c2: the first walk claims the shared ancestry,
	// the second stops at the claimed commit and records it as its boundary.
	g, err := BuildGraph([]schema.Commit{
		testCommit("c1", nil, 1, "a.go"),
		testCommit("c2", []string{"c1"}, 2, "a.go"),
		testCommit("c3", []string{"c2"}, 3, "a.go"),
		testCommit("c4", []string{"c2"}, 4, "b.go"),
	})
	require.NoError(t, err)

	chains, err := ExtractChains(g)
	require.NoError(t, err)
	require.Len(t, chains, 2)

	// Heads walk in sorted order, so c3's chain claims c2 and c1 first.
	first, ok := findChainWithHash(chains, "c3")
	require.True(t, ok)
	assert.Equal(t, []string{"c1", "c2", "c3"}, chainHashes(first))

	second, ok := findChainWithHash(chains, "c4")
	require.True(t, ok)
	assert.Equal(t, []string{"c4"}, chainHashes(second))
	assert.Equal(t, "c2", second.BranchPoint)
}

func TestExtractChainsCompleteness(t *testing.T) {
	g, err := BuildGraph([]schema.Commit{
		testCommit("c1", nil, 1, "a.go"),
		testCommit("c2", []string{"c1"}, 2, "a.go"),
		testCommit("c3", []string{"c1"}, 3, "b.go"),
		testCommit("c4", []string{"c2", "c3"}, 4, "a.go", "b.go"),
		testCommit("c5", []string{"c4"}, 5, "c.go"),
	})
	require.NoError(t, err)

	chains, err := ExtractChains(g)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, c := range chains {
		for _, cc := range c.Commits {
			assert.False(t, seen[cc.Hash], "commit %s appears in two chain interiors", cc.Hash)
			seen[cc.Hash] = true
		}
	}
	for _, h := range g.Hashes() {
		assert.True(t, seen[h], "commit %s missing from every chain interior", h)
	}
}

func TestExtractChainsCyclic(t *testing.T) {
	// Manufactured cycle c1 <-> c2 with no true head; seed from the tip c3.
	g, err := BuildGraph([]schema.Commit{
		testCommit("c1", []string{"c2"}, 1, "a.go"),
		testCommit("c2", []string{"c1"}, 2, "a.go"),
		testCommit("c3", []string{"c2"}, 3, "a.go"),
	})
	require.NoError(t, err)

	_, err = ExtractChains(g)
	var cycErr *CyclicHistoryError
	require.True(t, errors.As(err, &cycErr))
}

func TestExtractChainsCyclicOthersContinue(t *testing.T) {
	// A cyclic region must not take down the healthy chain next to it.
	g, err := BuildGraph([]schema.Commit{
		testCommit("c1", []string{"c2"}, 1, "a.go"),
		testCommit("c2", []string{"c1"}, 2, "a.go"),
		testCommit("c3", []string{"c2"}, 3, "a.go"),
		testCommit("d1", nil, 1, "b.go"),
		testCommit("d2", []string{"d1"}, 2, "b.go"),
	})
	require.NoError(t, err)

	chains, err := ExtractChains(g)
	require.Error(t, err)

	healthy, ok := findChainWithHash(chains, "d2")
	require.True(t, ok)
	assert.Equal(t, []string{"d1", "d2"}, chainHashes(healthy))
}

func TestExtractChainsEmpty(t *testing.T) {
	g, err := BuildGraph(nil)
	require.NoError(t, err)
	chains, err := ExtractChains(g)
	require.NoError(t, err)
	assert.Empty(t, chains)
}
