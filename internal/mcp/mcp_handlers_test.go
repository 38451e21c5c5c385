package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codelinehq/codeline/schema"
)

func TestAffinityResponseViewLeavesSharedResultIntact(t *testing.T) {
	result := &schema.AffinityResult{
		Pairs: []schema.FileAffinity{
			{Pair: schema.NewFilePair("a.go", "b.go"), Score: 4.0, Commits: 5},
			{Pair: schema.NewFilePair("b.go", "c.go"), Score: 2.0, Commits: 3},
			{Pair: schema.NewFilePair("c.go", "d.go"), Score: 1.0, Commits: 2},
		},
		Commits:   9,
		FileCount: 4,
	}

	view := affinityResponseView(result, 1)
	assert.Len(t, view.Pairs, 1)
	assert.Equal(t, 9, view.Commits)

	// Concurrent callers can hold the same pointer through the memoization
	// layer; the full pair list must survive one caller's limit.
	assert.Len(t, result.Pairs, 3)

	noLimit := affinityResponseView(result, 0)
	assert.Len(t, noLimit.Pairs, 3)

	overLimit := affinityResponseView(result, 100)
	assert.Len(t, overLimit.Pairs, 3)
}
