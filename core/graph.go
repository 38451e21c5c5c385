package core

import (
	"sort"

	"github.com/codelinehq/codeline/schema"
)

// CommitGraph is a commit history keyed by identity, with derived child links.
// BuildGraph is the sole constructor and mutator; everything downstream takes
// read-only views.
type CommitGraph struct {
	commits  map[string]schema.Commit
	children map[string][]string
	external map[string]struct{}
}

// BuildGraph assembles a CommitGraph from raw commit records. Input order does
// not matter. A repeated identity with identical content is deduplicated;
// conflicting content fails with DuplicateCommitError. Parent identities that
// never appear as commits are recorded as external horizon markers, not
// errors.
func BuildGraph(records []schema.Commit) (*CommitGraph, error) {
	g := &CommitGraph{
		commits:  make(map[string]schema.Commit, len(records)),
		children: make(map[string][]string),
		external: make(map[string]struct{}),
	}
	for _, rec := range records {
		if existing, ok := g.commits[rec.Hash]; ok {
			if existing.ContentEquals(rec) {
				continue
			}
			return nil, &DuplicateCommitError{Hash: rec.Hash}
		}
		g.commits[rec.Hash] = rec
		for _, parent := range rec.Parents {
			g.children[parent] = append(g.children[parent], rec.Hash)
		}
	}
	for parent := range g.children {
		if _, ok := g.commits[parent]; !ok {
			g.external[parent] = struct{}{}
		}
		sort.Strings(g.children[parent])
	}
	return g, nil
}

// Commit looks up a commit by identity.
func (g *CommitGraph) Commit(hash string) (schema.Commit, bool) {
	c, ok := g.commits[hash]
	return c, ok
}

// Children returns the identities of a commit's direct children, sorted.
func (g *CommitGraph) Children(hash string) []string {
	return g.children[hash]
}

// IsExternal reports whether an identity was referenced as a parent but never
// seen as a commit (a history horizon).
func (g *CommitGraph) IsExternal(hash string) bool {
	_, ok := g.external[hash]
	return ok
}

// Len returns the number of commits in the graph.
func (g *CommitGraph) Len() int {
	return len(g.commits)
}

// Hashes returns all commit identities in sorted order.
func (g *CommitGraph) Hashes() []string {
	hashes := make([]string, 0, len(g.commits))
	for h := range g.commits {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	return hashes
}

// CommitList returns all commits ordered by identity. The fixed order keeps
// float accumulation downstream bit-reproducible across runs.
func (g *CommitGraph) CommitList() []schema.Commit {
	commits := make([]schema.Commit, 0, len(g.commits))
	for _, h := range g.Hashes() {
		commits = append(commits, g.commits[h])
	}
	return commits
}

// Heads returns the identities of commits with no children (branch tips),
// sorted for deterministic traversal order.
func (g *CommitGraph) Heads() []string {
	var heads []string
	for h := range g.commits {
		if len(g.children[h]) == 0 {
			heads = append(heads, h)
		}
	}
	sort.Strings(heads)
	return heads
}
