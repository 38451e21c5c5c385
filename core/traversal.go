package core

import (
	"errors"

	"github.com/codelinehq/codeline/schema"
)

// walkSeed is a pending backward walk: the commit to start from and the
// boundary commit (merge) that spawned it, if any.
type walkSeed struct {
	start    string
	boundary string
}

// ExtractChains decomposes the graph into maximal linear chains. Every branch
// tip seeds a backward walk through single-parent links; walks end at history
// roots and horizons, at merges (whose parents each seed an independent
// chain), and at commits already claimed by an earlier walk (branch points,
// kept as a shared boundary marker rather than re-walked).
//
// Each commit lands in exactly one chain's interior. A commit revisited by
// its own walk means the input ancestry is cyclic; that walk is abandoned
// with a CyclicHistoryError while the remaining walks continue, and all
// collected errors are joined into the returned error.
func ExtractChains(g *CommitGraph) ([]schema.Chain, error) {
	// claimed maps a commit to the index of the walk that owns its interior.
	claimed := make(map[string]int)
	var chains []schema.Chain
	var errs []error

	seeds := make([]walkSeed, 0, 8)
	for _, head := range g.Heads() {
		seeds = append(seeds, walkSeed{start: head})
	}

	walkIdx := 0
	for len(seeds) > 0 {
		seed := seeds[0]
		seeds = seeds[1:]
		idx := walkIdx
		walkIdx++

		var collected []schema.ChainCommit
		boundary := seed.boundary
		cur := seed.start
		failed := false

		for {
			if owner, ok := claimed[cur]; ok {
				if owner == idx {
					errs = append(errs, &CyclicHistoryError{Hash: cur})
					failed = true
					break
				}
				// Claimed by an earlier walk: shared branch point.
				boundary = cur
				break
			}
			c, ok := g.Commit(cur)
			if !ok {
				break // history horizon
			}
			claimed[cur] = idx
			collected = append(collected, schema.ChainCommit{Hash: c.Hash, Timestamp: c.Timestamp})
			if len(c.Parents) == 0 {
				break // history root
			}
			if c.IsMerge() {
				for _, parent := range c.Parents {
					seeds = append(seeds, walkSeed{start: parent, boundary: cur})
				}
				break
			}
			cur = c.Parents[0]
		}

		if failed || len(collected) == 0 {
			continue
		}

		// Walks collect newest-first; chains read oldest-first.
		for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
			collected[i], collected[j] = collected[j], collected[i]
		}
		chains = append(chains, schema.Chain{
			Commits:     collected,
			Start:       collected[0].Timestamp,
			End:         collected[len(collected)-1].Timestamp,
			BranchPoint: boundary,
		})
	}

	return chains, errors.Join(errs...)
}
