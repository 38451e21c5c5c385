package core

import "github.com/codelinehq/codeline/schema"

// Tuner defaults. Fifty bisection steps over float64 scores converge well past
// any practical tolerance.
const (
	DefaultTargetNodes     = 15
	DefaultTunerIterations = 50
	DefaultTunerTolerance  = 2
)

// IdealThreshold finds the minimal score cutoff whose realized node count
// (distinct files in pairs scoring >= cutoff) comes as close as possible to
// target without exceeding it. The realized count is monotonically
// non-increasing in the cutoff, so a binary search over [0, maxScore] applies.
// When no cutoff can reach <= target short of emptying the graph, the cutoff
// with the smallest non-empty node count wins: a slightly crowded rendering
// beats an empty one.
func IdealThreshold(pairs []schema.FileAffinity, target, maxIterations, tolerance int) (schema.AffinityThreshold, error) {
	if target <= 0 {
		return schema.AffinityThreshold{}, &InvalidTargetError{Target: target}
	}
	if len(pairs) == 0 {
		return schema.AffinityThreshold{}, nil
	}

	maxScore := MaxScore(pairs)
	if count := NodeCountAtCutoff(pairs, 0); count <= target {
		return schema.AffinityThreshold{Cutoff: 0, NodeCount: count}, nil
	}

	lo, hi := 0.0, maxScore
	best := schema.AffinityThreshold{Cutoff: -1}
	for range maxIterations {
		mid := (lo + hi) / 2
		count := NodeCountAtCutoff(pairs, mid)
		if count > target {
			lo = mid
			continue
		}
		if best.Cutoff < 0 || mid < best.Cutoff {
			best = schema.AffinityThreshold{Cutoff: mid, NodeCount: count}
		}
		if target-count <= tolerance {
			break
		}
		hi = mid
	}
	if best.Cutoff >= 0 {
		return best, nil
	}

	// Unreachable target: even the top-scoring pairs involve more files than
	// requested. Keep them rather than return nothing.
	return schema.AffinityThreshold{Cutoff: maxScore, NodeCount: NodeCountAtCutoff(pairs, maxScore)}, nil
}

// NodeCountAtCutoff counts the distinct files appearing in at least one pair
// scoring at or above the cutoff.
func NodeCountAtCutoff(pairs []schema.FileAffinity, cutoff float64) int {
	files := make(map[string]struct{})
	for _, p := range pairs {
		if p.Score >= cutoff {
			files[p.Pair.A] = struct{}{}
			files[p.Pair.B] = struct{}{}
		}
	}
	return len(files)
}

// PairsAtCutoff filters pairs to those scoring at or above the cutoff,
// preserving input order.
func PairsAtCutoff(pairs []schema.FileAffinity, cutoff float64) []schema.FileAffinity {
	var kept []schema.FileAffinity
	for _, p := range pairs {
		if p.Score >= cutoff {
			kept = append(kept, p)
		}
	}
	return kept
}
