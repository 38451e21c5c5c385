package core

import (
	"sort"

	"github.com/codelinehq/codeline/schema"
)

// CalculateAffinities computes the co-change affinity score for every file
// pair across the input commits. A commit touching n >= 2 files contributes
// 1/(n-1) to each of its pairs, so a two-file commit adds a full point to its
// single pair while a sweeping commit spreads comparably little across many
// pairs. Scores are raw accumulated values, not normalized.
//
// Commits are accumulated in identity order regardless of input order, so the
// float results are bit-identical across runs.
func CalculateAffinities(commits []schema.Commit) []schema.FileAffinity {
	ordered := make([]schema.Commit, len(commits))
	copy(ordered, commits)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Hash < ordered[j].Hash })

	type accum struct {
		score   float64
		commits int
	}
	scores := make(map[schema.FilePair]*accum)

	for _, c := range ordered {
		n := len(c.Files)
		if n < 2 {
			continue
		}
		files := make([]string, 0, n)
		for path := range c.Files {
			files = append(files, path)
		}
		sort.Strings(files)

		weight := 1.0 / float64(n-1)
		for i := 0; i < len(files); i++ {
			for j := i + 1; j < len(files); j++ {
				pair := schema.FilePair{A: files[i], B: files[j]}
				a := scores[pair]
				if a == nil {
					a = &accum{}
					scores[pair] = a
				}
				a.score += weight
				a.commits++
			}
		}
	}

	result := make([]schema.FileAffinity, 0, len(scores))
	for pair, a := range scores {
		result = append(result, schema.FileAffinity{Pair: pair, Score: a.score, Commits: a.commits})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		if result[i].Pair.A != result[j].Pair.A {
			return result[i].Pair.A < result[j].Pair.A
		}
		return result[i].Pair.B < result[j].Pair.B
	})
	return result
}

// TotalAffinityPerFile sums each file's scores over all pairs involving it.
// The result is sorted by total descending, ties broken by path.
func TotalAffinityPerFile(pairs []schema.FileAffinity) []schema.FileTotal {
	totals := make(map[string]float64)
	for _, p := range pairs {
		totals[p.Pair.A] += p.Score
		totals[p.Pair.B] += p.Score
	}
	result := make([]schema.FileTotal, 0, len(totals))
	for path, total := range totals {
		result = append(result, schema.FileTotal{Path: path, Total: total})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Path < result[j].Path
	})
	return result
}

// TopFilesByAffinity returns the n files with the greatest total affinity.
func TopFilesByAffinity(pairs []schema.FileAffinity, n int) []schema.FileTotal {
	totals := TotalAffinityPerFile(pairs)
	if n < len(totals) {
		totals = totals[:n]
	}
	return totals
}

// MaxScore returns the largest pair score, or 0 for empty input.
func MaxScore(pairs []schema.FileAffinity) float64 {
	var maxScore float64
	for _, p := range pairs {
		if p.Score > maxScore {
			maxScore = p.Score
		}
	}
	return maxScore
}

// RelativeStrengths maps each pair to its score divided by the maximum score
// observed, yielding values in [0, 1]. Empty input yields an empty map.
func RelativeStrengths(pairs []schema.FileAffinity) map[schema.FilePair]float64 {
	result := make(map[schema.FilePair]float64, len(pairs))
	maxScore := MaxScore(pairs)
	if maxScore == 0 {
		return result
	}
	for _, p := range pairs {
		result[p.Pair] = p.Score / maxScore
	}
	return result
}
