package schema

// FilePair is an unordered pair of file paths, stored in lexicographic order
// so that the same two files always map to the same key.
type FilePair struct {
	A string `json:"file_a"`
	B string `json:"file_b"`
}

// NewFilePair builds the canonical (sorted) pair key for two file paths.
func NewFilePair(x, y string) FilePair {
	if y < x {
		x, y = y, x
	}
	return FilePair{A: x, B: y}
}

// FileAffinity is the accumulated co-change score for one file pair.
// Score is the raw additive value; it is only normalized to [0,1] when a
// caller asks for relative strength.
type FileAffinity struct {
	Pair    FilePair `json:"pair"`
	Score   float64  `json:"score"`
	Commits int      `json:"commits"` // Number of commits that contributed to this pair
}

// FileTotal is a file path with its total affinity across all pairs.
type FileTotal struct {
	Path  string  `json:"path"`
	Total float64 `json:"total"`
}

// AffinityThreshold is the tuner's output: a score cutoff plus the node count
// realized at that cutoff.
type AffinityThreshold struct {
	Cutoff    float64 `json:"cutoff"`
	NodeCount int     `json:"node_count"`
}

// AffinityResult bundles everything the affinity pipeline produces for one
// time window. It is the unit stored in the window cache, so every field must
// round-trip through JSON.
type AffinityResult struct {
	Pairs     []FileAffinity    `json:"pairs"`      // Sorted by score descending, ties by pair key
	TopFiles  []FileTotal       `json:"top_files"`  // Ranked by total affinity, ties by path
	Threshold AffinityThreshold `json:"threshold"`  // Tuned cutoff for the configured target
	Commits   int               `json:"commits"`    // Commits that fed the calculation
	FileCount int               `json:"file_count"` // Distinct files appearing in any pair
}
