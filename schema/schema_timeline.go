package schema

import "time"

// ChainCommit is one commit inside a chain: just enough identity and time
// information for clamping and rendering.
type ChainCommit struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
}

// Chain is a maximal run of commits connected by single-parent ancestry,
// ordered oldest to newest. It ends at a history root or horizon, at a merge,
// or at a commit already claimed by another chain (a branch point).
type Chain struct {
	Commits     []ChainCommit `json:"commits"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	BranchPoint string        `json:"branch_point,omitempty"` // Shared boundary commit, if any
}

// Head returns the identity of the chain's oldest commit. It doubles as the
// chain's stable identity for deterministic ordering.
func (c Chain) Head() string {
	if len(c.Commits) == 0 {
		return ""
	}
	return c.Commits[0].Hash
}

// Tail returns the identity of the chain's newest commit.
func (c Chain) Tail() string {
	if len(c.Commits) == 0 {
		return ""
	}
	return c.Commits[len(c.Commits)-1].Hash
}

// ClampedChain is a Chain restricted to a time window. Commits outside the
// window are dropped; the truncation flags record that material was removed so
// the renderer can draw open-ended bars. A chain that straddles the window
// with no commit inside it survives with zero interior commits and both flags
// set.
type ClampedChain struct {
	Commits        []ChainCommit `json:"commits"`
	Start          time.Time     `json:"start"`
	End            time.Time     `json:"end"`
	TruncatedStart bool          `json:"truncated_start"`
	TruncatedEnd   bool          `json:"truncated_end"`
	Head           string        `json:"head"` // Oldest commit of the original chain
	Tail           string        `json:"tail"` // Newest commit of the original chain
	BranchPoint    string        `json:"branch_point,omitempty"`
}

// CommitHashes returns the ordered commit identities remaining in the window.
func (c ClampedChain) CommitHashes() []string {
	hashes := make([]string, len(c.Commits))
	for i, cc := range c.Commits {
		hashes[i] = cc.Hash
	}
	return hashes
}

// TimelineRow is a clamped chain with its assigned vertical slot. Rows that
// share a slot never overlap in time.
type TimelineRow struct {
	ClampedChain
	Slot int `json:"slot"`
}

// TimelineResult is the full layout for one requested window.
type TimelineResult struct {
	Rows        []TimelineRow `json:"rows"`
	WindowStart time.Time     `json:"window_start"`
	WindowEnd   time.Time     `json:"window_end"`
	SlotCount   int           `json:"slot_count"` // Highest slot index + 1
	ChainCount  int           `json:"chain_count"`
}
