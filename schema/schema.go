// Package schema has configs, models and global variables for all parts of codeline.
package schema

import "time"

// Commit is a single commit record as reported by the version-control
// backend. It is immutable once constructed; analytics code only reads it.
type Commit struct {
	Hash      string                // Unique commit identity
	Parents   []string              // Parent identities: 0 = root, 1 = normal, 2+ = merge
	Author    string                // Author name
	Timestamp time.Time             // Commit time, timezone-aware
	Files     map[string]FileChange // Changed file path -> change record
}

// FileChange holds the per-file change stats within one commit.
type FileChange struct {
	Insertions  int    // Lines added ("-" in numstat for binary files counts as 0)
	Deletions   int    // Lines removed
	RenamedFrom string // Previous path if git reported a rename, else empty
}

// ContentEquals reports whether two commits with the same identity carry the
// same content. Used to distinguish harmless duplicates from conflicting ones.
func (c Commit) ContentEquals(other Commit) bool {
	if c.Hash != other.Hash || c.Author != other.Author || !c.Timestamp.Equal(other.Timestamp) {
		return false
	}
	if len(c.Parents) != len(other.Parents) || len(c.Files) != len(other.Files) {
		return false
	}
	for i, p := range c.Parents {
		if other.Parents[i] != p {
			return false
		}
	}
	for path, fc := range c.Files {
		if other.Files[path] != fc {
			return false
		}
	}
	return true
}

// IsMerge reports whether the commit has two or more parents.
func (c Commit) IsMerge() bool {
	return len(c.Parents) >= 2
}
