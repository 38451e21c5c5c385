package core

import "fmt"

// DuplicateCommitError indicates the same commit identity appeared twice with
// conflicting content. Graph construction aborts when this happens.
type DuplicateCommitError struct {
	Hash string
}

func (e *DuplicateCommitError) Error() string {
	return fmt.Sprintf("duplicate commit %s with conflicting content", e.Hash)
}

// CyclicHistoryError indicates a commit was revisited mid-walk during chain
// traversal. It is fatal for the affected chain only; other chains continue.
type CyclicHistoryError struct {
	Hash string
}

func (e *CyclicHistoryError) Error() string {
	return fmt.Sprintf("cyclic ancestry detected at commit %s", e.Hash)
}

// InvalidTargetError indicates a caller passed a non-positive node-count
// target to the threshold tuner.
type InvalidTargetError struct {
	Target int
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("target node count must be positive (received %d)", e.Target)
}
