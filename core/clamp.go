package core

import (
	"time"

	"github.com/codelinehq/codeline/schema"
)

// ClampChain intersects a chain with the inclusive window [windowStart,
// windowEnd]. The second return is false when the chain's span has no overlap
// with the window. Commits outside the window are dropped; the truncation
// flags record removed material. A chain whose commits all fall outside the
// window but whose span straddles it survives with zero interior commits and
// both flags set, so the renderer can draw a thin continuation bar.
func ClampChain(chain schema.Chain, windowStart, windowEnd time.Time) (schema.ClampedChain, bool) {
	return clampWindow(schema.ClampedChain{
		Commits:     chain.Commits,
		Start:       chain.Start,
		End:         chain.End,
		Head:        chain.Head(),
		Tail:        chain.Tail(),
		BranchPoint: chain.BranchPoint,
	}, windowStart, windowEnd)
}

// ReclampChain applies a window to an already-clamped chain. Clamping to the
// same window is a no-op, so repeated clamping is stable.
func ReclampChain(chain schema.ClampedChain, windowStart, windowEnd time.Time) (schema.ClampedChain, bool) {
	return clampWindow(chain, windowStart, windowEnd)
}

// ClampChains clamps every chain to the window, dropping non-overlapping ones.
func ClampChains(chains []schema.Chain, windowStart, windowEnd time.Time) []schema.ClampedChain {
	var clamped []schema.ClampedChain
	for _, chain := range chains {
		if cc, ok := ClampChain(chain, windowStart, windowEnd); ok {
			clamped = append(clamped, cc)
		}
	}
	return clamped
}

func clampWindow(cc schema.ClampedChain, windowStart, windowEnd time.Time) (schema.ClampedChain, bool) {
	if cc.End.Before(windowStart) || cc.Start.After(windowEnd) {
		return schema.ClampedChain{}, false
	}

	out := cc
	var kept []schema.ChainCommit
	for _, c := range cc.Commits {
		if c.Timestamp.Before(windowStart) || c.Timestamp.After(windowEnd) {
			continue
		}
		kept = append(kept, c)
	}
	out.Commits = kept

	if cc.Start.Before(windowStart) {
		out.Start = windowStart
		out.TruncatedStart = true
	}
	if cc.End.After(windowEnd) {
		out.End = windowEnd
		out.TruncatedEnd = true
	}
	return out, true
}
