package core

import (
	"sort"
	"time"

	"github.com/codelinehq/codeline/schema"
)

// StackChains assigns each clamped chain a vertical slot so that no two
// chains sharing a slot overlap in time. Chains are taken in start order
// (ties broken by head identity) and greedily placed in the lowest-numbered
// slot whose occupant ended at or before the chain's start, opening a new
// slot when none is free. Treating chains as closed intervals, this uses
// exactly as many slots as the peak number of simultaneously active chains.
// Zero-duration chains occupy and immediately release a slot.
func StackChains(chains []schema.ClampedChain) []schema.TimelineRow {
	ordered := make([]schema.ClampedChain, len(chains))
	copy(ordered, chains)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].Start.Before(ordered[j].Start)
		}
		return ordered[i].Head < ordered[j].Head
	})

	var slotEnds []time.Time
	rows := make([]schema.TimelineRow, 0, len(ordered))
	for _, chain := range ordered {
		slot := -1
		for i, end := range slotEnds {
			if !end.After(chain.Start) {
				slot = i
				break
			}
		}
		if slot < 0 {
			slot = len(slotEnds)
			slotEnds = append(slotEnds, chain.End)
		} else {
			slotEnds[slot] = chain.End
		}
		rows = append(rows, schema.TimelineRow{ClampedChain: chain, Slot: slot})
	}
	return rows
}
