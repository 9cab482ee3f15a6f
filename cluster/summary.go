package cluster

import (
	"sort"

	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/sparsevec"
)

// Summarize computes a cluster's pruned summary vector from its member
// vectors (spec.md §4.2, "Summary (pruning) procedure").
//
// The summary is the coordinate-wise maximum weight across all members,
// then pruned by dropping the lowest-weight tokens until the retained mass
// ratio falls to (1 - summaryPruneRatio) of the total. This is the
// coordinate-wise max variant spec.md §4.2 mandates, rather than a
// frequency-sort alternative (see DESIGN.md, "Open Question decisions") —
// only the max variant preserves the upper-bound invariant (spec.md §8,
// invariant 5).
//
// A summaryPruneRatio of 0 keeps every token in the coordinate-wise max.
func Summarize(members []*sparsevec.Vector, summaryPruneRatio float32) *sparsevec.Vector {
	maxByToken := make(map[model.Token]byte)
	for _, v := range members {
		if v == nil {
			continue
		}
		for _, it := range v.Items {
			if cur, ok := maxByToken[it.Token]; !ok || it.Weight > cur {
				maxByToken[it.Token] = it.Weight
			}
		}
	}
	if len(maxByToken) == 0 {
		return &sparsevec.Vector{}
	}

	type tw struct {
		token  model.Token
		weight byte
	}
	entries := make([]tw, 0, len(maxByToken))
	var total int64
	for t, w := range maxByToken {
		entries = append(entries, tw{t, w})
		total += int64(w)
	}
	// Sort by weight descending (ties broken by ascending token, for
	// deterministic output and stable byte-equal round-trips, spec.md §8
	// invariant 8).
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return entries[i].token < entries[j].token
	})

	threshold := float64(1-summaryPruneRatio) * float64(total)
	var cum int64
	kept := make([]sparsevec.Item, 0, len(entries))
	for _, e := range entries {
		if float64(cum) >= threshold && len(kept) > 0 {
			break
		}
		kept = append(kept, sparsevec.Item{Token: e.token, Weight: e.weight})
		cum += int64(e.weight)
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Token < kept[j].Token })
	return &sparsevec.Vector{Items: kept}
}
