package scorer

import (
	"container/heap"
	"sort"

	"github.com/seismicdb/seismic/model"
)

// scoredDoc is one entry in the top-k min-heap.
type scoredDoc struct {
	docID model.DocID
	score int32
}

// scoreHeap is a min-heap of scoredDoc, bounded to a fixed capacity k
// (spec.md §4.7): once full, its root is the lowest-scoring member, which
// doubles as the pruning threshold.
type scoreHeap struct {
	items []scoredDoc
	cap   int
}

func newScoreHeap(k int) *scoreHeap {
	h := &scoreHeap{cap: k}
	heap.Init(h)
	return h
}

// Len, Less, Swap, Push, Pop implement container/heap.Interface.
func (h *scoreHeap) Len() int { return len(h.items) }
func (h *scoreHeap) Less(i, j int) bool {
	if h.items[i].score != h.items[j].score {
		return h.items[i].score < h.items[j].score
	}
	// Tie-break by docId for determinism within a single process run.
	return h.items[i].docID < h.items[j].docID
}
func (h *scoreHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *scoreHeap) Push(x any)    { h.items = append(h.items, x.(scoredDoc)) }
func (h *scoreHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// Full reports whether the heap has reached its capacity.
func (h *scoreHeap) Full() bool { return h.cap > 0 && h.Len() >= h.cap }

// Threshold returns the current minimum score in a full heap. Only
// meaningful once Full() is true.
func (h *scoreHeap) Threshold() int32 {
	if h.Len() == 0 {
		return 0
	}
	return h.items[0].score
}

// Offer pushes (docID, score) into the heap, evicting the current minimum
// if the heap is already at capacity and the new score beats it.
func (h *scoreHeap) Offer(docID model.DocID, score int32) {
	if h.cap <= 0 {
		return
	}
	if !h.Full() {
		heap.Push(h, scoredDoc{docID: docID, score: score})
		return
	}
	if score > h.items[0].score {
		h.items[0] = scoredDoc{docID: docID, score: score}
		heap.Fix(h, 0)
	}
}

// Drain empties the heap and returns its contents sorted ascending by docId
// (spec.md §4.7 step 2).
func (h *scoreHeap) Drain() []ScoredDocument {
	out := make([]ScoredDocument, h.Len())
	for i, it := range h.items {
		out[i] = ScoredDocument{DocID: it.docID, Score: it.score}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocID < out[j].DocID })
	return out
}
