package scorer

import (
	"sort"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/seismicdb/seismic/cluster"
	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/sparsevec"
)

// ScoredDocument is one result entry: a segment-local doc id and its dot
// product score against the query.
type ScoredDocument struct {
	DocID model.DocID
	Score int32
}

// PostingSource resolves a query token's term string to its clusters, or
// nil if the term is absent from the dictionary (spec.md §4.7:
// "seek to term t in the dictionary; if absent, skip").
type PostingSource interface {
	Read(term string) (*cluster.PostingClusters, error)
}

// VectorSource resolves a doc id to its full sparse vector, for scoring
// documents a cluster did not let us skip.
type VectorSource interface {
	Read(docID model.DocID) (*sparsevec.Vector, error)
}

// TermFunc maps a query Token to the term string used by the posting
// dictionary (the host's term translation; sparsevec tokens are opaque
// integers to this package).
type TermFunc func(model.Token) string

// Query bundles the parameters of one scorer invocation (spec.md §4.7).
type Query struct {
	Vector     *sparsevec.Vector // already pruned to the top queryCut tokens
	K          int
	HeapFactor float64
	Filter     *roaring.Bitmap // optional; nil means "no filter"
	NumDocs    int             // segment size, for the visited-doc bitset
	TermOf     TermFunc
}

// Cancelled is an atomic flag the caller may flip concurrently; the scorer
// checks it between clusters and returns best-effort partial results
// (spec.md §4.7, "Cancellation").
type Cancelled = atomic.Bool

// Score runs the per-segment scoring algorithm described in spec.md §4.7
// and returns results sorted ascending by docId. stats may be nil, in
// which case no telemetry is recorded (spec.md §6's neural.stats_enabled
// gate, checked once by the caller rather than on every cluster here).
func Score(q Query, postings PostingSource, vectors VectorSource, cancelled *Cancelled, stats *Stats) ([]ScoredDocument, error) {
	heapK := newScoreHeap(q.K)
	visited := bitset.New(uint(max(q.NumDocs, 1)))
	queryDense := q.Vector.ToDense(maxQueryToken(q.Vector))

	for _, item := range q.Vector.Items {
		if cancelled != nil && cancelled.Load() {
			break
		}
		term := q.TermOf(item.Token)
		clusters, err := postings.Read(term)
		if err != nil {
			return nil, err
		}
		if clusters == nil {
			continue
		}

		for ci := range clusters.Clusters {
			if cancelled != nil && cancelled.Load() {
				return heapK.Drain(), nil
			}
			c := &clusters.Clusters[ci]

			if !c.ShouldNotSkip {
				s := c.Summary.DotDense(queryDense)
				if heapK.Full() && float64(s)*q.HeapFactor < float64(heapK.Threshold()) {
					if stats != nil {
						stats.ClustersSkipped.Add(1)
					}
					continue
				}
			}
			if stats != nil {
				stats.ClustersScored.Add(1)
			}

			if err := scoreCluster(c, q, queryDense, visited, vectors, heapK, stats); err != nil {
				return nil, err
			}
		}
	}

	return heapK.Drain(), nil
}

func scoreCluster(c *cluster.DocumentCluster, q Query, queryDense []byte, visited *bitset.BitSet, vectors VectorSource, heapK *scoreHeap, stats *Stats) error {
	for _, docID := range c.DocIDs {
		if q.Filter != nil && !q.Filter.Contains(uint32(docID)) {
			continue
		}
		idx := uint(docID)
		if visited.Test(idx) {
			continue
		}
		visited.Set(idx)
		if stats != nil {
			stats.DocsVisited.Add(1)
		}

		v, err := vectors.Read(docID)
		if err != nil {
			return err
		}
		if v == nil {
			continue
		}
		score := v.DotDense(queryDense)
		if stats != nil {
			stats.DocsScored.Add(1)
		}
		heapK.Offer(docID, score)
	}
	return nil
}

func maxQueryToken(v *sparsevec.Vector) model.Token {
	return v.MaxToken()
}

// PruneQuery keeps only the top queryCut tokens of v by weight (ties
// broken toward the lower token, for determinism), dropping the rest —
// the "pruned query" spec.md §4.7 scores against. queryCut <= 0 means no
// pruning.
func PruneQuery(v *sparsevec.Vector, queryCut int) *sparsevec.Vector {
	if queryCut <= 0 || len(v.Items) <= queryCut {
		return v
	}
	items := make([]sparsevec.Item, len(v.Items))
	copy(items, v.Items)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Weight != items[j].Weight {
			return items[i].Weight > items[j].Weight
		}
		return items[i].Token < items[j].Token
	})
	items = items[:queryCut]
	sort.Slice(items, func(i, j int) bool { return items[i].Token < items[j].Token })
	pruned, _ := sparsevec.New(items)
	return pruned
}
