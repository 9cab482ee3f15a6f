package cluster

import (
	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/sparsevec"
)

// VectorReader maps a DocID to its full sparse vector. Implementations are
// typically a CacheGatedForwardIndexReader (forwardindex package); clustering
// never talks to storage directly.
type VectorReader interface {
	Read(docID model.DocID) (*sparsevec.Vector, error)
}

// DocumentCluster groups a set of (docId, weight) entries that share one
// pruned Summary vector. A cluster is immutable once constructed.
//
// Invariants (spec.md §3, §8):
//   - DocIDs is sorted ascending and parallel to Weights.
//   - Summary is nil iff ShouldNotSkip is true (an unprunable, always-scored
//     cluster — e.g. ClusterRatio==0 fallback).
//   - When Summary is non-nil, Summary contains only tokens present in at
//     least one member vector, and Summary[t] >= max(member[t]) is NOT
//     required after pruning drops low-mass tokens — but for every retained
//     token the coordinate equals the true coordinate-wise max (see
//     summary.go), preserving the SEISMIC upper-bound property for any query
//     token whose coordinate survived pruning.
type DocumentCluster struct {
	DocIDs        []model.DocID
	Weights       []byte
	Summary       *sparsevec.Vector
	ShouldNotSkip bool
}

// Size returns the number of member documents.
func (c *DocumentCluster) Size() int { return len(c.DocIDs) }

// PostingClusters is the ordered sequence of clusters produced for one term.
// Order is the order clustering produced and must be preserved across
// persistence (codec) and iteration (scorer) — it defines the scorer's
// skipping order.
type PostingClusters struct {
	Clusters []DocumentCluster
}

// TotalDocs returns the sum of cluster sizes (spec.md §8, invariant 2).
func (p *PostingClusters) TotalDocs() int {
	n := 0
	for _, c := range p.Clusters {
		n += c.Size()
	}
	return n
}
