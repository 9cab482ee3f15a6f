package postingstore

import (
	"sync"
	"sync/atomic"

	"github.com/seismicdb/seismic/cachemgr"
	"github.com/seismicdb/seismic/cluster"
	"github.com/seismicdb/seismic/model"
)

// entry holds a term's clusters behind an atomic pointer, so the cache
// manager's eviction callback can clear it without taking the map's lock.
type entry struct {
	clusters atomic.Pointer[cluster.PostingClusters]
}

// ClusteredPostingIndex is a term -> PostingClusters map for one
// (segment, field) (spec.md §4.4). Like ForwardIndex, a term's first
// successful insert wins; later inserts for the same term are no-ops.
type ClusteredPostingIndex struct {
	key   model.CacheKey
	cache *cachemgr.Manager

	mu    sync.RWMutex // guards the terms map; entry values are atomic
	terms map[string]*entry
}

// New constructs an empty ClusteredPostingIndex for key.
func New(key model.CacheKey, cache *cachemgr.Manager) *ClusteredPostingIndex {
	return &ClusteredPostingIndex{
		key:   key,
		cache: cache,
		terms: make(map[string]*entry),
	}
}

// Read returns the clusters stored for term, or nil if absent.
func (idx *ClusteredPostingIndex) Read(term string) *cluster.PostingClusters {
	idx.mu.RLock()
	e, ok := idx.terms[term]
	idx.mu.RUnlock()
	if !ok {
		return nil
	}
	c := e.clusters.Load()
	if c != nil && idx.cache != nil {
		idx.cache.PostingBytes().Touch(model.TermKey{CacheKey: idx.key, Term: term})
	}
	return c
}

// Insert publishes clusters for term if, and only if, no value has been
// published for that term yet (spec.md §4.4: "on duplicate term, keeps the
// first insertion"). Returns true if this call's clusters won.
func (idx *ClusteredPostingIndex) Insert(term string, clusters *cluster.PostingClusters) bool {
	if clusters == nil {
		return false
	}

	idx.mu.Lock()
	e, existed := idx.terms[term]
	if !existed {
		e = &entry{}
		idx.terms[term] = e
	}
	idx.mu.Unlock()

	if e.clusters.Load() != nil {
		return false
	}

	if idx.cache != nil {
		key := model.TermKey{CacheKey: idx.key, Term: term}
		size := estimateClustersBytes(clusters)
		if !idx.cache.PostingBytes().Reserve(key, size, func() {
			e.clusters.Store(nil)
		}) {
			return false
		}
		if !e.clusters.CompareAndSwap(nil, clusters) {
			idx.cache.PostingBytes().Release(key)
			return false
		}
		return true
	}
	return e.clusters.CompareAndSwap(nil, clusters)
}

// GetTerms returns every term currently resident in memory. Callers needing
// the authoritative term universe (including evicted terms) must consult
// the persisted side instead — see CacheGatedPostingsReader.
func (idx *ClusteredPostingIndex) GetTerms() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]string, 0, len(idx.terms))
	for t, e := range idx.terms {
		if e.clusters.Load() != nil {
			out = append(out, t)
		}
	}
	return out
}

// Size returns the number of terms currently resident in memory.
func (idx *ClusteredPostingIndex) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	n := 0
	for _, e := range idx.terms {
		if e.clusters.Load() != nil {
			n++
		}
	}
	return n
}

func estimateClustersBytes(pc *cluster.PostingClusters) int64 {
	var total int64 = 16
	for _, c := range pc.Clusters {
		total += int64(len(c.DocIDs))*5 + 24
		if c.Summary != nil {
			total += int64(len(c.Summary.Items)) * 5
		}
	}
	return total
}
