package postingstore

import "github.com/seismicdb/seismic/cluster"

// PersistedReader is the read-only, on-disk side of a posting store: a
// segment's term dictionary plus codec (package codec). It is always
// consulted on an in-memory miss, and is the sole authority for the set of
// terms that exist (spec.md §4.4).
type PersistedReader interface {
	Read(term string) (*cluster.PostingClusters, error)
	GetTerms() ([]string, error)
}

// CacheGatedPostingsReader composes an in-memory ClusteredPostingIndex with
// a PersistedReader (spec.md §4.4), identical in spirit to
// forwardindex's cache-gated reader:
//  1. Return the in-memory read if present.
//  2. Otherwise read from the persisted side.
//  3. If the persisted read returned a value, opportunistically populate
//     the in-memory side (ignoring failures — a refused Insert just means
//     the next read repeats the persisted lookup).
type CacheGatedPostingsReader struct {
	memory    *ClusteredPostingIndex
	persisted PersistedReader
}

// NewCacheGatedPostingsReader composes memory and persisted into a single
// reader. persisted may be nil, in which case only the in-memory side is
// ever consulted (useful for still-building segments with no flushed data).
func NewCacheGatedPostingsReader(memory *ClusteredPostingIndex, persisted PersistedReader) *CacheGatedPostingsReader {
	return &CacheGatedPostingsReader{memory: memory, persisted: persisted}
}

// Read implements the memory-then-persisted-then-populate sequence.
func (r *CacheGatedPostingsReader) Read(term string) (*cluster.PostingClusters, error) {
	if c := r.memory.Read(term); c != nil {
		return c, nil
	}
	if r.persisted == nil {
		return nil, nil
	}
	c, err := r.persisted.Read(term)
	if err != nil {
		return nil, err
	}
	if c != nil {
		r.memory.Insert(term, c)
	}
	return c, nil
}

// GetTerms returns the authoritative term universe from the persisted side,
// falling back to the in-memory set for segments with no persisted backing
// yet (spec.md §4.4: "terms returned by getTerms() MUST come from the
// persisted side... since entries may have been evicted").
func (r *CacheGatedPostingsReader) GetTerms() ([]string, error) {
	if r.persisted == nil {
		return r.memory.GetTerms(), nil
	}
	return r.persisted.GetTerms()
}
