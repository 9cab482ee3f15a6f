package forwardindex

import (
	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/sparsevec"
)

// PersistedReader is the read-only, on-disk side of a forward index: a
// segment's columnar vector file plus codec (package codec).
type PersistedReader interface {
	Read(docID model.DocID) (*sparsevec.Vector, error)
}

// CacheGatedForwardIndexReader composes an in-memory ForwardIndex with a
// PersistedReader (spec.md §4.3):
//  1. Return the in-memory read if non-nil.
//  2. Otherwise read from the persisted side.
//  3. If the persisted read returned non-nil, opportunistically write it to
//     the in-memory side, ignoring failures.
type CacheGatedForwardIndexReader struct {
	memory    *ForwardIndex
	persisted PersistedReader
}

// NewCacheGatedForwardIndexReader composes memory and persisted. persisted
// may be nil for a segment still being built, with no flushed data yet.
func NewCacheGatedForwardIndexReader(memory *ForwardIndex, persisted PersistedReader) *CacheGatedForwardIndexReader {
	return &CacheGatedForwardIndexReader{memory: memory, persisted: persisted}
}

// Read implements the memory-then-persisted-then-populate sequence.
func (r *CacheGatedForwardIndexReader) Read(docID model.DocID) (*sparsevec.Vector, error) {
	if v := r.memory.Read(docID); v != nil {
		return v, nil
	}
	if r.persisted == nil {
		return nil, nil
	}
	v, err := r.persisted.Read(docID)
	if err != nil {
		return nil, err
	}
	if v != nil {
		r.memory.Insert(docID, v)
	}
	return v, nil
}
