package forwardindex

import (
	"sync/atomic"

	"github.com/seismicdb/seismic/cachemgr"
	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/sparsevec"
)

// estimatedSlotOverhead is the per-slot accounting charge for the pointer
// array itself, independent of whether a slot is populated — it is what
// budget=0 still has to account for (spec.md §8, scenario S5).
const estimatedSlotOverhead = 8 // one atomic.Pointer word per slot

// ForwardIndex is a dense docId -> sparse vector mapping for one
// (segment, field) (spec.md §4.3). Reads never block; writes are
// single-writer-per-slot via compare-and-swap on an empty slot.
type ForwardIndex struct {
	key   model.CacheKey
	slots []atomic.Pointer[sparsevec.Vector]
	cache *cachemgr.Manager
}

// New allocates a ForwardIndex able to address docIds in [0, capacity).
// The slot array's own overhead is charged against the cache manager
// unconditionally (spec.md §8, scenario S5): the registry grows by exactly
// capacity*estimatedSlotOverhead even under a budget of zero, where every
// subsequent Insert's gated Reserve would be refused.
func New(key model.CacheKey, capacity int, cache *cachemgr.Manager) *ForwardIndex {
	fi := &ForwardIndex{
		key:   key,
		slots: make([]atomic.Pointer[sparsevec.Vector], capacity),
		cache: cache,
	}
	if cache != nil {
		cache.ChargeOverhead(int64(capacity) * estimatedSlotOverhead)
	}
	return fi
}

// Close releases this index's slot-array overhead charge. Callers must
// invoke it exactly once when the owning segment/field is torn down.
func (fi *ForwardIndex) Close() {
	if fi.cache != nil {
		fi.cache.ReleaseOverhead(int64(len(fi.slots)) * estimatedSlotOverhead)
	}
}

// Read returns the vector for docID, or nil if out of range or unset. Never
// blocks: a single atomic load, plus a best-effort LRU recency touch.
func (fi *ForwardIndex) Read(docID model.DocID) *sparsevec.Vector {
	if docID < 0 || int(docID) >= len(fi.slots) {
		return nil
	}
	v := fi.slots[docID].Load()
	if v != nil && fi.cache != nil {
		fi.cache.ForwardIndexBytes().Touch(model.DocKey{CacheKey: fi.key, DocID: docID})
	}
	return v
}

// Insert publishes v at docID if, and only if, the slot is currently empty
// (spec.md §4.3: "write wins only if slot was empty; subsequent writes are
// no-ops"). Returns true if this call's vector won the slot.
//
// The vector's estimated byte size is charged against the cache manager
// before publishing; if the manager refuses, the insert is dropped and the
// slot remains empty (spec.md §7, BudgetError policy: background population
// drops silently).
func (fi *ForwardIndex) Insert(docID model.DocID, v *sparsevec.Vector) bool {
	if v == nil || docID < 0 || int(docID) >= len(fi.slots) {
		return false
	}
	if fi.cache != nil {
		key := model.DocKey{CacheKey: fi.key, DocID: docID}
		size := estimateVectorBytes(v)
		if !fi.cache.ForwardIndexBytes().Reserve(key, size, func() {
			fi.slots[docID].Store(nil)
		}) {
			return false
		}
		if !fi.slots[docID].CompareAndSwap(nil, v) {
			fi.cache.ForwardIndexBytes().Release(key)
			return false
		}
		return true
	}
	return fi.slots[docID].CompareAndSwap(nil, v)
}

// RAMBytesUsed returns a best-effort estimate of this index's memory
// footprint, including slot-array overhead and every stored vector
// (spec.md §4.3).
func (fi *ForwardIndex) RAMBytesUsed() uint64 {
	total := uint64(len(fi.slots)) * estimatedSlotOverhead
	for i := range fi.slots {
		if v := fi.slots[i].Load(); v != nil {
			total += uint64(estimateVectorBytes(v))
		}
	}
	return total
}

func estimateVectorBytes(v *sparsevec.Vector) int64 {
	// One Token (4B) + one weight byte per item, plus a small fixed struct
	// overhead.
	return int64(len(v.Items))*5 + 16
}
