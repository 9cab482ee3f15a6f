package cachemgr

import (
	"container/list"
	"sync"

	"github.com/seismicdb/seismic/model"
)

// keyer lets the tracker purge entries by their owning (segment, field)
// CacheKey without depending on the refined key shape (model.DocKey vs
// model.TermKey).
type keyer interface {
	comparable
	CacheKeyOf() model.CacheKey
}

type entry[K keyer] struct {
	key      K
	bytes    int64
	onEvict  func()
}

// tracker is a least-recently-used registry of byte-sized entries scoped to
// one sub-cache (forward-index docs, or posting terms). It holds its own
// mutex, distinct from the Manager's budget accounting, so that eviction
// never blocks a concurrent read elsewhere in the registry (spec.md §5,
// "Eviction MUST NOT block concurrent reads; it acquires its own mutex").
type tracker[K keyer] struct {
	mu    sync.Mutex
	mgr   *Manager
	items map[K]*list.Element // -> *entry[K]
	lru   *list.List
}

func newTracker[K keyer](mgr *Manager) *tracker[K] {
	return &tracker[K]{
		mgr:   mgr,
		items: make(map[K]*list.Element),
		lru:   list.New(),
	}
}

// Reserve admits key for bytes, evicting this tracker's least-recently-used
// entries first if the global budget refuses (spec.md §4.8). onEvict is
// invoked if and when this entry is later evicted, so the owning store can
// drop its own reference. Returns false (BudgetError) if no amount of
// eviction frees enough room.
func (t *tracker[K]) Reserve(key K, bytes int64, onEvict func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if el, ok := t.items[key]; ok {
		// Duplicate insert: keep the first insertion (spec.md §4.4), just
		// refresh recency.
		t.lru.MoveToFront(el)
		return true
	}

	if t.mgr.tryReserveGlobal(bytes) {
		t.publish(key, bytes, onEvict)
		return true
	}

	t.evictUntil(bytes)
	if t.mgr.tryReserveGlobal(bytes) {
		t.publish(key, bytes, onEvict)
		return true
	}
	return false
}

func (t *tracker[K]) publish(key K, bytes int64, onEvict func()) {
	e := &entry[K]{key: key, bytes: bytes, onEvict: onEvict}
	el := t.lru.PushFront(e)
	t.items[key] = el
}

// Touch refreshes recency for key without reserving; used on read access.
func (t *tracker[K]) Touch(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if el, ok := t.items[key]; ok {
		t.lru.MoveToFront(el)
	}
}

// Release drops key's accounting (the caller is removing the value itself),
// e.g. on explicit invalidation outside of LRU pressure.
func (t *tracker[K]) Release(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if el, ok := t.items[key]; ok {
		t.removeElement(el)
	}
}

// PurgeByCacheKey removes every entry belonging to ck (spec.md §8,
// scenario S6: deleting a segment returns bytes-in-use to baseline).
func (t *tracker[K]) PurgeByCacheKey(ck model.CacheKey) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var toRemove []*list.Element
	for k, el := range t.items {
		if k.CacheKeyOf() == ck {
			toRemove = append(toRemove, el)
		}
	}
	for _, el := range toRemove {
		t.removeElement(el)
	}
}

func (t *tracker[K]) evictUntil(need int64) {
	freed := int64(0)
	for freed < need {
		back := t.lru.Back()
		if back == nil {
			return
		}
		e := back.Value.(*entry[K])
		freed += e.bytes
		t.removeElement(back)
	}
}

func (t *tracker[K]) removeElement(el *list.Element) {
	e := el.Value.(*entry[K])
	t.lru.Remove(el)
	delete(t.items, e.key)
	t.mgr.releaseGlobal(e.bytes)
	if e.onEvict != nil {
		e.onEvict()
	}
}

// Size returns the number of tracked entries.
func (t *tracker[K]) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}
