package cachemgr

import (
	"sync/atomic"

	"github.com/seismicdb/seismic/model"
)

// Unlimited disables the global byte budget: reserves always succeed and
// only the caller's own bookkeeping limits memory use.
const Unlimited int64 = -1

// Manager is the process-wide cache registry (spec.md §4.8): a single byte
// budget shared by two LRU sub-caches, one for forward-index vectors keyed
// by model.DocKey, one for posting-cluster summaries keyed by model.TermKey.
// A Manager is safe for concurrent use; it is typically constructed once per
// process and threaded through every segment's stores.
type Manager struct {
	budget int64 // Unlimited, or a byte ceiling; immutable after New
	inUse  atomic.Int64

	forward  *tracker[model.DocKey]
	postings *tracker[model.TermKey]
}

// New builds a Manager with the given total byte budget. Pass Unlimited to
// disable admission control entirely (every Reserve succeeds, nothing is
// ever evicted).
func New(budgetBytes int64) *Manager {
	m := &Manager{budget: budgetBytes}
	m.forward = newTracker[model.DocKey](m)
	m.postings = newTracker[model.TermKey](m)
	return m
}

// ForwardIndexBytes returns the sub-cache tracking forward-index vectors.
func (m *Manager) ForwardIndexBytes() *tracker[model.DocKey] { return m.forward }

// PostingBytes returns the sub-cache tracking posting-cluster summaries.
func (m *Manager) PostingBytes() *tracker[model.TermKey] { return m.postings }

// InUse reports the manager's current total byte accounting, across both
// sub-caches plus any unconditional overhead registered via ChargeOverhead.
func (m *Manager) InUse() int64 { return m.inUse.Load() }

// Budget reports the configured ceiling, or Unlimited.
func (m *Manager) Budget() int64 { return m.budget }

// tryReserveGlobal admits bytes against the shared budget without knowing
// which sub-cache is asking. It never blocks and never evicts itself —
// eviction is the tracker's responsibility, one level up.
func (m *Manager) tryReserveGlobal(bytes int64) bool {
	if m.budget == Unlimited {
		m.inUse.Add(bytes)
		return true
	}
	for {
		cur := m.inUse.Load()
		next := cur + bytes
		if next > m.budget {
			return false
		}
		if m.inUse.CompareAndSwap(cur, next) {
			return true
		}
	}
}

func (m *Manager) releaseGlobal(bytes int64) {
	m.inUse.Add(-bytes)
}

// ChargeOverhead unconditionally grows the manager's accounting by bytes,
// bypassing admission control and eviction entirely (spec.md §8, scenario
// S5: fixed structural overhead — e.g. a forward index's slot array — must
// be reflected in the registry even under a budget of zero, where every
// Reserve would otherwise be refused). There is no corresponding tracked
// entry and nothing is ever evicted to make room for it; the caller is
// expected to call this exactly once per long-lived structure and reverse
// it with ReleaseOverhead on teardown.
func (m *Manager) ChargeOverhead(bytes int64) {
	m.inUse.Add(bytes)
}

// ReleaseOverhead reverses a prior ChargeOverhead, e.g. when the owning
// structure (a whole segment's forward index) is dropped.
func (m *Manager) ReleaseOverhead(bytes int64) {
	m.inUse.Add(-bytes)
}

// PurgeSegment removes every forward-index and posting entry belonging to
// ck from both sub-caches (spec.md §8, scenario S6: deleting a segment
// returns bytes-in-use to baseline). Structural overhead charged via
// ChargeOverhead is not touched here; callers release it explicitly when
// they tear down the structure itself.
func (m *Manager) PurgeSegment(ck model.CacheKey) {
	m.forward.PurgeByCacheKey(ck)
	m.postings.PurgeByCacheKey(ck)
}
