package scorer

import "sync/atomic"

// Stats holds the per-query telemetry counters spec.md §6's
// neural.stats_enabled gates: how many clusters the heap threshold let
// Score skip without a full dot product, how many it scored, and how many
// documents were visited versus actually rescored against the forward
// index. A nil *Stats disables counting entirely, so Score pays no
// overhead when telemetry is off.
type Stats struct {
	ClustersSkipped atomic.Int64
	ClustersScored  atomic.Int64
	DocsVisited     atomic.Int64
	DocsScored      atomic.Int64
}

// StatsSnapshot is an immutable point-in-time copy of Stats' counters.
type StatsSnapshot struct {
	ClustersSkipped int64
	ClustersScored  int64
	DocsVisited     int64
	DocsScored      int64
}

// Snapshot returns a copy of s's current counter values. Safe to call on a
// nil *Stats, returning a zero StatsSnapshot.
func (s *Stats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}
	return StatsSnapshot{
		ClustersSkipped: s.ClustersSkipped.Load(),
		ClustersScored:  s.ClustersScored.Load(),
		DocsVisited:     s.DocsVisited.Load(),
		DocsScored:      s.DocsScored.Load(),
	}
}
