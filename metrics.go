package seismic

import (
	"sync/atomic"
	"time"
)

// MetricsCollector collects operational metrics for one Index. Implement
// this to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordInsert is called after each Field.Insert call.
	RecordInsert(duration time.Duration, err error)

	// RecordQuery is called after each Field.Query call.
	RecordQuery(k int, resultsFound int, duration time.Duration, err error)

	// RecordMerge records one merge run. merge.Run does not call it, and
	// nothing else in the module does.
	RecordMerge(termsMerged int, duration time.Duration, err error)

	// RecordEviction records one cache eviction. The cache manager does not
	// call it, and nothing else in the module does.
	RecordEviction(bytesFreed int64)
}

// NoopMetricsCollector discards every recorded metric.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)                {}
func (NoopMetricsCollector) RecordQuery(int, int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordMerge(int, time.Duration, error)            {}
func (NoopMetricsCollector) RecordEviction(int64)                            {}

// BasicMetricsCollector is a simple in-memory MetricsCollector, useful for
// debugging and tests without wiring an external monitoring system.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64

	QueryCount       atomic.Int64
	QueryErrors      atomic.Int64
	QueryTotalNanos  atomic.Int64
	QueryResultsSeen atomic.Int64

	MergeCount       atomic.Int64
	MergeErrors      atomic.Int64
	MergeTermsMerged atomic.Int64

	EvictionCount      atomic.Int64
	EvictionBytesFreed atomic.Int64
}

func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordQuery(k int, resultsFound int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	b.QueryResultsSeen.Add(int64(resultsFound))
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordMerge(termsMerged int, duration time.Duration, err error) {
	b.MergeCount.Add(1)
	b.MergeTermsMerged.Add(int64(termsMerged))
	if err != nil {
		b.MergeErrors.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordEviction(bytesFreed int64) {
	b.EvictionCount.Add(1)
	b.EvictionBytesFreed.Add(bytesFreed)
}

// Snapshot returns a point-in-time copy of every counter.
func (b *BasicMetricsCollector) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		InsertCount:        b.InsertCount.Load(),
		InsertErrors:       b.InsertErrors.Load(),
		InsertAvgNanos:     avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		QueryCount:         b.QueryCount.Load(),
		QueryErrors:        b.QueryErrors.Load(),
		QueryAvgNanos:      avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		MergeCount:         b.MergeCount.Load(),
		MergeErrors:        b.MergeErrors.Load(),
		MergeTermsMerged:   b.MergeTermsMerged.Load(),
		EvictionCount:      b.EvictionCount.Load(),
		EvictionBytesFreed: b.EvictionBytesFreed.Load(),
	}
}

func avg(totalNanos, count int64) int64 {
	if count == 0 {
		return 0
	}
	return totalNanos / count
}

// MetricsSnapshot is an immutable copy of BasicMetricsCollector's counters.
type MetricsSnapshot struct {
	InsertCount    int64
	InsertErrors   int64
	InsertAvgNanos int64

	QueryCount    int64
	QueryErrors   int64
	QueryAvgNanos int64

	MergeCount       int64
	MergeErrors      int64
	MergeTermsMerged int64

	EvictionCount      int64
	EvictionBytesFreed int64
}
