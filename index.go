package seismic

import (
	"sync"

	"github.com/seismicdb/seismic/cachemgr"
	"github.com/seismicdb/seismic/config"
	"github.com/seismicdb/seismic/model"
)

// Index is the top-level registry of Fields sharing one cache manager and
// one Settings value (spec.md §9: "long-lived singleton registries... with
// well-defined initialization and teardown").
type Index struct {
	cache    *cachemgr.Manager
	settings config.Settings
	logger   *Logger
	metrics  MetricsCollector

	mu     sync.RWMutex
	fields map[model.CacheKey]*Field
}

// NewIndex constructs an Index. It logs through NoopLogger until
// WithLogger installs another Logger.
func NewIndex(cache *cachemgr.Manager, settings config.Settings) *Index {
	idx := &Index{
		cache:    cache,
		settings: settings,
		logger:   NoopLogger(),
		metrics:  NoopMetricsCollector{},
		fields:   make(map[model.CacheKey]*Field),
	}
	if settings.StatsEnabled {
		idx.metrics = &BasicMetricsCollector{}
	}
	return idx
}

// WithLogger installs a structured logger, returning the Index for
// chaining (functional-options style construction).
func (idx *Index) WithLogger(l *Logger) *Index {
	if l != nil {
		idx.logger = l
	}
	return idx
}

// WithMetrics installs a custom MetricsCollector, returning the Index for
// chaining. Overrides the Settings.StatsEnabled default.
func (idx *Index) WithMetrics(m MetricsCollector) *Index {
	if m != nil {
		idx.metrics = m
	}
	return idx
}

// Metrics returns the Index's current MetricsCollector.
func (idx *Index) Metrics() MetricsCollector { return idx.metrics }

// OpenField creates (or returns, if already open) the Field for key.
// capacity bounds the forward index's doc-id range.
func (idx *Index) OpenField(key model.CacheKey, mapping config.FieldMapping, capacity int) *Field {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if f, ok := idx.fields[key]; ok {
		return f
	}
	f := newField(key, mapping, capacity, idx.cache, idx.logger, idx.metrics, idx.settings.StatsEnabled)
	idx.fields[key] = f
	return f
}

// Field returns the already-open Field for key, or nil.
func (idx *Index) Field(key model.CacheKey) *Field {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.fields[key]
}

// DeleteSegment tears down every Field belonging to segmentID and purges
// the cache manager's accounting for it in one pass (spec.md §8, scenario
// S6). Overhead charged by each Field's forward index is released via
// Close before the cache-level purge, so InUse returns exactly to the
// pre-segment baseline.
func (idx *Index) DeleteSegment(segmentID model.SegmentID) {
	idx.mu.Lock()
	var toDelete []model.CacheKey
	for key, f := range idx.fields {
		if key.SegmentID != segmentID {
			continue
		}
		f.Close()
		toDelete = append(toDelete, key)
	}
	for _, key := range toDelete {
		delete(idx.fields, key)
	}
	idx.mu.Unlock()

	for _, key := range toDelete {
		if idx.cache != nil {
			idx.cache.PurgeSegment(key)
		}
		idx.logger.LogSegmentDelete(nil, uint64(segmentID), 0)
	}
}

// Settings returns the Index's configured Settings.
func (idx *Index) Settings() config.Settings { return idx.settings }

// CacheManager returns the shared cache manager backing every Field.
func (idx *Index) CacheManager() *cachemgr.Manager { return idx.cache }

// Close tears down every open Field, releasing their cache-manager overhead
// accounting. It does not purge the underlying cache manager itself: the
// caller owns the Manager's lifetime independently of any one Index.
func (idx *Index) Close() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, f := range idx.fields {
		f.Close()
	}
	idx.fields = make(map[model.CacheKey]*Field)
}
