package seismic

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/seismicdb/seismic/cachemgr"
	"github.com/seismicdb/seismic/cluster"
	"github.com/seismicdb/seismic/config"
	"github.com/seismicdb/seismic/forwardindex"
	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/postingstore"
	"github.com/seismicdb/seismic/scorer"
	"github.com/seismicdb/seismic/sparsevec"
)

// Field is one (segment, field) pair's live index state: a forward index of
// full vectors, a clustered posting index per term, and the field's
// creation-time parameters. Building clusters and persisting to the codec
// layer happen outside Field (see the merge package and cmd/seismicctl);
// Field itself only owns the in-memory read/write path plus scoring.
type Field struct {
	Key     model.CacheKey
	Mapping config.FieldMapping

	forward  *forwardindex.ForwardIndex
	postings *postingstore.ClusteredPostingIndex

	docCount atomic.Int64

	mu       sync.RWMutex
	terms    map[model.Token]string // token -> dictionary term string
	rTerms   map[string]model.Token
	logger   *Logger
	metrics  MetricsCollector
	stats    *scorer.Stats // nil unless the owning Index was built with StatsEnabled
}

// newField constructs a Field with capacity docs of forward-index headroom.
// statsEnabled gates scorer.Stats collection (spec.md §6's
// neural.stats_enabled): when false, f.stats stays nil and Query pays no
// counting overhead.
func newField(key model.CacheKey, mapping config.FieldMapping, capacity int, cache *cachemgr.Manager, logger *Logger, metrics MetricsCollector, statsEnabled bool) *Field {
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	f := &Field{
		Key:      key,
		Mapping:  mapping,
		forward:  forwardindex.New(key, capacity, cache),
		postings: postingstore.New(key, cache),
		terms:    make(map[model.Token]string),
		rTerms:   make(map[string]model.Token),
		logger:   logger,
		metrics:  metrics,
	}
	if statsEnabled {
		f.stats = &scorer.Stats{}
	}
	return f
}

// Stats returns this field's telemetry counters, or nil if the owning
// Index was not built with Settings.StatsEnabled.
func (f *Field) Stats() *scorer.Stats { return f.stats }

// tokenTerm returns the dictionary term string for a token, registering a
// new one on first sight. Tokens are opaque integers to the posting
// dictionary; the host's tokenizer decides string<->token identity
// elsewhere, but for a self-contained module this Field owns that mapping.
func (f *Field) tokenTerm(tok model.Token) string {
	f.mu.RLock()
	if t, ok := f.terms[tok]; ok {
		f.mu.RUnlock()
		return t
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.terms[tok]; ok {
		return t
	}
	t := fmt.Sprintf("t%d", tok)
	f.terms[tok] = t
	f.rTerms[t] = tok
	return t
}

// Insert publishes docID's sparse vector into the forward index (spec.md
// §4.3). Weights greater than sparsevec.MaxEncodableWeight are rejected.
func (f *Field) Insert(docID model.DocID, weights map[model.Token]float32) error {
	start := time.Now()
	v, err := sparsevec.FromMap(weights)
	if err != nil {
		err = wrapError(ErrInvariant, "Field.Insert", uint64(f.Key.SegmentID), err)
		f.metrics.RecordInsert(time.Since(start), err)
		return err
	}
	for _, item := range v.Items {
		f.tokenTerm(item.Token)
	}
	if !f.forward.Insert(docID, v) {
		err = wrapError(ErrBudget, "Field.Insert", uint64(f.Key.SegmentID), nil)
		f.metrics.RecordInsert(time.Since(start), err)
		return err
	}
	f.docCount.Add(1)
	f.metrics.RecordInsert(time.Since(start), nil)
	return nil
}

// PublishClusters installs the clustered postings for term, produced by the
// merge or initial-build pipeline (spec.md §4.4). Returns false if a value
// was already published for that term (first insertion wins).
func (f *Field) PublishClusters(term string, pc *cluster.PostingClusters) bool {
	return f.postings.Insert(term, pc)
}

// Query runs the scorer (spec.md §4.7) over this field's live in-memory
// state: query tokens are pruned to QueryCut, then scored cluster-by-
// cluster against the forward index.
func (f *Field) Query(params config.QueryParams) ([]scorer.ScoredDocument, error) {
	start := time.Now()
	weights := make(map[model.Token]float32, len(params.QueryTokens))
	for tok, w := range params.QueryTokens {
		// Query weights above the encodable range are clamped, not rejected.
		weights[model.Token(tok)] = min(w, float32(sparsevec.MaxEncodableWeight))
	}
	qv, err := sparsevec.FromMap(weights)
	if err != nil {
		err = wrapError(ErrInvariant, "Field.Query", uint64(f.Key.SegmentID), err)
		f.metrics.RecordQuery(params.K, 0, time.Since(start), err)
		return nil, err
	}
	pruned := scorer.PruneQuery(qv, params.QueryCut)

	q := scorer.Query{
		Vector:     pruned,
		K:          params.K,
		HeapFactor: params.HeapFactor,
		Filter:     params.Filter,
		NumDocs:    int(f.docCount.Load()),
		TermOf:     f.tokenTerm,
	}

	results, err := scorer.Score(q, postingSourceAdapter{f.postings}, forwardSourceAdapter{f.forward}, nil, f.stats)
	if err != nil {
		err = wrapError(ErrIO, "Field.Query", uint64(f.Key.SegmentID), err)
		f.metrics.RecordQuery(params.K, 0, time.Since(start), err)
		return nil, err
	}
	f.metrics.RecordQuery(params.K, len(results), time.Since(start), nil)
	return results, nil
}

// postingSourceAdapter adapts *postingstore.ClusteredPostingIndex to
// scorer.PostingSource.
type postingSourceAdapter struct{ idx *postingstore.ClusteredPostingIndex }

func (a postingSourceAdapter) Read(term string) (*cluster.PostingClusters, error) {
	return a.idx.Read(term), nil
}

// forwardSourceAdapter adapts *forwardindex.ForwardIndex to
// scorer.VectorSource.
type forwardSourceAdapter struct{ fi *forwardindex.ForwardIndex }

func (a forwardSourceAdapter) Read(docID model.DocID) (*sparsevec.Vector, error) {
	return a.fi.Read(docID), nil
}

// Close releases this field's cache-manager overhead accounting.
func (f *Field) Close() {
	f.forward.Close()
}
