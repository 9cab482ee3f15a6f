// This file implements a fluent query API on top of Field.Query.
package seismic

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/seismicdb/seismic/config"
	"github.com/seismicdb/seismic/scorer"
)

// Search returns a fluent QueryBuilder for queryTokens against f, defaulting
// to k=10 and no query-side pruning.
//
// Example:
//
//	hits, err := field.Search(map[uint32]float32{1000: 0.4, 2000: 0.9}).
//	    K(20).
//	    QueryCut(5).
//	    Execute()
func (f *Field) Search(queryTokens map[uint32]float32) *QueryBuilder {
	return &QueryBuilder{
		field:      f,
		tokens:     queryTokens,
		k:          10,
		heapFactor: 1.0,
	}
}

// QueryBuilder is a fluent builder for one Field.Query call.
type QueryBuilder struct {
	field      *Field
	tokens     map[uint32]float32
	k          int
	queryCut   int
	heapFactor float64
	filter     *roaring.Bitmap
}

// K sets the number of results to return.
func (qb *QueryBuilder) K(k int) *QueryBuilder {
	qb.k = k
	return qb
}

// QueryCut limits scoring to the top n query tokens by weight. 0 disables
// pruning.
func (qb *QueryBuilder) QueryCut(n int) *QueryBuilder {
	qb.queryCut = n
	return qb
}

// HeapFactor trades recall for latency: clusters whose summary score times
// this factor cannot beat the current threshold are skipped. 1.0 is exact
// within the clustering.
func (qb *QueryBuilder) HeapFactor(f float64) *QueryBuilder {
	qb.heapFactor = f
	return qb
}

// Filter restricts results to documents present in the bitmap.
func (qb *QueryBuilder) Filter(docs *roaring.Bitmap) *QueryBuilder {
	qb.filter = docs
	return qb
}

// Execute runs the query and returns every result, ascending by doc id.
func (qb *QueryBuilder) Execute() ([]scorer.ScoredDocument, error) {
	return qb.field.Query(config.QueryParams{
		QueryTokens: qb.tokens,
		K:           qb.k,
		QueryCut:    qb.queryCut,
		HeapFactor:  qb.heapFactor,
		Filter:      qb.filter,
	})
}

// MustExecute runs the query, panicking on error. Intended for tests.
func (qb *QueryBuilder) MustExecute() []scorer.ScoredDocument {
	results, err := qb.Execute()
	if err != nil {
		panic(err)
	}
	return results
}

// First returns the single best result, or ErrIO-wrapped absence if none.
func (qb *QueryBuilder) First() (scorer.ScoredDocument, error) {
	qb.k = 1
	results, err := qb.Execute()
	if err != nil {
		return scorer.ScoredDocument{}, err
	}
	if len(results) == 0 {
		return scorer.ScoredDocument{}, wrapError(ErrIO, "QueryBuilder.First", uint64(qb.field.Key.SegmentID), nil)
	}
	return results[0], nil
}

// Count executes the query and returns the number of results found.
func (qb *QueryBuilder) Count() (int, error) {
	results, err := qb.Execute()
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

// Exists reports whether at least one document matches.
func (qb *QueryBuilder) Exists() (bool, error) {
	qb.k = 1
	results, err := qb.Execute()
	if err != nil {
		return false, err
	}
	return len(results) > 0, nil
}
