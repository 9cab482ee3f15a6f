package config

import "github.com/RoaringBitmap/roaring/v2"

// QueryParams bundles one query's parameters (spec.md §6): the target
// field, its sparse token/weight map, the heap size, the query-side
// pruning cut, the recall/latency trade-off factor, and an optional
// document filter.
type QueryParams struct {
	Field       string
	QueryTokens map[uint32]float32
	K           int
	QueryCut    int
	HeapFactor  float64
	Filter      *roaring.Bitmap
}
