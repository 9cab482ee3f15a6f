// Package scorer implements the query scorer (spec.md §4.7): per-segment,
// per-field top-k scoring over a clustered posting index, pruning clusters
// via a summary/threshold comparison before ever touching the forward
// index.
//
// Grounded on search.go's iter.Seq-based result streaming and heap usage,
// adapted with a dense visited-doc bitset from
// github.com/bits-and-blooms/bitset and an optional document filter from
// github.com/RoaringBitmap/roaring/v2, matching SPEC_FULL's domain-stack
// wiring for large external doc-id filters.
package scorer
