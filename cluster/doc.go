// Package cluster implements the posting-clustering engine (spec.md §4.2):
// partitioning one term's posting list into clusters whose members are
// mutually similar, and computing a pruned summary vector per cluster that
// upper-bounds every member's dot product with a query (spec.md §8,
// invariant 5).
//
// Grounded on the original RandomClustering/PostingsProcessor.summarize
// (see _examples/original_source) and, for the random-assignment shape, on
// quantization.ProductQuantizer's k-means-style nearest-centroid assignment
// loop (quantization/pq.go) — adapted from float32 centroids to sparse
// integer dot products.
package cluster
