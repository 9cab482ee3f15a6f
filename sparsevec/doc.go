// Package sparsevec implements the sparse-vector primitive shared by the
// forward index, the clustering engine, and the query scorer.
//
// A Vector is an ordered sequence of (token, weight) items, tokens strictly
// ascending and weights quantized to an unsigned byte. Two dot-product forms
// are provided: a merge-walk form for sparse-vs-sparse (used by clustering,
// which compares candidate centers against member vectors) and a dense-probe
// form for sparse-vs-dense (used by the scorer, which densifies the query
// once and scores many postings against it).
package sparsevec
