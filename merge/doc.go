// Package merge implements the segment merge pipeline (spec.md §4.6):
// collecting the union of terms across S input segments, translating old
// doc ids to new ones, re-deriving quantized weights where needed, and
// reclustering each term in parallel batches.
//
// Grounded on engine/worker_pool.go for the "fixed pool, bounded
// concurrency" shape, adapted to golang.org/x/sync/errgroup +
// golang.org/x/sync/semaphore so batch failures propagate via error
// (the worker pool's fire-and-forget Submit has no return channel) and
// results are collected into a preallocated, index-addressed slice —
// preserving submission order without an explicit futures queue. When
// Options.Controller is set, resource.Controller (grounded on
// resource/controller.go) governs both batch concurrency and input-read
// throughput instead of a merge-local semaphore, so one process-wide
// budget is shared across concurrent merges.
package merge
