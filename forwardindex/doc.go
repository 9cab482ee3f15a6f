// Package forwardindex implements the forward index (spec.md §4.3): a dense
// docId -> sparse vector mapping for one (segment, field), plus a
// cache-gated reader composing an in-memory store with a persisted
// fallback.
//
// Grounded on vectorstore.ColumnarStore's atomic.Pointer slot array
// (lock-free reads, single-writer-per-slot publish) and on
// blobstore.caching_store.go's "check memory, fall back to persisted,
// opportunistically populate" composition.
package forwardindex
