// Package postingstore implements the clustered-posting store (spec.md
// §4.4): a term -> PostingClusters map for one (segment, field), plus a
// cache-gated reader composing an in-memory store with a persisted
// fallback, mirroring forwardindex's CacheGatedForwardIndexReader.
//
// Grounded on blobstore/caching_store.go's "check memory, fall back to
// persisted, opportunistically populate" composition and on
// vectorstore.ColumnarStore's sync.Map-backed term dictionary.
package postingstore
