// Package cachemgr implements the cache manager (spec.md §4.8, §9's "long-
// lived singleton registries... explicit module-wide state with well-
// defined initialization and teardown"): a byte-budgeted registry with two
// sub-caches (forward-index items by DocKey, posting items by TermKey),
// least-recently-used eviction on budget refusal, and bulk purge by
// CacheKey when a segment is deleted.
//
// Grounded on internal/cache/lru.go + internal/cache/sharded_lru.go
// (container/list LRU) composed with a single atomic byte counter as the
// shared budget (no sharding, no resource.Controller) — adapted here so that
// eviction releases call back into the owning store (ForwardIndex /
// ClusteredPostingIndex) rather than holding the cached bytes itself, since
// spec.md's C4/C5 stores own their values directly.
package cachemgr
