// Package model defines the identifiers shared across the seismic core.
//
// # Identity Types
//
//   - SegmentID: unique identifier for an immutable segment
//   - FieldID: unique identifier for a sparse-vector field within a segment
//   - DocID: segment-local document identifier (dense, assigned at flush time)
//   - CacheKey: (SegmentID, FieldID) pair used as the cache eviction granularity
//   - TermKey / DocKey: CacheKey refined to term or document granularity
package model
