package model

import "fmt"

// SegmentID is the unique identifier for an immutable segment.
type SegmentID uint64

// FieldID is the unique identifier for a sparse-vector field within a segment.
type FieldID uint32

// DocID is a dense, segment-local document identifier assigned at flush time.
// It is strictly 32-bit: a single segment never holds more than 2^31 documents.
type DocID int32

// Token is the 32-bit token identifier a sparse vector weight is keyed by.
type Token uint32

// CacheKey identifies one (segment, field) cache partition. Equality is by
// both fields; it is the granularity at which a whole segment/field pair is
// evicted (e.g. on segment delete).
type CacheKey struct {
	SegmentID SegmentID
	FieldID   FieldID
}

// String renders the key for structured logging.
func (k CacheKey) String() string {
	return fmt.Sprintf("seg(%d)/field(%d)", k.SegmentID, k.FieldID)
}

// TermKey refines a CacheKey to a single posting term, for posting-store
// eviction accounting.
type TermKey struct {
	CacheKey
	Term string
}

// CacheKeyOf returns the (segment, field) partition this key belongs to, so
// eviction code can purge by segment without knowing the refined key shape.
func (k TermKey) CacheKeyOf() CacheKey { return k.CacheKey }

// DocKey refines a CacheKey to a single document, for forward-index eviction
// accounting.
type DocKey struct {
	CacheKey
	DocID DocID
}

// CacheKeyOf returns the (segment, field) partition this key belongs to.
func (k DocKey) CacheKeyOf() CacheKey { return k.CacheKey }

// Location is a fully-qualified address for one document within one segment
// and field, used in logs and error messages.
type Location struct {
	SegmentID SegmentID
	FieldID   FieldID
	DocID     DocID
}

func (l Location) String() string {
	return fmt.Sprintf("seg(%d)/field(%d)/doc(%d)", l.SegmentID, l.FieldID, l.DocID)
}
