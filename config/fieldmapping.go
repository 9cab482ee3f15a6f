package config

// BlobStoreBackend selects the storage backend a field's flushed segments
// are written to and read from (SPEC_FULL.md's domain-stack commitment to
// making the same codec work against local disk, S3, or MinIO).
type BlobStoreBackend string

const (
	// BlobStoreBackendLocal mmaps segment blobs from the local filesystem.
	BlobStoreBackendLocal BlobStoreBackend = "local"
	// BlobStoreBackendS3 stores segment blobs in Amazon S3 (or S3 Express),
	// committing the segment-sealed marker through a DynamoDB commit store.
	BlobStoreBackendS3 BlobStoreBackend = "s3"
	// BlobStoreBackendMinio stores segment blobs in a MinIO-compatible
	// object store.
	BlobStoreBackendMinio BlobStoreBackend = "minio"
)

// FieldMapping holds one sparse field's creation-time parameters (spec.md
// §6's per-field table). Immutable once the field is created.
type FieldMapping struct {
	// NPostings is the max retained posting length per term. -1 resolves
	// (per document count) to max(DefaultPostingPruneRatio*docCount,
	// DefaultPostingMinimumLength) — see ResolvedNPostings.
	NPostings int

	// SummaryPruneRatio is the fraction of summary mass that may be dropped.
	SummaryPruneRatio float32

	// ClusterRatio sizes clusters per posting length; 0 disables clustering.
	ClusterRatio float32

	// ApproximateThreshold is the minimum doc count needed to enable
	// SEISMIC clustering; below it the field degrades to plain postings.
	ApproximateThreshold int

	// BlobStoreBackend selects where this field's flushed segments live.
	// Defaults to BlobStoreBackendLocal.
	BlobStoreBackend BlobStoreBackend
}

// FieldMappingOption configures a FieldMapping.
type FieldMappingOption func(*FieldMapping)

// WithNPostings overrides the retained posting length cap.
func WithNPostings(n int) FieldMappingOption {
	return func(f *FieldMapping) { f.NPostings = n }
}

// WithSummaryPruneRatio overrides the summary pruning ratio.
func WithSummaryPruneRatio(r float32) FieldMappingOption {
	return func(f *FieldMapping) { f.SummaryPruneRatio = r }
}

// WithClusterRatio overrides the cluster ratio.
func WithClusterRatio(r float32) FieldMappingOption {
	return func(f *FieldMapping) { f.ClusterRatio = r }
}

// WithApproximateThreshold overrides the doc-count threshold that enables
// SEISMIC clustering.
func WithApproximateThreshold(n int) FieldMappingOption {
	return func(f *FieldMapping) { f.ApproximateThreshold = n }
}

// WithBlobStoreBackend overrides the storage backend for this field's
// flushed segments.
func WithBlobStoreBackend(b BlobStoreBackend) FieldMappingOption {
	return func(f *FieldMapping) { f.BlobStoreBackend = b }
}

// NewFieldMapping builds a FieldMapping with spec.md §6 defaults, then
// applies opts.
func NewFieldMapping(opts ...FieldMappingOption) FieldMapping {
	f := FieldMapping{
		NPostings:            6000,
		SummaryPruneRatio:    0.4,
		ClusterRatio:         0.1,
		ApproximateThreshold: 1_000_000,
		BlobStoreBackend:     BlobStoreBackendLocal,
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// ResolvedNPostings returns NPostings if non-negative, otherwise resolves
// the -1 convention against docCount (spec.md §6).
func (f FieldMapping) ResolvedNPostings(docCount int) int {
	if f.NPostings >= 0 {
		return f.NPostings
	}
	resolved := int(DefaultPostingPruneRatio * float64(docCount))
	if resolved < DefaultPostingMinimumLength {
		return DefaultPostingMinimumLength
	}
	return resolved
}

// UsesApproximateIndex reports whether docCount crosses the approximate
// threshold, i.e. whether SEISMIC clustering applies rather than plain
// postings (spec.md §4.6 step 2's "approximateThreshold <= totalDocs").
func (f FieldMapping) UsesApproximateIndex(docCount int) bool {
	return f.ApproximateThreshold <= docCount
}
