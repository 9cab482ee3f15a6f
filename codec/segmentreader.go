package codec

import (
	"io"

	"github.com/seismicdb/seismic/cluster"
	"github.com/seismicdb/seismic/internal/mmap"
)

// SegmentReader is the persisted, read-only side of one segment/field's
// posting data: a term dictionary plus the record file it points into,
// memory-mapped once at open time so repeated random-access term lookups
// (spec.md §4.5: "the term-dictionary file... enabling O(1) random access")
// never pay a fresh open/seek syscall each time. It satisfies
// postingstore.PersistedReader.
type SegmentReader struct {
	postings *mmap.File
	dict     *TermDictionary
}

// OpenSegmentReader verifies postingPath's checksum footer (via
// VerifySegmentFile, returning ErrChecksumMismatch on a mismatch), then
// loads dictPath's term dictionary and memory-maps postingPath's record
// file.
func OpenSegmentReader(postingPath, dictPath string) (*SegmentReader, error) {
	if _, err := VerifySegmentFile(postingPath); err != nil {
		return nil, err
	}
	dict, err := LoadTermDictionary(dictPath)
	if err != nil {
		return nil, err
	}
	f, err := mmap.OpenFile(postingPath)
	if err != nil {
		return nil, err
	}
	return &SegmentReader{postings: f, dict: dict}, nil
}

// Read decodes term's record, or returns (nil, nil) if term isn't in the
// dictionary.
func (r *SegmentReader) Read(term string) (*cluster.PostingClusters, error) {
	offset, ok := r.dict.Offset(term)
	if !ok {
		return nil, nil
	}
	sr := io.NewSectionReader(r.postings, offset, r.postings.Size()-offset)
	return ReadRecord(sr)
}

// GetTerms returns the dictionary's full, authoritative term universe.
func (r *SegmentReader) GetTerms() ([]string, error) {
	return r.dict.Terms(), nil
}

// Close unmaps the underlying posting file.
func (r *SegmentReader) Close() error {
	return r.postings.Close()
}
