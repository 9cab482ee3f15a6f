package codec

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/seismicdb/seismic/blobstore"
	"github.com/seismicdb/seismic/cluster"
)

// SaveToBlob writes the bytes produced by writeFunc to store under name.
// Atomicity is the backing BlobStore's responsibility (LocalStore renames a
// temp file into place; the S3/MinIO stores PUT in one shot or behind a
// multipart commit) rather than codec's, mirroring SaveToFile's contract one
// layer up.
func SaveToBlob(ctx context.Context, store blobstore.BlobStore, name string, writeFunc func(io.Writer) error) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	buf := bufio.NewWriterSize(w, 256*1024)
	if err := writeFunc(buf); err != nil {
		_ = w.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Sync(); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// LoadFromBlob opens name and passes a full-range reader to readFunc.
func LoadFromBlob(ctx context.Context, store blobstore.BlobStore, name string, readFunc func(io.Reader) error) error {
	b, err := store.Open(ctx, name)
	if err != nil {
		return err
	}
	defer b.Close()
	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return err
	}
	defer rc.Close()
	return readFunc(bufio.NewReaderSize(rc, 256*1024))
}

// WriteSegmentBlob is WriteSegmentFile's blobstore-backed twin: it writes
// the same header/records/footer layout to store under name instead of to a
// filesystem path, so the same (segment, field) record format serves a
// local-disk segment and an S3 or MinIO one identically.
func WriteSegmentBlob(ctx context.Context, store blobstore.BlobStore, name string, header *FileHeader, terms []string, postings map[string]*cluster.PostingClusters) (map[string]int64, error) {
	offsets := make(map[string]int64, len(terms))

	err := SaveToBlob(ctx, store, name, func(w io.Writer) error {
		if err := WriteHeader(w, header); err != nil {
			return err
		}
		cw := NewChecksumWriter(w)

		offset := headerByteLen(header)
		for _, term := range terms {
			pc, ok := postings[term]
			if !ok {
				return fmt.Errorf("codec: term %q missing from postings map", term)
			}
			var buf bytes.Buffer
			if err := WriteRecord(&buf, pc); err != nil {
				return fmt.Errorf("codec: term %q: %w", term, err)
			}
			offsets[term] = offset
			if _, err := cw.Write(buf.Bytes()); err != nil {
				return err
			}
			offset += int64(buf.Len())
		}
		return WriteFooter(w, cw.Sum())
	})
	if err != nil {
		return nil, err
	}
	return offsets, nil
}

// ReadSegmentBlobTerm opens name in store and decodes exactly one term's
// record starting at offset, the way ReadSegmentFileTerm does for a
// filesystem path. It reads to the blob's end rather than re-deriving the
// record's exact byte length, since record decoding is self-delimiting.
func ReadSegmentBlobTerm(ctx context.Context, store blobstore.BlobStore, name string, offset int64) (*cluster.PostingClusters, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	rc, err := b.ReadRange(ctx, offset, b.Size()-offset)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadRecord(rc)
}

// VerifySegmentBlob is VerifySegmentFile's blobstore-backed twin: it reads
// name end to end, validates the header, and checks the trailing CRC32
// footer against the record bytes in between.
func VerifySegmentBlob(ctx context.Context, store blobstore.BlobStore, name string) (*FileHeader, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	size := b.Size()
	if size < 4 {
		return nil, fmt.Errorf("codec: blob %q too short to contain a footer", name)
	}
	data := make([]byte, size)
	if _, err := b.ReadAt(ctx, data, 0); err != nil && err != io.EOF {
		return nil, err
	}

	header, err := ReadHeader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	headerLen := headerByteLen(header)
	body := data[headerLen : len(data)-4]
	expected := binary.LittleEndian.Uint32(data[len(data)-4:])
	actual := crc32.ChecksumIEEE(body)
	if actual != expected {
		return nil, ErrChecksumMismatch
	}
	return header, nil
}

// WriteTermDictionaryBlob is WriteTermDictionary's blobstore-backed twin.
func WriteTermDictionaryBlob(ctx context.Context, store blobstore.BlobStore, name string, offsets map[string]int64) error {
	dict := NewTermDictionary(offsets)
	return SaveToBlob(ctx, store, name, func(w io.Writer) error {
		var buf [binary.MaxVarintLen64]byte
		writeUvarint := func(v uint64) error {
			n := binary.PutUvarint(buf[:], v)
			_, err := w.Write(buf[:n])
			return err
		}
		if err := writeUvarint(uint64(len(dict.terms))); err != nil {
			return err
		}
		for _, term := range dict.terms {
			if err := writeUvarint(uint64(len(term))); err != nil {
				return err
			}
			if _, err := io.WriteString(w, term); err != nil {
				return err
			}
			if err := writeUvarint(uint64(dict.offsets[term])); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadTermDictionaryBlob is LoadTermDictionary's blobstore-backed twin.
func LoadTermDictionaryBlob(ctx context.Context, store blobstore.BlobStore, name string) (*TermDictionary, error) {
	var offsets map[string]int64
	err := LoadFromBlob(ctx, store, name, func(r io.Reader) error {
		count, err := binary.ReadUvarint(asByteReader(r))
		if err != nil {
			return err
		}
		offsets = make(map[string]int64, count)
		for i := uint64(0); i < count; i++ {
			termLen, err := binary.ReadUvarint(asByteReader(r))
			if err != nil {
				return err
			}
			termBytes := make([]byte, termLen)
			if _, err := io.ReadFull(r, termBytes); err != nil {
				return err
			}
			offset, err := binary.ReadUvarint(asByteReader(r))
			if err != nil {
				return err
			}
			offsets[string(termBytes)] = int64(offset)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewTermDictionary(offsets), nil
}

// asByteReader adapts r to io.ByteReader for binary.ReadUvarint, relying on
// LoadFromBlob handing readFunc a *bufio.Reader (which already implements
// io.ByteReader) in the one path this is called from.
func asByteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// BlobSegmentReader is SegmentReader's blobstore-backed twin: the persisted,
// read-only side of one segment/field's posting data, addressed by blob
// name instead of filesystem path. It satisfies postingstore.PersistedReader.
type BlobSegmentReader struct {
	ctx      context.Context
	store    blobstore.BlobStore
	postName string
	dict     *TermDictionary
}

// OpenBlobSegmentReader verifies postName's checksum footer (via
// VerifySegmentBlob, returning ErrChecksumMismatch on a mismatch), then
// loads dictName's term dictionary from store and binds it to postName's
// record blob.
func OpenBlobSegmentReader(ctx context.Context, store blobstore.BlobStore, postName, dictName string) (*BlobSegmentReader, error) {
	if _, err := VerifySegmentBlob(ctx, store, postName); err != nil {
		return nil, err
	}
	dict, err := LoadTermDictionaryBlob(ctx, store, dictName)
	if err != nil {
		return nil, err
	}
	return &BlobSegmentReader{ctx: ctx, store: store, postName: postName, dict: dict}, nil
}

// Read decodes term's record, or returns (nil, nil) if term isn't in the
// dictionary.
func (r *BlobSegmentReader) Read(term string) (*cluster.PostingClusters, error) {
	offset, ok := r.dict.Offset(term)
	if !ok {
		return nil, nil
	}
	return ReadSegmentBlobTerm(r.ctx, r.store, r.postName, offset)
}

// GetTerms returns the dictionary's full, authoritative term universe.
func (r *BlobSegmentReader) GetTerms() ([]string, error) {
	return r.dict.Terms(), nil
}
