package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/seismicdb/seismic/cluster"
)

// WriteSegmentFile writes a complete posting file for one (segment, field):
// header, then each term's record back-to-back in terms' iteration order,
// then a CRC32 footer covering every record byte. It returns each term's
// byte offset within the file so callers can build the companion
// term-dictionary file (spec.md §4.5: "the term-dictionary file stores, per
// term, the file offset of the record above, enabling O(1) random access").
func WriteSegmentFile(path string, header *FileHeader, terms []string, postings map[string]*cluster.PostingClusters) (map[string]int64, error) {
	offsets := make(map[string]int64, len(terms))

	err := SaveToFile(path, func(w io.Writer) error {
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

func headerByteLen(h *FileHeader) int64 {
	return 20 + int64(len(h.Suffix))
}

// ReadSegmentFileTerm opens path, seeks to offset, and decodes exactly one
// term's record. It does not re-verify the footer checksum — callers
// needing whole-file integrity should call VerifySegmentFile once when a
// segment is opened, not on every random-access lookup.
func ReadSegmentFileTerm(path string, offset int64) (*cluster.PostingClusters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	return ReadRecord(f)
}

// VerifySegmentFile reads path end to end, validates the header, and checks
// the trailing CRC32 footer against the record bytes in between (spec.md
// §4.5: "All reads MUST validate the checksum on open and signal a
// corruption error on mismatch").
func VerifySegmentFile(path string) (*FileHeader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("codec: file too short to contain a footer")
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
