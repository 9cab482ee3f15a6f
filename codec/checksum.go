package codec

import (
	"hash"
	"hash/crc32"
	"io"
)

// crc32Table is the IEEE polynomial table used throughout the codec.
var crc32Table = crc32.MakeTable(crc32.IEEE)

// ChecksumWriter wraps an io.Writer and accumulates a running CRC32 over
// every byte written through it.
type ChecksumWriter struct {
	w    io.Writer
	hash hash.Hash32
}

// NewChecksumWriter wraps w.
func NewChecksumWriter(w io.Writer) *ChecksumWriter {
	return &ChecksumWriter{w: w, hash: crc32.New(crc32Table)}
}

// Write implements io.Writer.
func (cw *ChecksumWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	if n > 0 {
		cw.hash.Write(p[:n])
	}
	return n, err
}

// Sum returns the checksum of every byte written so far.
func (cw *ChecksumWriter) Sum() uint32 { return cw.hash.Sum32() }

// ChecksumReader wraps an io.Reader and accumulates a running CRC32 over
// every byte read through it.
type ChecksumReader struct {
	r    io.Reader
	hash hash.Hash32
}

// NewChecksumReader wraps r.
func NewChecksumReader(r io.Reader) *ChecksumReader {
	return &ChecksumReader{r: r, hash: crc32.New(crc32Table)}
}

// Read implements io.Reader.
func (cr *ChecksumReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}

// Sum returns the checksum of every byte read so far.
func (cr *ChecksumReader) Sum() uint32 { return cr.hash.Sum32() }

// Verify compares the accumulated checksum against expected.
func (cr *ChecksumReader) Verify(expected uint32) error {
	if cr.Sum() != expected {
		return ErrChecksumMismatch
	}
	return nil
}
