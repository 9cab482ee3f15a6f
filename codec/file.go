package codec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteHeader writes the fixed file header followed by the length-prefixed
// suffix string.
func WriteHeader(w io.Writer, h *FileHeader) error {
	var fixed [20]byte
	binary.LittleEndian.PutUint32(fixed[0:4], MagicNumber)
	binary.LittleEndian.PutUint32(fixed[4:8], Version)
	binary.LittleEndian.PutUint64(fixed[8:16], h.SegmentID)
	binary.LittleEndian.PutUint32(fixed[16:20], uint32(len(h.Suffix)))
	if _, err := w.Write(fixed[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, h.Suffix)
	return err
}

// ReadHeader reads and validates the fixed file header.
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var fixed [20]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return nil, err
	}
	magic := binary.LittleEndian.Uint32(fixed[0:4])
	if magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, magic)
	}
	version := binary.LittleEndian.Uint32(fixed[4:8])
	if version != Version {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedVersion, version)
	}
	segmentID := binary.LittleEndian.Uint64(fixed[8:16])
	suffixLen := binary.LittleEndian.Uint32(fixed[16:20])

	suffix := make([]byte, suffixLen)
	if _, err := io.ReadFull(r, suffix); err != nil {
		return nil, err
	}
	return &FileHeader{Magic: magic, Version: version, SegmentID: segmentID, Suffix: string(suffix)}, nil
}

// WriteFooter appends the 4-byte little-endian CRC32 footer.
func WriteFooter(w io.Writer, checksum uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], checksum)
	_, err := w.Write(b[:])
	return err
}

// ReadFooter reads the 4-byte little-endian CRC32 footer.
func ReadFooter(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// SaveToFile atomically writes the bytes produced by writeFunc to filename:
// it writes to a temp file in the same directory, fsyncs, then renames over
// the target so readers never observe a partial file (persistence's
// SaveToFile pattern).
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()
	_ = tmp.Chmod(0o644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	tmpName = ""
	return nil
}

// LoadFromFile opens filename and passes a buffered reader to readFunc.
func LoadFromFile(filename string, readFunc func(io.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	buf := bufio.NewReaderSize(f, 256*1024)
	return readFunc(buf)
}
