// Package codec implements the on-disk binary format for one segment's
// posting data (spec.md §4.5): a fixed file header, a sequence of
// variable-length per-term cluster records, and a CRC32 footer checksum
// validated whenever a segment reader is opened.
//
// Grounded on persistence/format.go (fixed FileHeader layout),
// persistence/checksum.go (ChecksumWriter/ChecksumReader wrapping CRC32),
// and persistence/binary.go's SaveToFile/LoadFromFile atomic
// temp-file-then-rename pattern. Per-term records use standard varint
// encoding (encoding/binary.*Varint) rather than persistence's fixed-width
// unsafe-slice layout, since cluster sizes are unbounded and need
// variable-length fields.
package codec
