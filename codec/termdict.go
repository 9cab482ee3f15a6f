package codec

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"sort"
)

// TermDictionary maps each term in a segment/field to the byte offset of
// its record in the companion posting file (spec.md §4.5).
type TermDictionary struct {
	offsets map[string]int64
	terms   []string // ascending by term for deterministic dictionary iteration
}

// NewTermDictionary builds a dictionary from offsets, sorted lexically so
// its on-disk form (and GetTerms output) is deterministic.
func NewTermDictionary(offsets map[string]int64) *TermDictionary {
	terms := make([]string, 0, len(offsets))
	for t := range offsets {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return &TermDictionary{offsets: offsets, terms: terms}
}

// Offset returns the term's record offset, and whether it exists.
func (d *TermDictionary) Offset(term string) (int64, bool) {
	off, ok := d.offsets[term]
	return off, ok
}

// Terms returns every term in the dictionary, in ascending order.
func (d *TermDictionary) Terms() []string { return d.terms }

// WriteTermDictionary writes a term dictionary file: a varint count,
// followed by (varint termLen, term bytes, varint offset) per entry, in
// ascending term order.
func WriteTermDictionary(path string, offsets map[string]int64) error {
	dict := NewTermDictionary(offsets)
	return SaveToFile(path, func(w io.Writer) error {
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

// LoadTermDictionary reads a term dictionary file written by
// WriteTermDictionary.
func LoadTermDictionary(path string) (*TermDictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReaderSize(f, 64*1024)

	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	offsets := make(map[string]int64, count)
	for i := uint64(0); i < count; i++ {
		termLen, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}
		termBytes := make([]byte, termLen)
		if _, err := io.ReadFull(r, termBytes); err != nil {
			return nil, err
		}
		offset, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}
		offsets[string(termBytes)] = int64(offset)
	}
	return NewTermDictionary(offsets), nil
}
