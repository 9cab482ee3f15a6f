package codec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/seismicdb/seismic/cluster"
	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/sparsevec"
)

// WriteRecord encodes one term's clusters per spec.md §4.5:
//
//	record := numClusters (varu64)
//	          cluster{numClusters}
//	cluster := numDocs (varu64)
//	           (docId varu32, weightByte) x numDocs
//	           shouldNotSkip (u8)
//	           summaryLen (varu64)
//	           (token varu32, weightByte) x summaryLen
//
// docIds and summary tokens must already be strictly ascending (the
// invariant clustering and merging are responsible for); WriteRecord
// validates this defensively and returns an error rather than silently
// writing a corrupt record.
func WriteRecord(w io.Writer, pc *cluster.PostingClusters) error {
	var buf [binary.MaxVarintLen64]byte

	writeUvarint := func(v uint64) error {
		n := binary.PutUvarint(buf[:], v)
		_, err := w.Write(buf[:n])
		return err
	}

	if err := writeUvarint(uint64(len(pc.Clusters))); err != nil {
		return err
	}
	for ci := range pc.Clusters {
		c := &pc.Clusters[ci]
		if err := writeCluster(w, c, writeUvarint); err != nil {
			return fmt.Errorf("codec: cluster %d: %w", ci, err)
		}
	}
	return nil
}

func writeCluster(w io.Writer, c *cluster.DocumentCluster, writeUvarint func(uint64) error) error {
	if err := writeUvarint(uint64(len(c.DocIDs))); err != nil {
		return err
	}
	var prev model.DocID = -1
	for i, d := range c.DocIDs {
		if d <= prev {
			return ErrNonAscendingDocID
		}
		prev = d
		if err := writeUvarint(uint64(d)); err != nil {
			return err
		}
		if _, err := w.Write([]byte{c.Weights[i]}); err != nil {
			return err
		}
	}

	var shouldNotSkip byte
	if c.ShouldNotSkip {
		shouldNotSkip = 1
	}
	if _, err := w.Write([]byte{shouldNotSkip}); err != nil {
		return err
	}

	if c.Summary == nil {
		return writeUvarint(0)
	}
	if err := writeUvarint(uint64(len(c.Summary.Items))); err != nil {
		return err
	}
	var prevTok model.Token
	first := true
	for _, it := range c.Summary.Items {
		if !first && it.Token <= prevTok {
			return ErrNonAscendingToken
		}
		prevTok = it.Token
		first = false
		if err := writeUvarint(uint64(it.Token)); err != nil {
			return err
		}
		if _, err := w.Write([]byte{it.Weight}); err != nil {
			return err
		}
	}
	return nil
}

// ReadRecord decodes one term's clusters as written by WriteRecord,
// validating ascending-order invariants on the way in so corrupt or
// hand-edited files are rejected rather than silently misread.
func ReadRecord(r io.Reader) (*cluster.PostingClusters, error) {
	br := recordAsByteReader(r)

	numClusters, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	pc := &cluster.PostingClusters{Clusters: make([]cluster.DocumentCluster, numClusters)}
	for ci := uint64(0); ci < numClusters; ci++ {
		c, err := readCluster(br)
		if err != nil {
			return nil, fmt.Errorf("codec: cluster %d: %w", ci, err)
		}
		pc.Clusters[ci] = *c
	}
	return pc, nil
}

func readCluster(br io.ByteReader) (*cluster.DocumentCluster, error) {
	numDocs, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	c := &cluster.DocumentCluster{
		DocIDs:  make([]model.DocID, numDocs),
		Weights: make([]byte, numDocs),
	}
	var prev model.DocID = -1
	rr, ok := br.(io.Reader)
	if !ok {
		return nil, fmt.Errorf("codec: reader does not support byte reads")
	}
	for i := uint64(0); i < numDocs; i++ {
		d, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, err
		}
		docID := model.DocID(d)
		if docID <= prev {
			return nil, ErrNonAscendingDocID
		}
		prev = docID
		c.DocIDs[i] = docID

		var wb [1]byte
		if _, err := io.ReadFull(rr, wb[:]); err != nil {
			return nil, err
		}
		c.Weights[i] = wb[0]
	}

	var flag [1]byte
	if _, err := io.ReadFull(rr, flag[:]); err != nil {
		return nil, err
	}
	c.ShouldNotSkip = flag[0] != 0

	summaryLen, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	if summaryLen == 0 {
		return c, nil
	}

	items := make([]sparsevec.Item, summaryLen)
	var prevTok model.Token
	first := true
	for i := uint64(0); i < summaryLen; i++ {
		tv, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, err
		}
		tok := model.Token(tv)
		if !first && tok <= prevTok {
			return nil, ErrNonAscendingToken
		}
		prevTok = tok
		first = false

		var wb [1]byte
		if _, err := io.ReadFull(rr, wb[:]); err != nil {
			return nil, err
		}
		items[i] = sparsevec.Item{Token: tok, Weight: wb[0]}
	}
	summary, err := sparsevec.New(items)
	if err != nil {
		return nil, fmt.Errorf("codec: summary: %w", err)
	}
	c.Summary = summary
	return c, nil
}

// byteReader adapts an io.Reader lacking ReadByte. *bufio.Reader needs no
// adapter, but *os.File (ReadSegmentFileTerm) and *io.SectionReader
// (SegmentReader.Read) both go through this path.
type byteReader struct {
	io.Reader
	buf [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.Reader, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}

func recordAsByteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return &byteReader{Reader: r}
}
