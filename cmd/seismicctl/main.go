// Command seismicctl builds a segment from a newline-delimited JSON corpus,
// clusters it through the same merge path a live host would use to
// recluster a real segment, optionally flushes it to disk via the codec
// package, and runs one query against the result — a small runnable
// driver exercising the index end to end, the way a host application
// would build and query a segment in production.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/seismicdb/seismic"
	"github.com/seismicdb/seismic/cachemgr"
	"github.com/seismicdb/seismic/cluster"
	"github.com/seismicdb/seismic/codec"
	"github.com/seismicdb/seismic/config"
	"github.com/seismicdb/seismic/merge"
	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/sparsevec"
)

// corpusDoc is one line of the newline-delimited JSON input: a document id
// and its sparse token->weight map, keyed by the caller's own term strings
// (the host's tokenizer output — field.go's design note is that term<->
// token identity is the host's responsibility, not this module's).
type corpusDoc struct {
	ID     int32              `json:"id"`
	Tokens map[string]float32 `json:"tokens"`
}

func main() {
	corpusPath := flag.String("corpus", "", "path to a newline-delimited JSON corpus (required)")
	outDir := flag.String("out", "", "directory to flush the built segment into (optional)")
	queryStr := flag.String("query", "", "query as comma-separated term:weight pairs, e.g. \"queen:0.8,woman:0.6\"")
	k := flag.Int("k", 10, "number of results to return")
	heapFactor := flag.Float64("heap-factor", 1.0, "SEISMIC heap-pruning factor")
	clusterRatio := flag.Float64("cluster-ratio", 0.1, "fraction of a term's posting length used as cluster count")
	summaryPruneRatio := flag.Float64("summary-prune-ratio", 0.4, "fraction of summary mass droppable per cluster")
	segmentID := flag.Uint64("segment-id", 1, "segment id to stamp the built segment with")
	flag.Parse()

	if *corpusPath == "" {
		log.Fatal("seismicctl: -corpus is required")
	}

	docs, dict, err := loadCorpus(*corpusPath)
	if err != nil {
		log.Fatalf("seismicctl: loading corpus: %v", err)
	}
	fmt.Printf("loaded %d documents, %d distinct terms\n", len(docs), dict.len())

	logger := seismic.NewTextLogger(0)
	mgr := cachemgr.New(cachemgr.Unlimited)
	settings := config.NewSettings(config.WithStatsEnabled(true))
	idx := seismic.NewIndex(mgr, settings).WithLogger(logger)
	defer idx.Close()

	mapping := config.NewFieldMapping(
		config.WithClusterRatio(float32(*clusterRatio)),
		config.WithSummaryPruneRatio(float32(*summaryPruneRatio)),
	)
	field := idx.OpenField(model.CacheKey{SegmentID: model.SegmentID(*segmentID), FieldID: 0}, mapping, len(docs))

	vectors := make(map[model.DocID]*sparsevec.Vector, len(docs))
	postingsByTerm := make(map[string][]merge.RawPosting)
	for _, d := range docs {
		weights := make(map[model.Token]float32, len(d.Tokens))
		for term, w := range d.Tokens {
			weights[dict.token(term)] = w
		}
		if err := field.Insert(model.DocID(d.ID), weights); err != nil {
			log.Fatalf("seismicctl: inserting doc %d: %v", d.ID, err)
		}
		v, err := sparsevec.FromMap(weights)
		if err != nil {
			log.Fatalf("seismicctl: doc %d: %v", d.ID, err)
		}
		vectors[model.DocID(d.ID)] = v
		for _, item := range v.Items {
			term := dict.term(item.Token)
			postingsByTerm[term] = append(postingsByTerm[term], merge.RawPosting{
				DocID: model.DocID(d.ID),
				Byte:  item.Weight,
			})
		}
	}

	fmt.Println("clustering (forcing a merge of the freshly built segment)...")
	clusters, err := forceMerge(dict, postingsByTerm, vectors, mapping)
	if err != nil {
		log.Fatalf("seismicctl: merge: %v", err)
	}
	for term, pc := range clusters {
		field.PublishClusters(term, pc)
	}
	fmt.Printf("clustered %d terms\n", len(clusters))

	if *outDir != "" {
		if err := flushSegment(*outDir, *segmentID, clusters); err != nil {
			log.Fatalf("seismicctl: flush: %v", err)
		}
		fmt.Printf("flushed segment to %s\n", *outDir)
	}

	if *queryStr != "" {
		params, err := parseQuery(*queryStr, dict, *k, *heapFactor)
		if err != nil {
			log.Fatalf("seismicctl: query: %v", err)
		}
		results, err := field.Query(params)
		if err != nil {
			log.Fatalf("seismicctl: query: %v", err)
		}
		fmt.Printf("query %q: %d results\n", *queryStr, len(results))
		for i, r := range results {
			fmt.Printf("  %d. doc=%d score=%d\n", i+1, r.DocID, r.Score)
		}
	}

	snap := field.Stats().Snapshot()
	fmt.Printf("stats: clusters scored=%d skipped=%d, docs visited=%d scored=%d\n",
		snap.ClustersScored, snap.ClustersSkipped, snap.DocsVisited, snap.DocsScored)
}

// loadCorpus reads corpusPath line by line, decoding each line as a
// corpusDoc, and builds the term<->token dictionary this run uses.
func loadCorpus(path string) ([]corpusDoc, *termDict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	dict := newTermDict()
	var docs []corpusDoc
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var d corpusDoc
		if err := json.Unmarshal(line, &d); err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", len(docs)+1, err)
		}
		for term := range d.Tokens {
			dict.token(term)
		}
		docs = append(docs, d)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return docs, dict, nil
}

// forceMerge runs every known term's freshly inserted postings through
// merge.Run, exactly as a background merge would recluster a real segment's
// postings (merge.Options.Reader resolves cluster centers/members from the
// same in-memory vectors seismicctl just inserted).
func forceMerge(dict *termDict, postingsByTerm map[string][]merge.RawPosting, vectors map[model.DocID]*sparsevec.Vector, mapping config.FieldMapping) (map[string]*cluster.PostingClusters, error) {
	terms := dict.terms()
	sort.Strings(terms)

	input := merge.InputSegment{
		Postings: func(term string) ([]merge.RawPosting, bool, bool) {
			raws, ok := postingsByTerm[term]
			return raws, true, ok
		},
		Remap: func(old model.DocID) (model.DocID, bool) { return old, true },
	}

	results, err := merge.Run(context.Background(), terms, []merge.InputSegment{input}, merge.Options{
		ClusterRatio:      mapping.ClusterRatio,
		SummaryPruneRatio: mapping.SummaryPruneRatio,
		RNGSeed:           func(term string) int64 { return int64(fnv32(term)) },
		Reader:            mapVectorReader(vectors),
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]*cluster.PostingClusters, len(results))
	for _, r := range results {
		if r.Err != nil {
			return nil, fmt.Errorf("term %q: %w", r.Term, r.Err)
		}
		if r.Clusters == nil || len(r.Clusters.Clusters) == 0 {
			continue
		}
		out[r.Term] = r.Clusters
	}
	return out, nil
}

// mapVectorReader adapts an in-memory doc->vector map to cluster.VectorReader.
type mapVectorReader map[model.DocID]*sparsevec.Vector

func (r mapVectorReader) Read(docID model.DocID) (*sparsevec.Vector, error) {
	return r[docID], nil
}

// flushSegment writes the built segment's postings and term dictionary to
// disk under dir via the codec package, then verifies the checksum footer
// it just wrote (spec.md §4.5: "All reads MUST validate the checksum on
// open and signal a corruption error on mismatch").
func flushSegment(dir string, segmentID uint64, clusters map[string]*cluster.PostingClusters) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	terms := make([]string, 0, len(clusters))
	for term := range clusters {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	postingPath := filepath.Join(dir, fmt.Sprintf("%d.field0.postings", segmentID))
	dictPath := filepath.Join(dir, fmt.Sprintf("%d.field0.dict", segmentID))

	header := &codec.FileHeader{SegmentID: segmentID, Suffix: "field0"}
	offsets, err := codec.WriteSegmentFile(postingPath, header, terms, clusters)
	if err != nil {
		return err
	}
	if err := codec.WriteTermDictionary(dictPath, offsets); err != nil {
		return err
	}
	_, err = codec.VerifySegmentFile(postingPath)
	return err
}

// parseQuery decodes a "term:weight,term:weight" string into QueryParams,
// resolving terms through dict. A term absent from the dictionary is
// silently skipped, matching spec.md §4.7's "seek to term t; if absent,
// skip" rather than failing the whole query.
func parseQuery(s string, dict *termDict, k int, heapFactor float64) (config.QueryParams, error) {
	tokens := make(map[uint32]float32)
	for _, pair := range splitNonEmpty(s, ',') {
		kv := splitNonEmpty(pair, ':')
		if len(kv) != 2 {
			return config.QueryParams{}, fmt.Errorf("malformed query pair %q", pair)
		}
		tok, ok := dict.lookup(kv[0])
		if !ok {
			continue
		}
		var w float64
		if _, err := fmt.Sscanf(kv[1], "%g", &w); err != nil {
			return config.QueryParams{}, fmt.Errorf("malformed weight in %q: %w", pair, err)
		}
		tokens[uint32(tok)] = float32(w)
	}
	return config.QueryParams{
		QueryTokens: tokens,
		K:           k,
		HeapFactor:  heapFactor,
	}, nil
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func fnv32(s string) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}
	return h
}

// termDict is seismicctl's own term<->token bookkeeping: the module treats
// tokens as opaque integers (field.go's design note), so a standalone tool
// driving a raw corpus needs its own small dictionary the way a real host
// application's tokenizer would provide one.
type termDict struct {
	byTerm map[string]model.Token
	byTok  map[model.Token]string
	next   model.Token
}

func newTermDict() *termDict {
	return &termDict{byTerm: make(map[string]model.Token), byTok: make(map[model.Token]string)}
}

func (d *termDict) token(term string) model.Token {
	if tok, ok := d.byTerm[term]; ok {
		return tok
	}
	tok := d.next
	d.next++
	d.byTerm[term] = tok
	d.byTok[tok] = term
	return tok
}

func (d *termDict) term(tok model.Token) string { return d.byTok[tok] }

func (d *termDict) lookup(term string) (model.Token, bool) {
	tok, ok := d.byTerm[term]
	return tok, ok
}

func (d *termDict) terms() []string {
	out := make([]string, 0, len(d.byTerm))
	for t := range d.byTerm {
		out = append(out, t)
	}
	return out
}

func (d *termDict) len() int { return len(d.byTerm) }
