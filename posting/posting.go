package posting

import "github.com/seismicdb/seismic/model"

// DocWeight is a single raw posting entry: one document's quantized weight
// for one term. Sequences of DocWeight are ordered by DocID ascending.
type DocWeight struct {
	DocID  model.DocID
	Weight byte
}

// List is an ordered sequence of DocWeight entries for one term, as produced
// by ingestion before clustering groups them (spec.md §3, "raw postings").
type List []DocWeight

// Len, Less and Swap let a List be sorted with sort.Sort when an ingestion
// path appends out of order (e.g. concurrent per-shard accumulation).
func (l List) Len() int           { return len(l) }
func (l List) Less(i, j int) bool { return l[i].DocID < l[j].DocID }
func (l List) Swap(i, j int)      { l[i], l[j] = l[j], l[i] }
