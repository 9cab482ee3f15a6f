// Package seismic implements a SEISMIC-style approximate nearest-neighbor
// index over sparse vectors: quantized token/weight postings are clustered
// per term, pruned to compact coordinate-wise-max summaries, and queried by
// skipping whole clusters whose summary score cannot beat the current top-k
// threshold.
//
// # Quick start
//
//	mgr := cachemgr.New(512 << 20) // 512MiB budget
//	idx := seismic.NewIndex(mgr, config.NewSettings())
//	field := idx.OpenField(model.CacheKey{SegmentID: 1, FieldID: 0}, config.NewFieldMapping(), 1024)
//
//	field.Insert(0, map[model.Token]float32{1000: 0.4, 2000: 0.9})
//
//	hits, err := field.Query(config.QueryParams{
//	    QueryTokens: map[uint32]float32{1000: 0.1, 2000: 0.2},
//	    K:           10,
//	    QueryCut:    2,
//	    HeapFactor:  1.0,
//	})
//
// One (segment, field) pair is a Field: a forward index, a clustered
// posting index, and the field's mapping parameters. An Index is a
// registry of Fields sharing one cache manager and one Settings value.
package seismic
