package seismic

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seismicdb/seismic/cachemgr"
	"github.com/seismicdb/seismic/cluster"
	"github.com/seismicdb/seismic/codec"
	"github.com/seismicdb/seismic/config"
	"github.com/seismicdb/seismic/merge"
	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/posting"
	"github.com/seismicdb/seismic/scorer"
	"github.com/seismicdb/seismic/sparsevec"
)

// TestScenarioS1RanksDocsByAscendingWeight is spec.md §8's literal S1:
// 8 docs with token weights growing with doc id score highest-id-first
// against a query that weighs both tokens positively.
func TestScenarioS1RanksDocsByAscendingWeight(t *testing.T) {
	mgr := cachemgr.New(cachemgr.Unlimited)
	idx := NewIndex(mgr, config.NewSettings())
	f := idx.OpenField(model.CacheKey{SegmentID: 1, FieldID: 0}, config.NewFieldMapping(config.WithClusterRatio(0)), 16)

	docIDs := make([]model.DocID, 0, 8)
	for i := 1; i <= 8; i++ {
		w := float32(i) * 0.1
		docID := model.DocID(i)
		require.NoError(t, f.Insert(docID, map[model.Token]float32{1000: w, 2000: w}))
		docIDs = append(docIDs, docID)
	}
	publishSingleClusterFromField(t, f, "t1000", docIDs)
	publishSingleClusterFromField(t, f, "t2000", docIDs)

	results, err := f.Query(config.QueryParams{
		QueryTokens: map[uint32]float32{1000: 0.1, 2000: 0.2},
		K:           10,
		QueryCut:    2,
		HeapFactor:  1.0,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 4)

	sortDescendingByScore(results)
	got := make([]model.DocID, 4)
	for i := 0; i < 4; i++ {
		got[i] = results[i].DocID
	}
	assert.Equal(t, []model.DocID{8, 7, 6, 5}, got)
}

// TestScenarioS2QueryCutKeepsOnlyTopWeightToken is spec.md §8's literal S2.
func TestScenarioS2QueryCutKeepsOnlyTopWeightToken(t *testing.T) {
	mgr := cachemgr.New(cachemgr.Unlimited)
	idx := NewIndex(mgr, config.NewSettings())
	f := idx.OpenField(model.CacheKey{SegmentID: 1, FieldID: 0}, config.NewFieldMapping(config.WithClusterRatio(0)), 16)

	for i := 1; i <= 8; i++ {
		w := float32(i) * 0.1
		require.NoError(t, f.Insert(model.DocID(i), map[model.Token]float32{1000: w, 2000: w}))
	}
	require.NoError(t, f.Insert(9, map[model.Token]float32{3000: 0.0001}))
	publishSingleClusterFromField(t, f, "t1000", docRange(1, 8))
	publishSingleClusterFromField(t, f, "t2000", docRange(1, 8))
	publishSingleClusterFromField(t, f, "t3000", []model.DocID{9})

	results, err := f.Query(config.QueryParams{
		QueryTokens: map[uint32]float32{1000: 0.1, 2000: 0.2, 3000: 64.0},
		K:           10,
		QueryCut:    1,
		HeapFactor:  1.0,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.DocID(9), results[0].DocID)
}

// TestScenarioS3HeapFactorTradesRecallForPruning is spec.md §8's literal S3.
func TestScenarioS3HeapFactorTradesRecallForPruning(t *testing.T) {
	mgr := cachemgr.New(cachemgr.Unlimited)
	idx := NewIndex(mgr, config.NewSettings())
	f := idx.OpenField(model.CacheKey{SegmentID: 1, FieldID: 0}, config.NewFieldMapping(config.WithClusterRatio(0.2)), 128)

	rng := rand.New(rand.NewSource(7))
	docIDs := make([]model.DocID, 0, 100)
	for i := 0; i < 100; i++ {
		w := float32(rng.Intn(200)) / 255.0
		require.NoError(t, f.Insert(model.DocID(i), map[model.Token]float32{500: w}))
		docIDs = append(docIDs, model.DocID(i))
	}

	list := make(posting.List, len(docIDs))
	for i, id := range docIDs {
		v := f.forward.Read(id)
		list[i] = posting.DocWeight{DocID: id, Weight: v.Items[0].Weight}
	}
	algo := cluster.RandomClustering{ClusterRatio: 0.2, SummaryPruneRatio: 0.4, RNG: rand.New(rand.NewSource(11))}
	clusters, err := algo.Cluster(list, forwardSourceAdapter{f.forward})
	require.NoError(t, err)
	require.True(t, f.PublishClusters("t500", &cluster.PostingClusters{Clusters: clusters}))

	strict, err := f.Query(config.QueryParams{QueryTokens: map[uint32]float32{500: 0.5}, K: 100, HeapFactor: 0.000001})
	require.NoError(t, err)
	assert.Less(t, len(strict), 100)

	exact, err := f.Query(config.QueryParams{QueryTokens: map[uint32]float32{500: 0.5}, K: 100, HeapFactor: 100000})
	require.NoError(t, err)
	assert.Equal(t, 100, len(exact))
}

// TestScenarioS4MergeThenCodecRoundTripPreservesClusters is spec.md §8's
// literal S4: build a segment's postings, merge/recluster them, persist via
// the binary codec, and confirm every cluster's doc ids and weights survive
// the round trip (property 8).
func TestScenarioS4MergeThenCodecRoundTripPreservesClusters(t *testing.T) {
	reader := fakeVectorReader{}
	input := merge.InputSegment{
		Postings: func(term string) ([]merge.RawPosting, bool, bool) {
			if term != "t10" {
				return nil, false, false
			}
			return []merge.RawPosting{
				{DocID: 0, Byte: 200},
				{DocID: 1, Byte: 150},
				{DocID: 2, Byte: 90},
			}, true, true
		},
		Remap: func(old model.DocID) (model.DocID, bool) { return old, true },
	}

	results, err := merge.Run(context.Background(), []string{"t10"}, []merge.InputSegment{input}, merge.Options{
		ClusterRatio:      0,
		SummaryPruneRatio: 0.4,
		Reader:            reader,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	dir := t.TempDir()
	path := filepath.Join(dir, "segment.bin")
	header := &codec.FileHeader{Magic: codec.MagicNumber, Version: codec.Version, SegmentID: 42, Suffix: "field0"}
	postings := map[string]*cluster.PostingClusters{"t10": results[0].Clusters}
	offsets, err := codec.WriteSegmentFile(path, header, []string{"t10"}, postings)
	require.NoError(t, err)

	gotHeader, err := codec.VerifySegmentFile(path)
	require.NoError(t, err)
	assert.Equal(t, header.SegmentID, gotHeader.SegmentID)

	reread, err := codec.ReadSegmentFileTerm(path, offsets["t10"])
	require.NoError(t, err)
	require.Len(t, reread.Clusters, len(results[0].Clusters.Clusters))
	for i := range reread.Clusters {
		assert.Equal(t, results[0].Clusters.Clusters[i].DocIDs, reread.Clusters[i].DocIDs)
		assert.Equal(t, results[0].Clusters.Clusters[i].Weights, reread.Clusters[i].Weights)
	}

	require.NoError(t, os.Remove(path))
}

// TestScenarioS5ZeroBudgetStillChargesSlotOverhead is spec.md §8's literal
// S5.
func TestScenarioS5ZeroBudgetStillChargesSlotOverhead(t *testing.T) {
	mgr := cachemgr.New(0)
	idx := NewIndex(mgr, config.NewSettings(config.WithCircuitBreakerLimitBytes(0)))
	f := idx.OpenField(model.CacheKey{SegmentID: 1, FieldID: 0}, config.NewFieldMapping(), 100)

	err := f.Insert(0, map[model.Token]float32{1: 0.5})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudget)

	assert.Greater(t, mgr.InUse(), int64(0))
}

// TestScenarioS6DeleteSegmentReturnsCacheToBaseline is spec.md §8's literal
// S6, exercised through the public Index API (see also
// TestIndexDeleteSegmentReturnsCacheToBaseline for the multi-field variant).
func TestScenarioS6DeleteSegmentReturnsCacheToBaseline(t *testing.T) {
	mgr := cachemgr.New(cachemgr.Unlimited)
	idx := NewIndex(mgr, config.NewSettings())
	baseline := mgr.InUse()

	f := idx.OpenField(model.CacheKey{SegmentID: 3, FieldID: 0}, config.NewFieldMapping(), 32)
	require.NoError(t, f.Insert(0, map[model.Token]float32{1: 0.5}))
	assert.NotEqual(t, baseline, mgr.InUse())

	idx.DeleteSegment(3)
	assert.Equal(t, baseline, mgr.InUse())
}

func publishSingleClusterFromField(t *testing.T, f *Field, term string, docIDs []model.DocID) {
	t.Helper()
	pc := &cluster.PostingClusters{Clusters: []cluster.DocumentCluster{{
		DocIDs:        docIDs,
		ShouldNotSkip: true,
	}}}
	require.True(t, f.PublishClusters(term, pc))
}

func docRange(from, to int) []model.DocID {
	out := make([]model.DocID, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, model.DocID(i))
	}
	return out
}

// fakeVectorReader satisfies cluster.VectorReader. It is unused when
// ClusterRatio is 0 (RandomClustering never reads member vectors in that
// branch), but the merge pipeline still requires a well-typed reader.
type fakeVectorReader map[model.DocID]*sparsevec.Vector

func (r fakeVectorReader) Read(id model.DocID) (*sparsevec.Vector, error) { return r[id], nil }

func sortDescendingByScore(results []scorer.ScoredDocument) {
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}
