package scorer_test

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seismicdb/seismic/cluster"
	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/scorer"
	"github.com/seismicdb/seismic/sparsevec"
)

type fakePostings struct {
	byTerm map[string]*cluster.PostingClusters
}

func (f *fakePostings) Read(term string) (*cluster.PostingClusters, error) {
	return f.byTerm[term], nil
}

type fakeVectors struct {
	byDoc map[model.DocID]*sparsevec.Vector
}

func (f *fakeVectors) Read(docID model.DocID) (*sparsevec.Vector, error) {
	return f.byDoc[docID], nil
}

func vec(t *testing.T, toks []uint32, weights []float32) *sparsevec.Vector {
	t.Helper()
	items := make([]sparsevec.Item, len(toks))
	for i := range toks {
		b, err := sparsevec.Quantize(weights[i])
		require.NoError(t, err)
		items[i] = sparsevec.Item{Token: model.Token(toks[i]), Weight: b}
	}
	v, err := sparsevec.New(items)
	require.NoError(t, err)
	return v
}

func termOf(tok model.Token) string {
	switch tok {
	case 1:
		return "alpha"
	case 2:
		return "beta"
	}
	return "unknown"
}

func TestScoreExactModeVisitsEveryClusterAndReturnsTopK(t *testing.T) {
	vectors := &fakeVectors{byDoc: map[model.DocID]*sparsevec.Vector{
		0: vec(t, []uint32{1}, []float32{1}),
		1: vec(t, []uint32{1}, []float32{5}),
		2: vec(t, []uint32{1}, []float32{2}),
	}}
	postings := &fakePostings{byTerm: map[string]*cluster.PostingClusters{
		"alpha": {Clusters: []cluster.DocumentCluster{
			{DocIDs: []model.DocID{0, 1, 2}, Weights: []byte{4, 20, 8}, ShouldNotSkip: true},
		}},
	}}

	q := scorer.Query{
		Vector:     vec(t, []uint32{1}, []float32{1}),
		K:          2,
		HeapFactor: 1.0,
		NumDocs:    3,
		TermOf:     termOf,
	}

	got, err := scorer.Score(q, postings, vectors, nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Top-2 by score are docs 1 (80) and 2 (32), sorted ascending by docId.
	assert.Equal(t, model.DocID(1), got[0].DocID)
	assert.Equal(t, model.DocID(2), got[1].DocID)
}

func TestScoreRecordsStatsWhenGiven(t *testing.T) {
	vectors := &fakeVectors{byDoc: map[model.DocID]*sparsevec.Vector{
		0: vec(t, []uint32{1}, []float32{1}),
		1: vec(t, []uint32{1}, []float32{5}),
		2: vec(t, []uint32{1}, []float32{2}),
	}}
	postings := &fakePostings{byTerm: map[string]*cluster.PostingClusters{
		"alpha": {Clusters: []cluster.DocumentCluster{
			{DocIDs: []model.DocID{0, 1, 2}, Weights: []byte{4, 20, 8}, ShouldNotSkip: true},
		}},
	}}

	q := scorer.Query{
		Vector:     vec(t, []uint32{1}, []float32{1}),
		K:          2,
		HeapFactor: 1.0,
		NumDocs:    3,
		TermOf:     termOf,
	}

	var stats scorer.Stats
	_, err := scorer.Score(q, postings, vectors, nil, &stats)
	require.NoError(t, err)

	snap := stats.Snapshot()
	assert.EqualValues(t, 1, snap.ClustersScored)
	assert.EqualValues(t, 0, snap.ClustersSkipped)
	assert.EqualValues(t, 3, snap.DocsVisited)
	assert.EqualValues(t, 3, snap.DocsScored)

	// A nil *Stats must not panic and reports a zero snapshot.
	var nilStats *scorer.Stats
	assert.Equal(t, scorer.StatsSnapshot{}, nilStats.Snapshot())
}

func TestScoreSkipsClusterWhenSummaryBelowThreshold(t *testing.T) {
	vectors := &fakeVectors{byDoc: map[model.DocID]*sparsevec.Vector{
		0: vec(t, []uint32{1}, []float32{50}),
		1: vec(t, []uint32{1}, []float32{50}),
		2: vec(t, []uint32{1}, []float32{0.25}), // low-scoring cluster
	}}
	hot, err := sparsevec.Quantize(50)
	require.NoError(t, err)
	cold, err := sparsevec.Quantize(0.25)
	require.NoError(t, err)

	postings := &fakePostings{byTerm: map[string]*cluster.PostingClusters{
		"alpha": {Clusters: []cluster.DocumentCluster{
			{
				DocIDs:  []model.DocID{0, 1},
				Weights: []byte{hot, hot},
				Summary: vec(t, []uint32{1}, []float32{50}),
			},
			{
				DocIDs:  []model.DocID{2},
				Weights: []byte{cold},
				Summary: vec(t, []uint32{1}, []float32{0.25}),
			},
		}},
	}}

	q := scorer.Query{
		Vector:     vec(t, []uint32{1}, []float32{1}),
		K:          2,
		HeapFactor: 1.0,
		NumDocs:    3,
		TermOf:     termOf,
	}

	got, err := scorer.Score(q, postings, vectors, nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, d := range got {
		assert.NotEqual(t, model.DocID(2), d.DocID)
	}
}

func TestScoreHonorsDocFilter(t *testing.T) {
	vectors := &fakeVectors{byDoc: map[model.DocID]*sparsevec.Vector{
		0: vec(t, []uint32{1}, []float32{10}),
		1: vec(t, []uint32{1}, []float32{20}),
	}}
	postings := &fakePostings{byTerm: map[string]*cluster.PostingClusters{
		"alpha": {Clusters: []cluster.DocumentCluster{
			{DocIDs: []model.DocID{0, 1}, Weights: []byte{40, 80}, ShouldNotSkip: true},
		}},
	}}

	filter := roaring.New()
	filter.Add(0)

	q := scorer.Query{
		Vector:     vec(t, []uint32{1}, []float32{1}),
		K:          5,
		HeapFactor: 1.0,
		Filter:     filter,
		NumDocs:    2,
		TermOf:     termOf,
	}

	got, err := scorer.Score(q, postings, vectors, nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.DocID(0), got[0].DocID)
}

func TestScoreSkipsAbsentTerm(t *testing.T) {
	vectors := &fakeVectors{byDoc: map[model.DocID]*sparsevec.Vector{}}
	postings := &fakePostings{byTerm: map[string]*cluster.PostingClusters{}}

	q := scorer.Query{
		Vector:     vec(t, []uint32{1}, []float32{1}),
		K:          5,
		HeapFactor: 1.0,
		NumDocs:    1,
		TermOf:     termOf,
	}
	got, err := scorer.Score(q, postings, vectors, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScoreRespectsCancellation(t *testing.T) {
	vectors := &fakeVectors{byDoc: map[model.DocID]*sparsevec.Vector{
		0: vec(t, []uint32{1}, []float32{1}),
	}}
	postings := &fakePostings{byTerm: map[string]*cluster.PostingClusters{
		"alpha": {Clusters: []cluster.DocumentCluster{
			{DocIDs: []model.DocID{0}, Weights: []byte{4}, ShouldNotSkip: true},
		}},
	}}

	var cancelled scorer.Cancelled
	cancelled.Store(true)

	q := scorer.Query{
		Vector:     vec(t, []uint32{1}, []float32{1}),
		K:          5,
		HeapFactor: 1.0,
		NumDocs:    1,
		TermOf:     termOf,
	}
	got, err := scorer.Score(q, postings, vectors, &cancelled, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPruneQueryKeepsTopWeightsAscendingByToken(t *testing.T) {
	v := vec(t, []uint32{1, 2, 3}, []float32{1, 10, 5})
	pruned := scorer.PruneQuery(v, 2)
	require.Len(t, pruned.Items, 2)
	assert.Equal(t, model.Token(2), pruned.Items[0].Token)
	assert.Equal(t, model.Token(3), pruned.Items[1].Token)
}

func TestPruneQueryNoopWhenUnderCut(t *testing.T) {
	v := vec(t, []uint32{1, 2}, []float32{1, 2})
	pruned := scorer.PruneQuery(v, 10)
	assert.Same(t, v, pruned)
}
