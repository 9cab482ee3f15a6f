package cluster

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/posting"
	"github.com/seismicdb/seismic/sparsevec"
)

type mapReader map[model.DocID]*sparsevec.Vector

func (m mapReader) Read(id model.DocID) (*sparsevec.Vector, error) {
	return m[id], nil
}

func vec(t *testing.T, items ...sparsevec.Item) *sparsevec.Vector {
	t.Helper()
	v, err := sparsevec.New(items)
	require.NoError(t, err)
	return v
}

func TestRandomClusteringZeroRatioYieldsSingleUnprunableCluster(t *testing.T) {
	reader := mapReader{
		1: vec(t, sparsevec.Item{Token: 10, Weight: 5}),
		2: vec(t, sparsevec.Item{Token: 10, Weight: 9}),
	}
	docs := posting.List{{DocID: 1, Weight: 5}, {DocID: 2, Weight: 9}}

	rc := RandomClustering{ClusterRatio: 0, RNG: rand.New(rand.NewSource(1))}
	clusters, err := rc.Cluster(docs, reader)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.True(t, clusters[0].ShouldNotSkip)
	assert.Nil(t, clusters[0].Summary)
	assert.Equal(t, 2, clusters[0].Size())
}

func TestRandomClusteringPreservesTotalDocCount(t *testing.T) {
	reader := mapReader{}
	docs := make(posting.List, 0, 50)
	for i := 0; i < 50; i++ {
		v := vec(t, sparsevec.Item{Token: model.Token(i % 5), Weight: byte(1 + i%10)})
		reader[model.DocID(i)] = v
		docs = append(docs, posting.DocWeight{DocID: model.DocID(i), Weight: byte(1 + i%10)})
	}

	rc := RandomClustering{ClusterRatio: 0.2, SummaryPruneRatio: 0.4, RNG: rand.New(rand.NewSource(42))}
	clusters, err := rc.Cluster(docs, reader)
	require.NoError(t, err)

	total := 0
	seen := map[model.DocID]bool{}
	for _, c := range clusters {
		total += c.Size()
		prev := model.DocID(-1)
		for _, id := range c.DocIDs {
			assert.True(t, id > prev, "docIds must be strictly ascending within a cluster")
			assert.False(t, seen[id], "docId must not appear twice across clusters")
			seen[id] = true
			prev = id
		}
	}
	assert.Equal(t, len(docs), total)
}

func TestRandomClusteringDropsDocsWithMissingVector(t *testing.T) {
	reader := mapReader{
		1: vec(t, sparsevec.Item{Token: 1, Weight: 1}),
		// doc 2 has no vector
	}
	docs := posting.List{{DocID: 1, Weight: 1}, {DocID: 2, Weight: 1}}

	rc := RandomClustering{ClusterRatio: 1, RNG: rand.New(rand.NewSource(7))}
	clusters, err := rc.Cluster(docs, reader)
	require.NoError(t, err)

	total := 0
	for _, c := range clusters {
		total += c.Size()
	}
	assert.Equal(t, 1, total)
}

func TestSummarizeOnlyContainsTokensFromMembers(t *testing.T) {
	members := []*sparsevec.Vector{
		vec(t, sparsevec.Item{Token: 1, Weight: 10}, sparsevec.Item{Token: 2, Weight: 1}),
		vec(t, sparsevec.Item{Token: 1, Weight: 4}, sparsevec.Item{Token: 3, Weight: 8}),
	}
	s := Summarize(members, 0)

	tokens := map[model.Token]bool{}
	for _, m := range members {
		for _, it := range m.Items {
			tokens[it.Token] = true
		}
	}
	for _, it := range s.Items {
		assert.True(t, tokens[it.Token])
	}
	// coordinate-wise max
	for _, it := range s.Items {
		if it.Token == 1 {
			assert.Equal(t, byte(10), it.Weight)
		}
	}
}

func TestSummarizeUpperBoundsMemberDotProducts(t *testing.T) {
	members := []*sparsevec.Vector{
		vec(t, sparsevec.Item{Token: 1, Weight: 10}, sparsevec.Item{Token: 2, Weight: 50}),
		vec(t, sparsevec.Item{Token: 1, Weight: 200}, sparsevec.Item{Token: 3, Weight: 30}),
	}
	// SummaryPruneRatio=0 keeps the full coordinate-wise max, which must
	// upper-bound every member (spec.md §8 invariant 5).
	s := Summarize(members, 0)
	q := vec(t, sparsevec.Item{Token: 1, Weight: 7}, sparsevec.Item{Token: 2, Weight: 3}, sparsevec.Item{Token: 3, Weight: 9})
	dense := q.ToDense(q.MaxToken())

	summaryScore := s.DotDense(dense)
	for _, m := range members {
		assert.GreaterOrEqual(t, summaryScore, m.DotDense(dense))
	}
}
