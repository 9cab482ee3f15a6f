package postingstore_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seismicdb/seismic/cachemgr"
	"github.com/seismicdb/seismic/cluster"
	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/postingstore"
)

func sampleClusters() *cluster.PostingClusters {
	return &cluster.PostingClusters{
		Clusters: []cluster.DocumentCluster{
			{DocIDs: []model.DocID{0, 1}, Weights: []byte{10, 20}, ShouldNotSkip: true},
		},
	}
}

func TestInsertKeepsFirstForDuplicateTerm(t *testing.T) {
	ck := model.CacheKey{SegmentID: 1, FieldID: 0}
	idx := postingstore.New(ck, nil)

	first := sampleClusters()
	second := sampleClusters()
	second.Clusters[0].Weights[0] = 99

	require.True(t, idx.Insert("apple", first))
	require.False(t, idx.Insert("apple", second))

	got := idx.Read("apple")
	require.NotNil(t, got)
	assert.EqualValues(t, 10, got.Clusters[0].Weights[0])
}

func TestInsertRefusedByBudget(t *testing.T) {
	ck := model.CacheKey{SegmentID: 1, FieldID: 0}
	mgr := cachemgr.New(1) // budget far too small for any cluster
	idx := postingstore.New(ck, mgr)

	ok := idx.Insert("apple", sampleClusters())
	assert.False(t, ok)
	assert.Nil(t, idx.Read("apple"))
}

func TestGetTermsOnlyListsResidentTerms(t *testing.T) {
	ck := model.CacheKey{SegmentID: 1, FieldID: 0}
	idx := postingstore.New(ck, nil)

	idx.Insert("apple", sampleClusters())
	idx.Insert("banana", sampleClusters())

	terms := idx.GetTerms()
	assert.ElementsMatch(t, []string{"apple", "banana"}, terms)
	assert.Equal(t, 2, idx.Size())
}

type fakePersisted struct {
	values map[string]*cluster.PostingClusters
	terms  []string
	err    error
}

func (f *fakePersisted) Read(term string) (*cluster.PostingClusters, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.values[term], nil
}

func (f *fakePersisted) GetTerms() ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.terms, nil
}

func TestCacheGatedReaderFallsBackAndPopulates(t *testing.T) {
	ck := model.CacheKey{SegmentID: 1, FieldID: 0}
	mem := postingstore.New(ck, nil)
	persisted := &fakePersisted{
		values: map[string]*cluster.PostingClusters{"apple": sampleClusters()},
		terms:  []string{"apple", "banana"},
	}
	reader := postingstore.NewCacheGatedPostingsReader(mem, persisted)

	got, err := reader.Read("apple")
	require.NoError(t, err)
	require.NotNil(t, got)

	// Second read should now be served from memory; mutate the persisted
	// map to prove it isn't consulted again.
	persisted.values["apple"] = nil
	got2, err := reader.Read("apple")
	require.NoError(t, err)
	require.NotNil(t, got2)

	terms, err := reader.GetTerms()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"apple", "banana"}, terms)
}

func TestCacheGatedReaderPropagatesPersistedError(t *testing.T) {
	ck := model.CacheKey{SegmentID: 1, FieldID: 0}
	mem := postingstore.New(ck, nil)
	persisted := &fakePersisted{err: errors.New("disk read failed")}
	reader := postingstore.NewCacheGatedPostingsReader(mem, persisted)

	_, err := reader.Read("apple")
	assert.Error(t, err)
}

func TestCacheGatedReaderWithNilPersistedUsesMemoryOnly(t *testing.T) {
	ck := model.CacheKey{SegmentID: 1, FieldID: 0}
	mem := postingstore.New(ck, nil)
	mem.Insert("apple", sampleClusters())
	reader := postingstore.NewCacheGatedPostingsReader(mem, nil)

	got, err := reader.Read("apple")
	require.NoError(t, err)
	require.NotNil(t, got)

	terms, err := reader.GetTerms()
	require.NoError(t, err)
	assert.Equal(t, []string{"apple"}, terms)

	missing, err := reader.Read("banana")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
