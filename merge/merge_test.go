package merge_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seismicdb/seismic/merge"
	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/resource"
	"github.com/seismicdb/seismic/sparsevec"
)

func TestCollectTermsDedupsAndSorts(t *testing.T) {
	got := merge.CollectTerms([]string{"banana", "apple", "banana", "cherry"})
	assert.Equal(t, []string{"apple", "banana", "cherry"}, got)
}

func TestGetMergedPostingForATermTranslatesAndDropsUnmapped(t *testing.T) {
	seg := merge.InputSegment{
		Postings: func(term string) ([]merge.RawPosting, bool, bool) {
			if term != "apple" {
				return nil, false, false
			}
			return []merge.RawPosting{
				{DocID: 0, Byte: 10},
				{DocID: 1, Byte: 20},
				{DocID: 2, Byte: 30},
			}, true, true
		},
		Remap: func(old model.DocID) (model.DocID, bool) {
			if old == 1 {
				return 0, false // dropped by host
			}
			return old + 10, true
		},
	}

	got, err := merge.GetMergedPostingForATerm("apple", []merge.InputSegment{seg})
	require.NoError(t, err)
	require.Len(t, got, 2)

	byDoc := map[model.DocID]byte{}
	for _, e := range got {
		byDoc[e.DocID] = e.Weight
	}
	assert.Equal(t, byte(10), byDoc[10])
	assert.Equal(t, byte(30), byDoc[12])
}

func TestGetMergedPostingForATermQuantizesNonNativeFrequencies(t *testing.T) {
	seg := merge.InputSegment{
		Postings: func(term string) ([]merge.RawPosting, bool, bool) {
			return []merge.RawPosting{{DocID: 0, RawFrequency: 1000.0}}, false, true
		},
		Remap: func(old model.DocID) (model.DocID, bool) { return old, true },
	}
	got, err := merge.GetMergedPostingForATerm("t", []merge.InputSegment{seg})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, byte(255), got[0].Weight) // clamped, not overflow-erroring
}

type fakeReader struct{ vecs map[model.DocID]*sparsevec.Vector }

func (f *fakeReader) Read(docID model.DocID) (*sparsevec.Vector, error) {
	return f.vecs[docID], nil
}

func termPostings(entries map[model.DocID]byte) func(string) ([]merge.RawPosting, bool, bool) {
	return func(term string) ([]merge.RawPosting, bool, bool) {
		if term != "apple" {
			return nil, false, false
		}
		out := make([]merge.RawPosting, 0, len(entries))
		for d, w := range entries {
			out = append(out, merge.RawPosting{DocID: d, Byte: w})
		}
		return out, true, true
	}
}

func identityRemap(old model.DocID) (model.DocID, bool) { return old, true }

func TestRunPreservesTermOrderAcrossParallelBatches(t *testing.T) {
	reader := &fakeReader{vecs: map[model.DocID]*sparsevec.Vector{}}
	for i := model.DocID(0); i < 5; i++ {
		v, err := sparsevec.New([]sparsevec.Item{{Token: 1, Weight: 10}})
		require.NoError(t, err)
		reader.vecs[i] = v
	}

	// 120 distinct terms span three BatchSize batches, two running at once.
	terms := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		terms = append(terms, "term"+strconv.Itoa(i))
	}

	inputs := []merge.InputSegment{{
		Postings: termPostings(map[model.DocID]byte{0: 10, 1: 20, 2: 30, 3: 40, 4: 50}),
		Remap:    identityRemap,
	}}

	results, err := merge.Run(context.Background(), terms, inputs, merge.Options{
		ClusterRatio:      0.5,
		SummaryPruneRatio: 0.1,
		MaxWorkers:        2,
		Reader:            reader,
		RNGSeed:           func(term string) int64 { return int64(len(term)) },
	})
	require.NoError(t, err)
	require.Len(t, results, len(terms))
	for i, r := range results {
		assert.Equal(t, terms[i], r.Term)
		assert.NoError(t, r.Err)
		assert.NotNil(t, r.Clusters)
	}
}

func TestRunUsesControllerInsteadOfLocalSemaphore(t *testing.T) {
	reader := &fakeReader{vecs: map[model.DocID]*sparsevec.Vector{}}
	for i := model.DocID(0); i < 3; i++ {
		v, err := sparsevec.New([]sparsevec.Item{{Token: 1, Weight: 10}})
		require.NoError(t, err)
		reader.vecs[i] = v
	}

	inputs := []merge.InputSegment{{
		Postings: termPostings(map[model.DocID]byte{0: 10, 1: 20, 2: 30}),
		Remap:    identityRemap,
	}}

	ctrl := resource.NewController(resource.Config{MaxBackgroundWorkers: 1})
	terms := []string{"a", "b", "c"}
	results, err := merge.Run(context.Background(), terms, inputs, merge.Options{
		ClusterRatio:          0.5,
		SummaryPruneRatio:     0.1,
		Reader:                reader,
		Controller:            ctrl,
		EstimatedBytesPerTerm: 64,
	})
	require.NoError(t, err)
	require.Len(t, results, len(terms))
	for i, r := range results {
		assert.Equal(t, terms[i], r.Term)
		assert.NoError(t, r.Err)
	}
	assert.Zero(t, ctrl.MemoryUsage())
}

func TestRunClusterRatioZeroRunsInline(t *testing.T) {
	reader := &fakeReader{vecs: map[model.DocID]*sparsevec.Vector{}}
	v, err := sparsevec.New([]sparsevec.Item{{Token: 1, Weight: 10}})
	require.NoError(t, err)
	reader.vecs[0] = v

	inputs := []merge.InputSegment{{
		Postings: termPostings(map[model.DocID]byte{0: 10}),
		Remap:    identityRemap,
	}}

	results, err := merge.Run(context.Background(), []string{"apple"}, inputs, merge.Options{
		ClusterRatio: 0,
		Reader:       reader,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Clusters)
	assert.True(t, results[0].Clusters.Clusters[0].ShouldNotSkip)
}
