package cluster

import (
	"math"
	"math/rand"
	"sort"

	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/posting"
	"github.com/seismicdb/seismic/sparsevec"
)

// Algorithm clusters one term's posting list into DocumentClusters. Multiple
// implementations can share this signature (spec.md §4.2); RandomClustering
// is the default and only one specified here.
type Algorithm interface {
	Cluster(docs posting.List, reader VectorReader) ([]DocumentCluster, error)
}

// RandomClustering is the default clustering algorithm (spec.md §4.2).
//
// The RNG is always explicit and task-scoped (never a shared/global
// generator, per spec.md §9's design note and §5's "RNG used by clustering:
// per-task; never shared") so that merge batches running concurrently in
// the worker pool never contend on, or get correlated draws from, one
// source.
type RandomClustering struct {
	ClusterRatio      float32
	SummaryPruneRatio float32
	RNG               *rand.Rand
}

// Cluster implements Algorithm.
func (rc RandomClustering) Cluster(docs posting.List, reader VectorReader) ([]DocumentCluster, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	if rc.ClusterRatio == 0 {
		// Disables pruning entirely: a single unprunable cluster, always
		// scored (spec.md §4.2 step 1, §8 invariant 7).
		docIDs := make([]model.DocID, len(docs))
		weights := make([]byte, len(docs))
		for i, d := range docs {
			docIDs[i] = d.DocID
			weights[i] = d.Weight
		}
		return []DocumentCluster{{
			DocIDs:        docIDs,
			Weights:       weights,
			Summary:       nil,
			ShouldNotSkip: true,
		}}, nil
	}

	n := len(docs)
	numClusters := int(math.Ceil(float64(n) * float64(rc.ClusterRatio)))
	if numClusters < 1 {
		numClusters = 1
	}
	if numClusters > n {
		numClusters = n
	}

	centerIdx := distinctRandomIndices(rc.RNG, n, numClusters)
	centers := make([]*sparsevec.Vector, numClusters)
	for i, idx := range centerIdx {
		v, err := reader.Read(docs[idx].DocID)
		if err != nil {
			return nil, err
		}
		centers[i] = v
	}

	buckets := make([][]posting.DocWeight, numClusters)
	memberVecs := make([][]*sparsevec.Vector, numClusters)

	for _, dw := range docs {
		v, err := reader.Read(dw.DocID)
		if err != nil {
			return nil, err
		}
		if v == nil {
			// Reader has no vector for this doc; drop it (spec.md §4.2
			// step 5).
			continue
		}
		dense := v.ToDense(maxCenterToken(centers, v))
		best := 0
		bestScore := int32(math.MinInt32)
		for i, c := range centers {
			var score int32 = math.MinInt32
			if c != nil {
				score = c.DotDense(dense)
			}
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		buckets[best] = append(buckets[best], dw)
		memberVecs[best] = append(memberVecs[best], v)
	}

	clusters := make([]DocumentCluster, 0, numClusters)
	for i := range buckets {
		if len(buckets[i]) == 0 {
			continue
		}
		members := buckets[i]
		// Sort ascending by docId within the cluster (spec.md §4.2 step 6).
		sortDocWeights(members)

		docIDs := make([]model.DocID, len(members))
		weights := make([]byte, len(members))
		for j, m := range members {
			docIDs[j] = m.DocID
			weights[j] = m.Weight
		}

		summary := Summarize(memberVecs[i], rc.SummaryPruneRatio)
		clusters = append(clusters, DocumentCluster{
			DocIDs:        docIDs,
			Weights:       weights,
			Summary:       summary,
			ShouldNotSkip: false,
		})
	}
	return clusters, nil
}

// distinctRandomIndices draws k distinct indices uniformly from [0, n)
// without replacement (spec.md §4.2 step 3: "Draw k distinct doc indices
// uniformly at random without replacement").
func distinctRandomIndices(rng *rand.Rand, n, k int) []int {
	perm := rng.Perm(n)
	return perm[:k]
}

func maxCenterToken(centers []*sparsevec.Vector, v *sparsevec.Vector) model.Token {
	max := v.MaxToken()
	for _, c := range centers {
		if c != nil && c.MaxToken() > max {
			max = c.MaxToken()
		}
	}
	return max
}

func sortDocWeights(members []posting.DocWeight) {
	sort.Slice(members, func(i, j int) bool { return members[i].DocID < members[j].DocID })
}
