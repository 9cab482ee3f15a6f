package merge

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/seismicdb/seismic/cluster"
	"github.com/seismicdb/seismic/model"
	"github.com/seismicdb/seismic/posting"
	"github.com/seismicdb/seismic/resource"
	"github.com/seismicdb/seismic/sparsevec"
)

// BatchSize is the approximate number of terms grouped into one clustering
// task (spec.md §4.6: "batch size ≈ 50").
const BatchSize = 50

// InputSegment is one merge input: a posting source per term, plus the
// doc-id remap the host computed for this merge.
type InputSegment struct {
	// Postings returns this segment's posting list for term, or (nil, false)
	// if the segment has no postings for it. Weights returned are either
	// already-quantized bytes (Native true) or raw float32 frequencies that
	// still need quantization.
	Postings func(term string) (entries []RawPosting, native bool, ok bool)

	// Remap translates this segment's old DocID to the merged segment's new
	// DocID. A false second return means the document was dropped by the
	// host (e.g. deleted) and must be skipped.
	Remap func(old model.DocID) (model.DocID, bool)
}

// RawPosting is one (docId, weight) pair as read from an input segment,
// before doc-id translation and quantization.
type RawPosting struct {
	DocID       model.DocID
	Byte        byte    // valid when the segment is native-sparse
	RawFrequency float32 // valid otherwise
}

// Options configures one merge run.
type Options struct {
	ClusterRatio      float32
	SummaryPruneRatio float32
	MaxWorkers        int // <= 0 => 4; ignored when Controller is set
	RNGSeed           func(term string) int64
	Reader            cluster.VectorReader

	// Controller, if non-nil, bounds batch concurrency via
	// AcquireBackground/ReleaseBackground and throttles input reads via
	// AcquireIO instead of a merge-local semaphore — one process-wide
	// resource budget shared across concurrent merges and background
	// population (spec.md §5, "unchanged from spec.md §5": IO and worker
	// concurrency are host-wide resources, not per-merge ones).
	Controller *resource.Controller

	// EstimatedBytesPerTerm sizes the AcquireIO throttle call per term when
	// Controller is set. 0 disables IO throttling even with a Controller.
	EstimatedBytesPerTerm int
}

// Result is one term's merged, reclustered output, in submission order.
type Result struct {
	Term     string
	Clusters *cluster.PostingClusters
	Err      error
}

// CollectTerms returns termUniverse deduplicated and sorted (spec.md §4.6
// step 1). termUniverse must enumerate every term any input knows about;
// CollectTerms does not check whether any input has a non-empty posting
// for a term, it only dedups and sorts for deterministic batching.
func CollectTerms(termUniverse []string) []string {
	seen := make(map[string]struct{}, len(termUniverse))
	out := make([]string, 0, len(termUniverse))
	for _, t := range termUniverse {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// GetMergedPostingForATerm builds the merged, translated, quantized posting
// list for one term across every input segment (spec.md §4.6 step 2).
// Doc ids in the result are NOT necessarily sorted. RandomClustering does
// not require sorted input and sorts each cluster's members by doc id,
// the order codec encoding requires.
func GetMergedPostingForATerm(term string, inputs []InputSegment) (posting.List, error) {
	var merged posting.List
	for _, in := range inputs {
		raws, native, ok := in.Postings(term)
		if !ok {
			continue
		}
		for _, raw := range raws {
			newID, kept := in.Remap(raw.DocID)
			if !kept {
				continue
			}
			var w byte
			if native {
				w = raw.Byte
			} else {
				w = sparsevec.QuantizeClamp(raw.RawFrequency)
			}
			merged = append(merged, posting.DocWeight{DocID: newID, Weight: w})
		}
	}
	return merged, nil
}

// Run executes the full merge pipeline for terms (spec.md §4.6 steps 3-4):
// batches of BatchSize terms are reclustered in parallel via a semaphore-
// bounded worker pool (ClusterRatio==0 batches run inline, matching the
// spec's "executed inline, no scheduling"); results are returned in the
// same order as terms, regardless of completion order, so the caller's
// output dictionary preserves term ordering.
func Run(ctx context.Context, terms []string, inputs []InputSegment, opts Options) ([]Result, error) {
	results := make([]Result, len(terms))
	algo := func(seed int64) cluster.Algorithm {
		return cluster.RandomClustering{
			ClusterRatio:      opts.ClusterRatio,
			SummaryPruneRatio: opts.SummaryPruneRatio,
			RNG:               newSeededRNG(seed),
		}
	}

	if opts.ClusterRatio == 0 {
		for i, term := range terms {
			if err := throttleRead(ctx, opts); err != nil {
				return nil, err
			}
			results[i] = mergeOneTerm(term, inputs, algo, opts)
		}
		return results, ctx.Err()
	}

	var sem *semaphore.Weighted
	if opts.Controller == nil {
		maxWorkers := int64(opts.MaxWorkers)
		if maxWorkers <= 0 {
			maxWorkers = 4
		}
		sem = semaphore.NewWeighted(maxWorkers)
	}
	g, gctx := errgroup.WithContext(ctx)

	for start := 0; start < len(terms); start += BatchSize {
		end := start + BatchSize
		if end > len(terms) {
			end = len(terms)
		}
		batch := terms[start:end]
		base := start

		if sem != nil {
			if err := sem.Acquire(gctx, 1); err != nil {
				break
			}
		} else if err := opts.Controller.AcquireBackground(gctx); err != nil {
			break
		}
		g.Go(func() error {
			if sem != nil {
				defer sem.Release(1)
			} else {
				defer opts.Controller.ReleaseBackground()
			}
			for i, term := range batch {
				if err := throttleRead(gctx, opts); err != nil {
					return err
				}
				results[base+i] = mergeOneTerm(term, inputs, algo, opts)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// throttleRead applies the Controller's IO rate limit, if configured, to
// one term's input reads before clustering it.
func throttleRead(ctx context.Context, opts Options) error {
	if opts.Controller == nil || opts.EstimatedBytesPerTerm <= 0 {
		return nil
	}
	return opts.Controller.AcquireIO(ctx, opts.EstimatedBytesPerTerm)
}

func mergeOneTerm(term string, inputs []InputSegment, algo func(int64) cluster.Algorithm, opts Options) Result {
	list, err := GetMergedPostingForATerm(term, inputs)
	if err != nil {
		return Result{Term: term, Err: err}
	}

	var seed int64
	if opts.RNGSeed != nil {
		seed = opts.RNGSeed(term)
	}
	clusters, err := algo(seed).Cluster(list, opts.Reader)
	if err != nil {
		return Result{Term: term, Err: err}
	}
	return Result{Term: term, Clusters: &cluster.PostingClusters{Clusters: clusters}}
}
