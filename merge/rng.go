package merge

import "math/rand"

// newSeededRNG derives a clustering RNG from a per-term seed, so merge
// output is reproducible across re-runs on the same inputs when the host
// supplies a deterministic RNGSeed function (spec.md §4.6: "idempotent...
// deterministic under a seed derived from segment identity").
func newSeededRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
