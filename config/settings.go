package config

import "runtime"

// DefaultPostingPruneRatio and DefaultPostingMinimumLength back the
// n_postings == -1 convention (spec.md §6): "max(DEFAULT_POSTING_PRUNE_RATIO
// * docCount, DEFAULT_POSTING_MINIMUM_LENGTH)".
const (
	DefaultPostingPruneRatio   = 0.1
	DefaultPostingMinimumLength = 1000
)

// Settings are the process-wide, host-exposed tunables (spec.md §6's
// neural.* keys).
type Settings struct {
	// IndexThreadQty is the merge clustering worker-pool size.
	// neural.sparse.algo_param.index_thread_qty. Nothing in this module
	// reads it: merge.Run sizes its pool from merge.Options.MaxWorkers,
	// which callers set themselves.
	IndexThreadQty int

	// CircuitBreakerLimitBytes is the cache byte budget.
	// neural.circuit_breaker_limit, already resolved from a percentage or
	// byte-size string to an absolute byte count. NewIndex does not apply
	// it: the Manager's budget is the value passed to cachemgr.New.
	CircuitBreakerLimitBytes int64

	// StatsEnabled turns on the telemetry counters (SPEC_FULL.md §10).
	// neural.stats_enabled.
	StatsEnabled bool

	// RerankerMaxDocumentFields bounds how many sparse fields a single
	// rerank pass may touch. neural.reranker_max_document_fields.
	RerankerMaxDocumentFields int
}

// SettingsOption configures a Settings value.
type SettingsOption func(*Settings)

// WithIndexThreadQty overrides the merge worker-pool size. n <= 0 leaves
// the computed default (max(1, cpus/2), clamped to [1, cpus]).
func WithIndexThreadQty(n int) SettingsOption {
	return func(s *Settings) {
		if n > 0 {
			s.IndexThreadQty = n
		}
	}
}

// WithCircuitBreakerLimitBytes sets CircuitBreakerLimitBytes. The value is
// recorded only; a Manager refuses every reserve when built with
// cachemgr.New(0) and never refuses when built with cachemgr.Unlimited.
func WithCircuitBreakerLimitBytes(bytes int64) SettingsOption {
	return func(s *Settings) { s.CircuitBreakerLimitBytes = bytes }
}

// WithStatsEnabled toggles telemetry counters.
func WithStatsEnabled(enabled bool) SettingsOption {
	return func(s *Settings) { s.StatsEnabled = enabled }
}

// WithRerankerMaxDocumentFields overrides the per-rerank field cap.
func WithRerankerMaxDocumentFields(n int) SettingsOption {
	return func(s *Settings) { s.RerankerMaxDocumentFields = n }
}

// NewSettings builds Settings with spec.md §6 defaults, then applies opts.
func NewSettings(opts ...SettingsOption) Settings {
	s := Settings{
		IndexThreadQty:            clamp(max(1, runtime.NumCPU()/2), 1, runtime.NumCPU()),
		CircuitBreakerLimitBytes:  -1,
		StatsEnabled:              false,
		RerankerMaxDocumentFields: 50,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
