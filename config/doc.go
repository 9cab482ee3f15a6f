// Package config holds the tunables shared across seismic's components
// (spec.md's neural.* settings plus the ambient cache-budget and
// concurrency knobs SPEC_FULL.md adds), configured via a functional-options
// constructor with a WithXxx option pattern.
package config
