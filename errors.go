package seismic

import (
	"errors"
	"fmt"

	"github.com/seismicdb/seismic/codec"
)

// Sentinel error kinds (spec.md §7). Use errors.Is against these, or
// errors.As against the richer *Error wrapper for operation context.
var (
	// ErrIO means an underlying read/write failed. It propagates as-is.
	// forwardindex's and postingstore's CacheGated* readers return every
	// persisted-read error to the caller; they do not turn any error,
	// transient or not, into "not present".
	ErrIO = errors.New("seismic: io error")

	// ErrCorruption means a checksum mismatch, magic-byte mismatch, or a
	// decoded-record invariant violation (e.g. non-ascending doc ids).
	// Non-recoverable: the affected segment must be treated as unusable.
	ErrCorruption = errors.New("seismic: corruption error")

	// ErrVersion means the codec version of an on-disk file is unknown.
	ErrVersion = errors.New("seismic: unsupported codec version")

	// ErrBudget means the cache manager refused a reserve. Background
	// population suppresses this (warm caches are best-effort); explicit
	// caller-driven writes return it.
	ErrBudget = errors.New("seismic: cache budget exceeded")

	// ErrInvariant means an internal bug was detected (e.g. doc id overflow
	// during merge). Treat as fatal.
	ErrInvariant = errors.New("seismic: invariant violation")

	// ErrCancelled means cooperative cancellation interrupted the
	// operation; partial results may still be valid.
	ErrCancelled = errors.New("seismic: cancelled")
)

// Error wraps one of the sentinel kinds above with operation context.
type Error struct {
	Kind    error
	Op      string
	Segment uint64
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("seismic: %s (segment %d): %v: %v", e.Op, e.Segment, e.Kind, e.cause)
	}
	return fmt.Sprintf("seismic: %s (segment %d): %v", e.Op, e.Segment, e.Kind)
}

func (e *Error) Unwrap() error { return e.Kind }

// Cause returns the underlying error that triggered this one, if any.
func (e *Error) Cause() error { return e.cause }

func wrapError(kind error, op string, segment uint64, cause error) error {
	return &Error{Kind: kind, Op: op, Segment: segment, cause: cause}
}

// translateCodecError maps a codec-layer error to the matching seismic
// sentinel kind, giving callers above the storage layer a single,
// consistent error taxonomy to switch on (spec.md §7).
func translateCodecError(op string, segment uint64, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, codec.ErrChecksumMismatch),
		errors.Is(err, codec.ErrInvalidMagic),
		errors.Is(err, codec.ErrNonAscendingDocID),
		errors.Is(err, codec.ErrNonAscendingToken):
		return wrapError(ErrCorruption, op, segment, err)
	case errors.Is(err, codec.ErrUnsupportedVersion):
		return wrapError(ErrVersion, op, segment, err)
	default:
		return wrapError(ErrIO, op, segment, err)
	}
}
