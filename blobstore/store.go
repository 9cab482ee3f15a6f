package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for accessing segment blobs (term postings
// files, manifests, sealed markers) regardless of where they live: local
// disk, S3, S3 Express, or a MinIO-compatible store. A field's
// BlobStoreBackend selector picks the implementation; the codec layer only
// ever talks to this interface.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create opens a blob for writing. The blob is not visible to Open until
	// Close succeeds.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob atomically in one call.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns every blob name with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	// ReadAt reads len(p) bytes starting at off, context-aware so remote
	// backends can cancel an in-flight range request.
	ReadAt(ctx context.Context, p []byte, off int64) (n int, err error)
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
	// ReadRange streams a byte range without buffering the whole blob,
	// which cloud backends prefer over repeated ReadAt calls.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
}

// Mappable is an optional interface for Blobs that support memory mapping.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	// This is a zero-copy operation if supported.
	Bytes() ([]byte, error)
}

// WritableBlob is a handle to a blob being written. Close finalizes the
// write; for backends that upload in the background (S3), Close blocks
// until the upload completes or fails.
type WritableBlob interface {
	io.Writer
	io.Closer
	// Sync flushes any buffered data durably before Close, where the backend
	// supports it (local disk); a no-op for backends that are atomic on
	// Close alone (S3, MinIO, in-memory).
	Sync() error
}
