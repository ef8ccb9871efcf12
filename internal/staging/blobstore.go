// Package staging implements the local-first staging area for uploaded course
// outlines: a durable blob adapter, a repository enforcing the one-binary /
// one-metadata-record pairing, and a volatile metadata-only fallback for
// environments without a usable staging directory.
package staging

import (
	"context"
	"io"
)

// BlobStore is a thin uniform surface over a flat, durable blob namespace.
// Implementations keep no in-memory cache; every call round-trips to the
// backing store.
type BlobStore interface {
	// Write creates or fully replaces the named entry with the reader's
	// content. No partial overwrite: after Write returns nil the entry holds
	// exactly the bytes that were read.
	Write(ctx context.Context, name string, r io.Reader) error

	// Read opens the named entry for reading. Missing entries yield an error
	// satisfying errors.Is(err, fs.ErrNotExist).
	Read(ctx context.Context, name string) (io.ReadCloser, error)

	// Remove deletes the named entry. Removing a name that does not exist is
	// not an error.
	Remove(ctx context.Context, name string) error

	// List returns the names of all entries currently present. Order is not
	// guaranteed; callers may re-enumerate at any time.
	List(ctx context.Context) ([]string, error)
}
