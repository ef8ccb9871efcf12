package staging

import (
	"context"
	"io"

	"outlinehub/internal/model"
)

// Suffixes of the two parallel namespaces a staged entry occupies. The
// naming is a persistence contract: inspection tooling pairs `<id>.pdf`
// with its `<id>.meta.json` side-car.
const (
	BinarySuffix   = ".pdf"
	MetadataSuffix = ".meta.json"
)

// Repository is the domain-level CRUD surface over staged outlines. Every
// staged binary has exactly one metadata record; the repository owns that
// pairing, generates identity, and orders listings.
//
// All fallible operations return a *Error carrying one of the ErrorKind
// values; panics are reserved for programmer error.
type Repository interface {
	// Save stages a new file: it generates a fresh id, stamps the upload
	// time, writes the binary, then writes the metadata side-car. The
	// returned record is fully populated.
	Save(ctx context.Context, content io.Reader, draft model.StagedFileDraft) (*model.StagedFile, error)

	// Get opens the staged binary for id. It fails with KindNotFound when no
	// binary entry exists; it does not check the metadata counterpart.
	Get(ctx context.Context, id string) (io.ReadCloser, error)

	// List returns every valid metadata record, most recent upload first.
	// Records that fail schema validation are logged and skipped; one corrupt
	// entry never blocks listing of the rest.
	List(ctx context.Context) ([]model.StagedFile, error)

	// UpdateMetadata overwrites the metadata record for id wholesale
	// (last-write-wins, no merge). It is a strict update: a missing record
	// fails with KindNotFound, never an upsert.
	UpdateMetadata(ctx context.Context, id string, record model.StagedFile) error

	// Delete removes both the binary and metadata entries for id. Each
	// removal is best-effort; a missing counterpart does not fail the call.
	Delete(ctx context.Context, id string) error

	// ClearAll removes every entry in both namespaces. Per-entry removal
	// failures are swallowed, matching Delete's philosophy.
	ClearAll(ctx context.Context) error
}
