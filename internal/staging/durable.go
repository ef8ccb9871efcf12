package staging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"outlinehub/internal/logger"
	"outlinehub/internal/model"
)

// FileRepository is the durable Repository implementation over a BlobStore.
// The backing store has no transactions, so Save orders its two writes
// (binary, then metadata) so that a metadata record is never visible while
// its binary is still missing, and rolls the binary back when the metadata
// write fails.
type FileRepository struct {
	blobs BlobStore
	log   *logger.Logger
	ids   stripedMutex
}

var _ Repository = (*FileRepository)(nil)

// NewFileRepository creates a repository over the given blob store.
func NewFileRepository(blobs BlobStore, log *logger.Logger) *FileRepository {
	return &FileRepository{
		blobs: blobs,
		log:   log.WithComponent("staging"),
	}
}

// Save stages content with its draft metadata under a fresh id.
func (r *FileRepository) Save(ctx context.Context, content io.Reader, draft model.StagedFileDraft) (*model.StagedFile, error) {
	if content == nil {
		return nil, newError(KindSaveFailed, "save", errors.New("content reader is nil"))
	}

	record := newStagedFile(draft)

	unlock := r.ids.lock(record.ID)
	defer unlock()

	binName := record.ID + BinarySuffix
	if err := r.blobs.Write(ctx, binName, content); err != nil {
		return nil, newError(KindSaveFailed, "save", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, newError(KindSaveFailed, "save", err)
	}
	if err := r.blobs.Write(ctx, record.ID+MetadataSuffix, bytes.NewReader(data)); err != nil {
		// Roll the binary back so no orphan survives a half-finished save.
		if rmErr := r.blobs.Remove(ctx, binName); rmErr != nil {
			r.log.Warn("orphaned binary left after failed metadata write",
				"id", record.ID, "error", rmErr)
		}
		return nil, newError(KindSaveFailed, "save", err)
	}

	return record, nil
}

// Get opens the staged binary for id.
func (r *FileRepository) Get(ctx context.Context, id string) (io.ReadCloser, error) {
	unlock := r.ids.lock(id)
	defer unlock()

	rc, err := r.blobs.Read(ctx, id+BinarySuffix)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(KindNotFound, "get", err)
		}
		return nil, newError(KindLoadFailed, "get", err)
	}
	return rc, nil
}

// List returns every valid metadata record, sorted by upload time descending.
func (r *FileRepository) List(ctx context.Context) ([]model.StagedFile, error) {
	names, err := r.blobs.List(ctx)
	if err != nil {
		return nil, newError(KindLoadFailed, "list", err)
	}

	files := make([]model.StagedFile, 0, len(names))
	for _, name := range names {
		if !strings.HasSuffix(name, MetadataSuffix) {
			continue
		}
		record, err := r.readMetadata(ctx, name)
		if err != nil {
			// A single corrupt or unreadable record must not block the rest.
			r.log.Warn("skipping unreadable metadata entry", "entry", name, "error", err)
			continue
		}
		files = append(files, *record)
	}

	sortByUploadedAtDesc(files)
	return files, nil
}

// UpdateMetadata overwrites the metadata record for id. Strict update: the
// record must already exist.
func (r *FileRepository) UpdateMetadata(ctx context.Context, id string, record model.StagedFile) error {
	if record.ID != id {
		return newError(KindValidationFailed, "update",
			errors.New("record id does not match target id"))
	}
	if err := record.Validate(); err != nil {
		return newError(KindValidationFailed, "update", err)
	}

	unlock := r.ids.lock(id)
	defer unlock()

	name := id + MetadataSuffix
	rc, err := r.blobs.Read(ctx, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newError(KindNotFound, "update", err)
		}
		return newError(KindUpdateFailed, "update", err)
	}
	rc.Close()

	data, err := json.Marshal(record)
	if err != nil {
		return newError(KindUpdateFailed, "update", err)
	}
	if err := r.blobs.Write(ctx, name, bytes.NewReader(data)); err != nil {
		return newError(KindUpdateFailed, "update", err)
	}
	return nil
}

// Delete removes both artifacts for id; already-missing entries are ignored.
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	unlock := r.ids.lock(id)
	defer unlock()

	var firstErr error
	for _, suffix := range []string{BinarySuffix, MetadataSuffix} {
		if err := r.blobs.Remove(ctx, id+suffix); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return newError(KindDeleteFailed, "delete", firstErr)
	}
	return nil
}

// ClearAll removes every staged entry in both namespaces, best-effort.
func (r *FileRepository) ClearAll(ctx context.Context) error {
	names, err := r.blobs.List(ctx)
	if err != nil {
		return newError(KindLoadFailed, "clear", err)
	}
	for _, name := range names {
		if !strings.HasSuffix(name, BinarySuffix) && !strings.HasSuffix(name, MetadataSuffix) {
			continue
		}
		if err := r.blobs.Remove(ctx, name); err != nil {
			r.log.Warn("failed to remove entry during clear", "entry", name, "error", err)
		}
	}
	return nil
}

func (r *FileRepository) readMetadata(ctx context.Context, name string) (*model.StagedFile, error) {
	rc, err := r.blobs.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return model.ParseStagedFile(data)
}

// newStagedFile stamps a draft with fresh identity and the upload time.
// Identifiers are collision-resistant random uuids, never reused and never
// derived from filename or content.
func newStagedFile(draft model.StagedFileDraft) *model.StagedFile {
	return &model.StagedFile{
		ID:             uuid.NewString(),
		Name:           draft.Name,
		OriginalName:   draft.OriginalName,
		Size:           draft.Size,
		Type:           draft.Type,
		LastModified:   draft.LastModified,
		UploadedAt:     time.Now().UTC(),
		CustomMetadata: draft.CustomMetadata,
	}
}

func sortByUploadedAtDesc(files []model.StagedFile) {
	sort.Slice(files, func(i, j int) bool {
		if !files[i].UploadedAt.Equal(files[j].UploadedAt) {
			return files[i].UploadedAt.After(files[j].UploadedAt)
		}
		return files[i].ID > files[j].ID
	})
}

// stripedMutex serializes operations targeting the same id. Concurrent edits
// and deletes of one entry otherwise race on the backing store with undefined
// relative ordering; cross-id operations stay concurrent.
type stripedMutex struct {
	stripes [16]sync.Mutex
}

func (m *stripedMutex) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &m.stripes[h.Sum32()%uint32(len(m.stripes))]
	mu.Lock()
	return mu.Unlock
}
