package staging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"outlinehub/internal/logger"
	"outlinehub/internal/model"
)

// SessionKey is the fixed well-known key the fallback store keeps its single
// serialized record array under.
const SessionKey = "uploaded-files"

// SessionStore is a volatile string-keyed byte store scoped to one process
// session. Nothing in it survives a restart.
type SessionStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewSessionStore creates an empty volatile store.
func NewSessionStore() *SessionStore {
	return &SessionStore{data: make(map[string][]byte)}
}

// Get returns the value for key and whether it was present.
func (s *SessionStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key, replacing any prior value.
func (s *SessionStore) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Delete removes key; deleting a missing key is a no-op.
func (s *SessionStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// SessionRepository is the degraded-mode Repository used when no durable
// staging directory is available. It keeps metadata only, serialized as one
// JSON array under SessionKey; binaries are not retained, so Get always
// fails with KindStorageUnsupported. Every mutation is a read-modify-rewrite
// of the whole array under a single lock.
type SessionRepository struct {
	store *SessionStore
	log   *logger.Logger
	mu    sync.Mutex
}

var _ Repository = (*SessionRepository)(nil)

// NewSessionRepository creates a metadata-only fallback repository.
func NewSessionRepository(store *SessionStore, log *logger.Logger) *SessionRepository {
	return &SessionRepository{
		store: store,
		log:   log.WithComponent("staging-fallback"),
	}
}

// Save records draft metadata under a fresh id. The binary content is read
// and discarded; this mode cannot retain it.
func (r *SessionRepository) Save(ctx context.Context, content io.Reader, draft model.StagedFileDraft) (*model.StagedFile, error) {
	record := &model.StagedFile{
		ID:             uuid.NewString(),
		Name:           draft.Name,
		OriginalName:   draft.OriginalName,
		Size:           draft.Size,
		Type:           draft.Type,
		LastModified:   draft.LastModified,
		UploadedAt:     time.Now().UTC(),
		CustomMetadata: draft.CustomMetadata,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	files := r.load()
	// Newest first, matching the listing order contract.
	files = append([]model.StagedFile{*record}, files...)
	if err := r.flush(files); err != nil {
		return nil, newError(KindSaveFailed, "save", err)
	}
	return record, nil
}

// Get always fails: binaries are not persisted in degraded mode.
func (r *SessionRepository) Get(ctx context.Context, id string) (io.ReadCloser, error) {
	return nil, newError(KindStorageUnsupported, "get",
		errors.New("binary retrieval is unavailable in metadata-only mode"))
}

// List returns the valid records, most recent upload first.
func (r *SessionRepository) List(ctx context.Context) ([]model.StagedFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	files := r.load()
	sortByUploadedAtDesc(files)
	return files, nil
}

// UpdateMetadata replaces the record for id in the array. Strict update.
func (r *SessionRepository) UpdateMetadata(ctx context.Context, id string, record model.StagedFile) error {
	if record.ID != id {
		return newError(KindValidationFailed, "update",
			errors.New("record id does not match target id"))
	}
	if err := record.Validate(); err != nil {
		return newError(KindValidationFailed, "update", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	files := r.load()
	found := false
	for i := range files {
		if files[i].ID == id {
			files[i] = record
			found = true
			break
		}
	}
	if !found {
		return newError(KindNotFound, "update", errors.New("no metadata record for id"))
	}
	if err := r.flush(files); err != nil {
		return newError(KindUpdateFailed, "update", err)
	}
	return nil
}

// Delete filters the record for id out of the array; idempotent.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	files := r.load()
	kept := files[:0]
	for _, f := range files {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	if err := r.flush(kept); err != nil {
		return newError(KindDeleteFailed, "delete", err)
	}
	return nil
}

// ClearAll drops the whole array.
func (r *SessionRepository) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store.Delete(SessionKey)
	return nil
}

// load reads the current array, dropping invalid entries. A corrupt array is
// treated as empty rather than failing the operation.
func (r *SessionRepository) load() []model.StagedFile {
	data, ok := r.store.Get(SessionKey)
	if !ok {
		return nil
	}
	files, dropped, err := model.ParseStagedFileList(data)
	if err != nil {
		r.log.Warn("discarding unparseable session store array", "error", err)
		return nil
	}
	if dropped > 0 {
		r.log.Warn("dropped invalid records from session store", "count", dropped)
	}
	return files
}

func (r *SessionRepository) flush(files []model.StagedFile) error {
	if len(files) == 0 {
		r.store.Delete(SessionKey)
		return nil
	}
	data, err := json.Marshal(files)
	if err != nil {
		return err
	}
	r.store.Set(SessionKey, data)
	return nil
}
