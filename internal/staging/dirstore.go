package staging

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DirStore is the durable BlobStore implementation backed by a private
// directory. The namespace is flat: entry names map directly to file names
// inside the directory.
type DirStore struct {
	dir string
}

var _ BlobStore = (*DirStore)(nil)

// Capability is the result of probing for durable staging support. Exactly
// one session-wide probe happens at startup; the result is carried around
// explicitly instead of re-probing per call.
type Capability struct {
	Supported bool
	Store     *DirStore
}

// Detect probes whether dir can serve as the durable staging area. It returns
// an unsupported capability when the directory cannot be created or written
// (unset path, read-only filesystem). The probe has no lasting side effects.
func Detect(dir string) Capability {
	if dir == "" {
		return Capability{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Capability{}
	}
	probe := filepath.Join(dir, ".staging-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return Capability{}
	}
	_ = os.Remove(probe)
	return Capability{Supported: true, Store: &DirStore{dir: dir}}
}

// Dir returns the backing directory path.
func (s *DirStore) Dir() string { return s.dir }

// Write creates-or-truncates the named entry and streams the full content.
func (s *DirStore) Write(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read opens the named entry. A missing entry yields fs.ErrNotExist.
func (s *DirStore) Read(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(s.path(name))
}

// Remove deletes the named entry; removing a missing entry is a no-op.
func (s *DirStore) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// List enumerates all entry names currently present, in no particular order.
func (s *DirStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *DirStore) path(name string) string {
	// Entry names are repository-generated (uuid plus suffix); Base guards
	// against path separators sneaking into the flat namespace.
	return filepath.Join(s.dir, filepath.Base(name))
}
