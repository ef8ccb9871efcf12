package staging

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"outlinehub/internal/logger"
	"outlinehub/internal/model"
	"outlinehub/internal/staging/mocks"
)

func testLogger() *logger.Logger {
	return logger.New("error", "json")
}

func newTestRepo(t *testing.T) (*FileRepository, *DirStore) {
	t.Helper()
	capability := Detect(t.TempDir())
	require.True(t, capability.Supported)
	return NewFileRepository(capability.Store, testLogger()), capability.Store
}

func draft(name, courseCode string, size int64) model.StagedFileDraft {
	return model.StagedFileDraft{
		Name:         name,
		OriginalName: name,
		Size:         size,
		Type:         "application/pdf",
		LastModified: 1700000000000,
		CustomMetadata: &model.CustomMetadata{
			CourseCode: courseCode,
			Instructor: "Dr. Chen",
		},
	}
}

func TestFileRepositorySave(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		repo, _ := newTestRepo(t)

		record, err := repo.Save(ctx, strings.NewReader("pdf-bytes"), draft("outline.pdf", "COMP 101", 9))
		require.NoError(t, err)
		assert.NotEmpty(t, record.ID)
		assert.False(t, record.UploadedAt.IsZero())
		assert.Equal(t, "outline.pdf", record.Name)

		rc, err := repo.Get(ctx, record.ID)
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "pdf-bytes", string(data))

		files, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, *record, files[0])
	})

	t.Run("writes the paired artifact names", func(t *testing.T) {
		repo, store := newTestRepo(t)

		record, err := repo.Save(ctx, strings.NewReader("x"), draft("a.pdf", "COMP 101", 1))
		require.NoError(t, err)

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			record.ID + ".pdf",
			record.ID + ".meta.json",
		}, names)
	})

	t.Run("nil reader", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		_, err := repo.Save(ctx, nil, draft("a.pdf", "COMP 101", 1))
		assert.True(t, IsKind(err, KindSaveFailed))
	})

	t.Run("generates unique ids", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		a, err := repo.Save(ctx, strings.NewReader("a"), draft("a.pdf", "COMP 101", 1))
		require.NoError(t, err)
		b, err := repo.Save(ctx, strings.NewReader("b"), draft("a.pdf", "COMP 101", 1))
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("rolls binary back when metadata write fails", func(t *testing.T) {
		blobs := new(mocks.MockBlobStore)
		repo := NewFileRepository(blobs, testLogger())

		blobs.On("Write", mock.Anything, mock.MatchedBy(func(name string) bool {
			return strings.HasSuffix(name, BinarySuffix)
		}), mock.Anything).Return(nil)
		blobs.On("Write", mock.Anything, mock.MatchedBy(func(name string) bool {
			return strings.HasSuffix(name, MetadataSuffix)
		}), mock.Anything).Return(errors.New("disk full"))
		blobs.On("Remove", mock.Anything, mock.MatchedBy(func(name string) bool {
			return strings.HasSuffix(name, BinarySuffix)
		})).Return(nil)

		_, err := repo.Save(ctx, strings.NewReader("x"), draft("a.pdf", "COMP 101", 1))
		assert.True(t, IsKind(err, KindSaveFailed))
		blobs.AssertExpectations(t)
	})
}

func TestFileRepositoryGet(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	_, err := repo.Get(ctx, "11111111-2222-3333-4444-555555555555")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestFileRepositoryList(t *testing.T) {
	ctx := context.Background()

	t.Run("ordering is most recent first", func(t *testing.T) {
		repo, _ := newTestRepo(t)

		var ids []string
		for _, name := range []string{"t1.pdf", "t2.pdf", "t3.pdf"} {
			record, err := repo.Save(ctx, strings.NewReader(name), draft(name, "COMP 101", 5))
			require.NoError(t, err)
			ids = append(ids, record.ID)
			time.Sleep(5 * time.Millisecond)
		}

		files, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, files, 3)
		assert.Equal(t, ids[2], files[0].ID)
		assert.Equal(t, ids[1], files[1].ID)
		assert.Equal(t, ids[0], files[2].ID)
	})

	t.Run("corrupt entry is skipped, not fatal", func(t *testing.T) {
		repo, store := newTestRepo(t)

		good, err := repo.Save(ctx, strings.NewReader("x"), draft("good.pdf", "COMP 101", 1))
		require.NoError(t, err)

		// A schema-invalid side-car among the valid ones.
		require.NoError(t, store.Write(ctx, "corrupt.meta.json", strings.NewReader(`{"id":""}`)))
		require.NoError(t, store.Write(ctx, "garbage.meta.json", strings.NewReader("not json")))

		files, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, good.ID, files[0].ID)
	})

	t.Run("empty store lists empty", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		files, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}

func TestFileRepositoryUpdateMetadata(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites wholesale", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		record, err := repo.Save(ctx, strings.NewReader("x"), draft("a.pdf", "COMP 101", 1))
		require.NoError(t, err)

		updated := *record
		updated.CustomMetadata = &model.CustomMetadata{
			CourseCode: "COMP 101",
			Semester:   "Fall2024",
			Instructor: "Dr. Chen",
		}
		require.NoError(t, repo.UpdateMetadata(ctx, record.ID, updated))

		files, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "Fall2024", files[0].CustomMetadata.Semester)
	})

	t.Run("strict update never creates", func(t *testing.T) {
		repo, store := newTestRepo(t)

		record := model.StagedFile{
			ID:           "99999999-8888-7777-6666-555555555555",
			Name:         "ghost.pdf",
			OriginalName: "ghost.pdf",
			Size:         1,
			Type:         "application/pdf",
			UploadedAt:   time.Now().UTC(),
		}
		err := repo.UpdateMetadata(ctx, record.ID, record)
		assert.True(t, IsKind(err, KindNotFound))

		names, listErr := store.List(ctx)
		require.NoError(t, listErr)
		assert.Empty(t, names)
	})

	t.Run("id mismatch is rejected", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		record, err := repo.Save(ctx, strings.NewReader("x"), draft("a.pdf", "COMP 101", 1))
		require.NoError(t, err)

		other := *record
		other.ID = "00000000-0000-0000-0000-000000000000"
		err = repo.UpdateMetadata(ctx, record.ID, other)
		assert.True(t, IsKind(err, KindValidationFailed))
	})
}

func TestFileRepositoryDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes both artifacts", func(t *testing.T) {
		repo, store := newTestRepo(t)
		record, err := repo.Save(ctx, strings.NewReader("x"), draft("a.pdf", "COMP 101", 1))
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, record.ID))

		_, err = repo.Get(ctx, record.ID)
		assert.True(t, IsKind(err, KindNotFound))

		files, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, files)

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("idempotent", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		record, err := repo.Save(ctx, strings.NewReader("x"), draft("a.pdf", "COMP 101", 1))
		require.NoError(t, err)

		assert.NoError(t, repo.Delete(ctx, record.ID))
		assert.NoError(t, repo.Delete(ctx, record.ID))
	})

	t.Run("missing counterpart does not fail", func(t *testing.T) {
		repo, store := newTestRepo(t)
		record, err := repo.Save(ctx, strings.NewReader("x"), draft("a.pdf", "COMP 101", 1))
		require.NoError(t, err)

		// Simulate an orphaned metadata record.
		require.NoError(t, store.Remove(ctx, record.ID+BinarySuffix))
		assert.NoError(t, repo.Delete(ctx, record.ID))
	})
}

// TestFileRepositoryScenario walks the full review-flow contract end to end.
func TestFileRepositoryScenario(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	fileA, err := repo.Save(ctx, strings.NewReader(strings.Repeat("a", 1024)), draft("a.pdf", "COMP 101", 1024))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	fileB, err := repo.Save(ctx, strings.NewReader(strings.Repeat("b", 2048)), draft("b.pdf", "MATH 200", 2048))
	require.NoError(t, err)

	// B uploaded later, so it lists first.
	files, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, fileB.ID, files[0].ID)
	assert.Equal(t, fileA.ID, files[1].ID)

	// Edit A; B stays untouched.
	updatedA := *fileA
	updatedA.CustomMetadata = &model.CustomMetadata{
		CourseCode: "COMP 101",
		Semester:   "Fall2024",
		Instructor: "Dr. Chen",
	}
	require.NoError(t, repo.UpdateMetadata(ctx, fileA.ID, updatedA))

	files, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "Fall2024", files[1].CustomMetadata.Semester)
	assert.Equal(t, *fileB, files[0])

	// Delete B; only A remains.
	require.NoError(t, repo.Delete(ctx, fileB.ID))
	files, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, fileA.ID, files[0].ID)

	// ClearAll resets staging to empty.
	require.NoError(t, repo.ClearAll(ctx))
	files, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}
