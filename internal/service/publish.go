package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"outlinehub/internal/logger"
	"outlinehub/internal/model"
	"outlinehub/internal/staging"
	"outlinehub/internal/storage"
)

var (
	// ErrDegradedStaging means the staging area cannot hand back binaries
	// (metadata-only fallback mode), so publishing is impossible.
	ErrDegradedStaging = errors.New("staging is in metadata-only mode, publishing unavailable")
	// ErrPartialPublish means at least one staged entry failed to publish.
	// The staging area is left intact so the caller can retry.
	ErrPartialPublish = errors.New("some staged outlines failed to publish")
)

// PublishFailure describes one staged entry that could not be published.
type PublishFailure struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// PublishResult summarizes a publish run.
type PublishResult struct {
	Published int              `json:"published"`
	Failed    []PublishFailure `json:"failed,omitempty"`
}

// PublishService pushes the full staged set to the remote outline store.
type PublishService interface {
	// PublishAll uploads every staged outline (binary plus metadata side-car)
	// to the remote store, and clears the staging area only when every entry
	// succeeded. On partial failure staging is left intact and the result
	// lists what failed alongside ErrPartialPublish.
	PublishAll(ctx context.Context) (*PublishResult, error)
}

type publishService struct {
	staging staging.Repository
	store   storage.Storage
	log     *logger.Logger
}

// NewPublishService constructs a PublishService.
func NewPublishService(stg staging.Repository, store storage.Storage, log *logger.Logger) PublishService {
	return &publishService{
		staging: stg,
		store:   store,
		log:     log.WithComponent("publish"),
	}
}

func (s *publishService) PublishAll(ctx context.Context) (*PublishResult, error) {
	files, err := s.staging.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list staged outlines: %w", err)
	}

	result := &PublishResult{}
	for _, f := range files {
		if err := s.publishOne(ctx, f); err != nil {
			if staging.IsKind(err, staging.KindStorageUnsupported) {
				return nil, ErrDegradedStaging
			}
			s.log.Warn("failed to publish staged outline", "id", f.ID, "error", err)
			result.Failed = append(result.Failed, PublishFailure{
				ID:     f.ID,
				Name:   f.Name,
				Reason: err.Error(),
			})
			continue
		}
		result.Published++
	}

	if len(result.Failed) > 0 {
		return result, ErrPartialPublish
	}

	// Full success resets staging to empty.
	if err := s.staging.ClearAll(ctx); err != nil {
		s.log.Warn("failed to clear staging after publish", "error", err)
	}
	return result, nil
}

func (s *publishService) publishOne(ctx context.Context, f model.StagedFile) error {
	prefix, err := remotePrefix(f)
	if err != nil {
		return err
	}

	content, err := s.staging.Get(ctx, f.ID)
	if err != nil {
		return err
	}
	defer content.Close()

	binKey := prefix + "/" + f.ID + staging.BinarySuffix
	if _, err := s.store.Put(ctx, binKey, content, storage.PutObjectOptions{
		Size:        f.Size,
		ContentType: f.Type,
		Metadata:    map[string]string{"original-filename": f.OriginalName},
	}); err != nil {
		return fmt.Errorf("upload binary: %w", err)
	}

	meta, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	metaKey := prefix + "/" + f.ID + staging.MetadataSuffix
	if _, err := s.store.Put(ctx, metaKey, bytes.NewReader(meta), storage.PutObjectOptions{
		Size:        int64(len(meta)),
		ContentType: "application/json",
	}); err != nil {
		// Remove the binary so the remote listing never sees a half pair.
		if delErr := s.store.Delete(ctx, binKey); delErr != nil {
			return fmt.Errorf("upload metadata: %v; rollback delete failed: %v", err, delErr)
		}
		return fmt.Errorf("upload metadata: %w", err)
	}

	return nil
}

// remotePrefix derives the remote key prefix `<major>/<courseCode>/<semester>`
// from a record's custom metadata.
func remotePrefix(f model.StagedFile) (string, error) {
	cm := f.CustomMetadata
	if cm == nil || cm.CourseCode == "" || cm.Semester == "" {
		return "", errors.New("course code and semester are required to publish")
	}
	return path.Join(majorOf(cm.CourseCode), cm.CourseCode, cm.Semester), nil
}

// majorOf extracts the major from a course code ("COMP 101" -> "COMP").
func majorOf(courseCode string) string {
	if i := strings.IndexByte(courseCode, ' '); i > 0 {
		return courseCode[:i]
	}
	return courseCode
}
