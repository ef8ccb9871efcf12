package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"outlinehub/internal/logger"
	"outlinehub/internal/model"
	"outlinehub/internal/staging"
	"outlinehub/internal/storage"
)

// downloadURLExpiry bounds how long a presigned outline link stays valid.
const downloadURLExpiry = 15 * time.Minute

// PublishedOutline is one published outline with its download link.
type PublishedOutline struct {
	model.StagedFile
	DownloadURL string `json:"download_url"`
}

// CourseOutlines is the remote listing for one course, grouped by semester.
type CourseOutlines struct {
	Path       string             `json:"path"`
	Semesters  []string           `json:"semesters"`
	Files      []PublishedOutline `json:"files"`
	TotalFiles int                `json:"totalFiles"`
}

// OutlineService reads published outlines back from the remote store.
type OutlineService interface {
	// ListCourse returns every published outline under `<major>/<code>/`.
	// Objects are paired binary+side-car by basename; pairs with missing or
	// unreadable metadata are skipped with a warning rather than failing the
	// whole listing.
	ListCourse(ctx context.Context, major, code string) (*CourseOutlines, error)
}

type outlineService struct {
	store storage.Storage
	log   *logger.Logger
}

// NewOutlineService constructs an OutlineService.
func NewOutlineService(store storage.Storage, log *logger.Logger) OutlineService {
	return &outlineService{
		store: store,
		log:   log.WithComponent("outlines"),
	}
}

func (s *outlineService) ListCourse(ctx context.Context, major, code string) (*CourseOutlines, error) {
	prefix := major + "/" + code + "/"
	objects, err := s.store.ListPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list outlines under %q: %w", prefix, err)
	}

	type pair struct {
		binary *storage.ObjectInfo
		meta   *storage.ObjectInfo
	}
	pairs := make(map[string]*pair)
	semesters := make(map[string]struct{})

	for i := range objects {
		obj := objects[i]
		rel := strings.TrimPrefix(obj.Key, prefix)
		semester, name, ok := strings.Cut(rel, "/")
		if !ok {
			continue // stray object directly under the course prefix
		}
		semesters[semester] = struct{}{}

		switch {
		case strings.HasSuffix(name, staging.MetadataSuffix):
			base := strings.TrimSuffix(obj.Key, staging.MetadataSuffix)
			p := pairs[base]
			if p == nil {
				p = &pair{}
				pairs[base] = p
			}
			p.meta = &objects[i]
		case strings.HasSuffix(name, staging.BinarySuffix):
			base := strings.TrimSuffix(obj.Key, staging.BinarySuffix)
			p := pairs[base]
			if p == nil {
				p = &pair{}
				pairs[base] = p
			}
			p.binary = &objects[i]
		}
	}

	out := &CourseOutlines{Path: major + "/" + code}
	for base, p := range pairs {
		if p.binary == nil || p.meta == nil {
			s.log.Warn("unpaired published outline", "base", base)
			continue
		}
		record, err := s.readMetadata(ctx, p.meta.Key)
		if err != nil {
			s.log.Warn("skipping outline with unreadable metadata",
				"key", p.meta.Key, "error", err)
			continue
		}
		url, err := s.store.PresignGet(ctx, p.binary.Key, downloadURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("presign %q: %w", p.binary.Key, err)
		}
		out.Files = append(out.Files, PublishedOutline{StagedFile: *record, DownloadURL: url})
	}

	sort.Slice(out.Files, func(i, j int) bool {
		return out.Files[i].UploadedAt.After(out.Files[j].UploadedAt)
	})
	for semester := range semesters {
		out.Semesters = append(out.Semesters, semester)
	}
	sort.Strings(out.Semesters)
	out.TotalFiles = len(out.Files)
	return out, nil
}

func (s *outlineService) readMetadata(ctx context.Context, key string) (*model.StagedFile, error) {
	rc, _, err := s.store.Get(ctx, key)
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
