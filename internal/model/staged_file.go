package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// CustomMetadata carries the user-editable descriptive fields of a staged
// outline. All fields are optional; empty fields are omitted from the
// persisted JSON.
type CustomMetadata struct {
	CourseCode  string `json:"courseCode,omitempty"`
	Semester    string `json:"semester,omitempty"`
	Description string `json:"description,omitempty"`
	Instructor  string `json:"instructor,omitempty"`
}

// StagedFile is the metadata side-car record stored next to each staged
// binary. The JSON field names are a persistence contract: external tooling
// inspects `<id>.meta.json` entries and expects exactly this shape.
type StagedFile struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	OriginalName   string          `json:"originalName"`
	Size           int64           `json:"size"`
	Type           string          `json:"type"`
	LastModified   int64           `json:"lastModified"`
	UploadedAt     time.Time       `json:"uploadedAt"`
	CustomMetadata *CustomMetadata `json:"customMetadata,omitempty"`
}

// StagedFileDraft is the caller-supplied part of a StagedFile. The repository
// fills in ID and UploadedAt at save time.
type StagedFileDraft struct {
	Name           string          `json:"name"`
	OriginalName   string          `json:"originalName"`
	Size           int64           `json:"size"`
	Type           string          `json:"type"`
	LastModified   int64           `json:"lastModified"`
	CustomMetadata *CustomMetadata `json:"customMetadata,omitempty"`
}

// Validate checks the invariants every stored record must satisfy.
func (f *StagedFile) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("staged file: id is required")
	}
	if f.Name == "" {
		return fmt.Errorf("staged file %s: name is required", f.ID)
	}
	if f.OriginalName == "" {
		return fmt.Errorf("staged file %s: originalName is required", f.ID)
	}
	if f.Size < 0 {
		return fmt.Errorf("staged file %s: size must be non-negative", f.ID)
	}
	if f.Type == "" {
		return fmt.Errorf("staged file %s: type is required", f.ID)
	}
	if f.UploadedAt.IsZero() {
		return fmt.Errorf("staged file %s: uploadedAt is required", f.ID)
	}
	return nil
}

// ParseStagedFile decodes and validates a single metadata record read back
// from storage. Stored JSON is never trusted to have the right shape.
func ParseStagedFile(data []byte) (*StagedFile, error) {
	var f StagedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode staged file metadata: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// ParseStagedFileList decodes the whole-array representation used by the
// session fallback store. Records that fail validation are dropped rather
// than failing the whole parse; the number of dropped records is returned so
// callers can log it.
func ParseStagedFileList(data []byte) ([]StagedFile, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode staged file list: %w", err)
	}
	files := make([]StagedFile, 0, len(raw))
	dropped := 0
	for _, entry := range raw {
		f, err := ParseStagedFile(entry)
		if err != nil {
			dropped++
			continue
		}
		files = append(files, *f)
	}
	return files, dropped, nil
}
