package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStagedFile() StagedFile {
	return StagedFile{
		ID:           "3f2a1e9c-0b7d-4c11-9f3e-2d6a8b4c5e01",
		Name:         "outline.pdf",
		OriginalName: "COMP101 Outline.pdf",
		Size:         1024,
		Type:         "application/pdf",
		LastModified: 1700000000000,
		UploadedAt:   time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC),
		CustomMetadata: &CustomMetadata{
			CourseCode: "COMP 101",
			Semester:   "Fall2024",
			Instructor: "Dr. Chen",
		},
	}
}

func TestStagedFileValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*StagedFile)
		wantErr bool
	}{
		{"valid", func(f *StagedFile) {}, false},
		{"missing id", func(f *StagedFile) { f.ID = "" }, true},
		{"missing name", func(f *StagedFile) { f.Name = "" }, true},
		{"missing original name", func(f *StagedFile) { f.OriginalName = "" }, true},
		{"negative size", func(f *StagedFile) { f.Size = -1 }, true},
		{"missing type", func(f *StagedFile) { f.Type = "" }, true},
		{"zero uploadedAt", func(f *StagedFile) { f.UploadedAt = time.Time{} }, true},
		{"nil custom metadata is fine", func(f *StagedFile) { f.CustomMetadata = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validStagedFile()
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseStagedFile(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		in := validStagedFile()
		data, err := json.Marshal(in)
		require.NoError(t, err)

		out, err := ParseStagedFile(data)
		require.NoError(t, err)
		assert.Equal(t, in, *out)
	})

	t.Run("uploadedAt serializes as ISO-8601", func(t *testing.T) {
		data, err := json.Marshal(validStagedFile())
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, "2024-09-01T12:00:00Z", raw["uploadedAt"])
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseStagedFile([]byte("not json"))
		assert.Error(t, err)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := ParseStagedFile([]byte(`{"id":"x"}`))
		assert.Error(t, err)
	})
}

func TestParseStagedFileList(t *testing.T) {
	valid := validStagedFile()
	validJSON, err := json.Marshal(valid)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("drops invalid entries", func(t *testing.T) {
		payload := []byte(`[` + string(validJSON) + `,{"id":""},{"bogus":true}]`)
		files, dropped, err := ParseStagedFileList(payload)
		require.NoError(t, err)
		assert.Len(t, files, 1)
		assert.Equal(t, 2, dropped)
		assert.Equal(t, valid.ID, files[0].ID)
	})

	t.Run("corrupt array fails", func(t *testing.T) {
		_, _, err := ParseStagedFileList([]byte(`{"not":"an array"}`))
		assert.Error(t, err)
	})
}
