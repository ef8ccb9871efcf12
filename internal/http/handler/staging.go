package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"outlinehub/internal/model"
	"outlinehub/internal/service"
	"outlinehub/internal/staging"
)

// StageFile handles POST /staging/files (multipart/form-data, field name: file).
// Optional form fields courseCode, semester, description, and instructor
// populate the record's custom metadata.
func StageFile(repo staging.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/pdf"
		}

		lastModified, _ := strconv.ParseInt(c.FormValue("lastModified", "0"), 10, 64)

		draft := model.StagedFileDraft{
			Name:         fh.Filename,
			OriginalName: fh.Filename,
			Size:         fh.Size,
			Type:         ct,
			LastModified: lastModified,
		}
		cm := model.CustomMetadata{
			CourseCode:  c.FormValue("courseCode"),
			Semester:    c.FormValue("semester"),
			Description: c.FormValue("description"),
			Instructor:  c.FormValue("instructor"),
		}
		if cm != (model.CustomMetadata{}) {
			draft.CustomMetadata = &cm
		}

		record, err := repo.Save(c.UserContext(), f, draft)
		if err != nil {
			return writeStagingError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(record)
	}
}

// ListStagedFiles handles GET /staging/files.
func ListStagedFiles(repo staging.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		files, err := repo.List(c.UserContext())
		if err != nil {
			return writeStagingError(c, err)
		}
		return c.JSON(fiber.Map{"data": files, "total": len(files)})
	}
}

// GetStagedFile handles GET /staging/files/:id and streams back the binary.
func GetStagedFile(repo staging.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, err := repo.Get(c.UserContext(), id)
		if err != nil {
			return writeStagingError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		return c.SendStream(rc)
	}
}

// UpdateStagedFile handles PUT /staging/files/:id with a full metadata record
// body. The update is strict: the record must already exist.
func UpdateStagedFile(repo staging.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		record, err := model.ParseStagedFile(c.Body())
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "invalid metadata record")
		}
		if err := repo.UpdateMetadata(c.UserContext(), id, *record); err != nil {
			return writeStagingError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteStagedFile handles DELETE /staging/files/:id.
func DeleteStagedFile(repo staging.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := repo.Delete(c.UserContext(), id); err != nil {
			return writeStagingError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ClearStagedFiles handles DELETE /staging/files.
func ClearStagedFiles(repo staging.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := repo.ClearAll(c.UserContext()); err != nil {
			return writeStagingError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PublishStagedFiles handles POST /staging/publish.
func PublishStagedFiles(svc service.PublishService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := svc.PublishAll(c.UserContext())
		if err != nil {
			switch {
			case errors.Is(err, service.ErrDegradedStaging):
				return writeError(c, fiber.StatusNotImplemented, "STORAGE_UNSUPPORTED",
					"publishing is unavailable in metadata-only mode")
			case errors.Is(err, service.ErrPartialPublish):
				return c.Status(fiber.StatusBadGateway).JSON(result)
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(result)
	}
}
