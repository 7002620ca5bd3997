package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"momentum/internal/middleware"
	"momentum/internal/models"
	"momentum/internal/storage"

	"github.com/gofiber/fiber/v2"
)

const proofFilesField = "proofFiles"

var statusByCode = map[string]int{
	models.CodeValidation:   fiber.StatusBadRequest,
	models.CodeConflict:     fiber.StatusBadRequest,
	models.CodeUpload:       fiber.StatusBadRequest,
	models.CodeNotFound:     fiber.StatusNotFound,
	models.CodeUnauthorized: fiber.StatusUnauthorized,
}

// respondError writes the error envelope. Anything that is not an AppError is
// logged and reported as an internal error.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code == models.CodeInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"path", c.Path(), "error", err.Error())
		body := models.Envelope{Message: "Internal server error"}
		if s.config.IsDevelopment() {
			body.Message = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}

	status, ok := statusByCode[appErr.Code]
	if !ok {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(models.Envelope{
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

func respond(c *fiber.Ctx, message string, data any) error {
	return c.JSON(models.Envelope{Success: true, Message: message, Data: data})
}

func created(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(models.Envelope{Success: true, Message: message, Data: data})
}

// userID returns the id stored by AuthRequired.
func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

// pageRequest reads page and limit; bad values fall back to defaults.
func pageRequest(c *fiber.Ctx) models.PageRequest {
	return models.NewPageRequest(c.QueryInt("page", models.DefaultPage), c.QueryInt("limit", models.DefaultLimit))
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c *fiber.Ctx, key string) (models.Date, error) {
	raw := c.Query(key)
	if raw == "" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, models.NewValidationError(fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", key))
	}
	return d, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// parseBody decodes JSON or form fields into dest and, for multipart
// requests, returns the uploaded proof files.
func parseBody(c *fiber.Ctx, dest any) ([]storage.Upload, error) {
	if err := c.BodyParser(dest); err != nil {
		return nil, models.NewValidationError("Invalid request body")
	}
	if !isMultipart(c) {
		return nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, models.NewUploadError("Invalid multipart form")
	}
	return readUploads(form.File[proofFilesField])
}

func readUploads(headers []*multipart.FileHeader) ([]storage.Upload, error) {
	uploads := make([]storage.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, models.NewUploadError("Could not read uploaded file " + fh.Filename)
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, models.NewUploadError("Could not read uploaded file " + fh.Filename)
		}
		uploads = append(uploads, storage.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Content:     content,
		})
	}
	return uploads, nil
}
