package storage

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode"

	"momentum/internal/models"
	"momentum/internal/observability"
)

// Limits bounds a single upload batch.
type Limits struct {
	MaxFiles    int
	MaxFileSize int64
}

var allowedTypes = map[string]string{
	"image/jpeg":      "image",
	"image/jpg":       "image",
	"image/png":       "image",
	"image/gif":       "image",
	"video/mp4":       "video",
	"video/mov":       "video",
	"video/quicktime": "video",
	"video/avi":       "video",
	"video/webm":      "video",
}

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
}

const invalidTypeMessage = "Only image and video files are allowed!"

// ValidateBatch checks every upload before anything is written. A batch is
// accepted or refused as a whole.
func ValidateBatch(uploads []Upload, limits Limits) error {
	if limits.MaxFiles > 0 && len(uploads) > limits.MaxFiles {
		return reject("count", fmt.Sprintf("Too many files. Maximum %d files allowed.", limits.MaxFiles))
	}
	for _, u := range uploads {
		if len(u.Content) == 0 {
			return reject("empty", fmt.Sprintf("File %s is empty", SanitizeFilename(u.Filename)))
		}
		if limits.MaxFileSize > 0 && int64(len(u.Content)) > limits.MaxFileSize {
			return reject("size", fmt.Sprintf("File size too large. Maximum size is %dMB.", limits.MaxFileSize/(1024*1024)))
		}
		if Kind(u.ContentType) == "" {
			return reject("mime", invalidTypeMessage)
		}
		if !allowedExtensions[strings.ToLower(filepath.Ext(u.Filename))] {
			return reject("extension", invalidTypeMessage)
		}
	}
	return nil
}

func reject(reason, message string) error {
	observability.ProofUploadsRejected.WithLabelValues(reason).Inc()
	return models.NewUploadError(message)
}

// Kind returns "image" or "video" for an accepted content type and "" otherwise.
func Kind(contentType string) string {
	return allowedTypes[normalizeContentType(contentType)]
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// SanitizeFilename keeps the base name of a client supplied file name,
// dropping control characters and path separators.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	if len(name) > 255 {
		ext := filepath.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		name = name[:255-len(ext)] + ext
	}
	return name
}
