// Package service holds the business rules of the tracker: ownership checks,
// validation, transactional writes and the derived project hours.
package service

import (
	"context"
	"errors"
	"strings"

	"momentum/internal/models"
	"momentum/internal/storage"
)

const (
	maxNameLen     = 255
	maxShortLen    = 100
	maxDailyHours  = 24
	maxWeeklyHours = 168
)

// ArtifactCleaner removes stored proof artifacts once no record references them.
type ArtifactCleaner interface {
	Cleanup(ctx context.Context, paths []string)
}

func cleanup(ctx context.Context, c ArtifactCleaner, paths []string) {
	if c == nil || len(paths) == 0 {
		return
	}
	c.Cleanup(ctx, paths)
}

// IsNotFound reports whether err is a NotFound AppError.
func IsNotFound(err error) bool {
	return hasCode(err, models.CodeNotFound)
}

func hasCode(err error, code string) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func proofPaths(files []models.ProofFile) []string {
	var paths []string
	for i := range files {
		paths = append(paths, files[i].StoredPaths()...)
	}
	return paths
}

func storedPaths(stored []storage.Stored) []string {
	var paths []string
	for _, s := range stored {
		paths = append(paths, s.Paths()...)
	}
	return paths
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
