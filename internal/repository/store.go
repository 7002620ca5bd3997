// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"momentum/internal/models"

	"gorm.io/gorm"
)

// Store bundles the repositories over one connection or transaction.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Projects      ProjectRepository
	Subprojects   SubprojectRepository
	DailyEntries  DailyEntryRepository
	WeeklyReviews WeeklyReviewRepository
	Jobs          JobRepository
}

// NewStore returns repositories bound to db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Projects:      NewProjectRepository(db),
		Subprojects:   NewSubprojectRepository(db),
		DailyEntries:  NewDailyEntryRepository(db),
		WeeklyReviews: NewWeeklyReviewRepository(db),
		Jobs:          NewJobRepository(db),
	}
}

// DB exposes the underlying handle for health checks and tooling.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with repositories bound to a single transaction. Any
// error returned by fn rolls back every write made through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound error for resource and
// wraps anything else as an internal error. An id postgres cannot cast to uuid
// names no row either, so it is reported the same way.
func notFoundOr(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || isInvalidTextError(err) {
		return models.NewNotFoundError(resource)
	}
	return models.NewInternalError(err)
}

// conflictOr maps unique violations to a Conflict error with message.
func conflictOr(err error, message string) error {
	if err == nil {
		return nil
	}
	if isUniqueConstraintError(err) {
		return models.NewConflictError(message)
	}
	return models.NewInternalError(err)
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// isInvalidTextError reports SQLSTATE 22P02 (invalid_text_representation).
func isInvalidTextError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "22p02") ||
		strings.Contains(msg, "invalid input syntax for type uuid")
}
