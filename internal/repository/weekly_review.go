package repository

import (
	"context"
	"time"

	"momentum/internal/models"
	"momentum/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WeeklyFilter narrows a weekly review listing. Year is ignored when zero.
type WeeklyFilter struct {
	ProjectID string
	Year      int
}

// WeeklyReviewRepository defines persistence operations for weekly reviews.
type WeeklyReviewRepository interface {
	Create(ctx context.Context, review *models.WeeklyReview) error
	GetOwned(ctx context.Context, userID, id string) (*models.WeeklyReview, error)
	List(ctx context.Context, userID string, filter WeeklyFilter, page models.PageRequest) ([]models.WeeklyReview, int64, error)
	Update(ctx context.Context, review *models.WeeklyReview) error
	Delete(ctx context.Context, id string) error
}

type weeklyReviewRepository struct {
	db *gorm.DB
}

func NewWeeklyReviewRepository(db *gorm.DB) WeeklyReviewRepository {
	return &weeklyReviewRepository{db: db}
}

const weeklyConflict = "Weekly review already exists for this week and project"

func (r *weeklyReviewRepository) Create(ctx context.Context, review *models.WeeklyReview) error {
	err := r.db.WithContext(ctx).Omit("Project", "Subproject").Create(review).Error
	return conflictOr(err, weeklyConflict)
}

func (r *weeklyReviewRepository) GetOwned(ctx context.Context, userID, id string) (*models.WeeklyReview, error) {
	var review models.WeeklyReview
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Subproject").
		Where("id = ? AND user_id = ?", id, userID).
		First(&review).Error
	if err != nil {
		return nil, notFoundOr(err, "Weekly review")
	}
	return &review, nil
}

func (r *weeklyReviewRepository) List(ctx context.Context, userID string, filter WeeklyFilter, page models.PageRequest) ([]models.WeeklyReview, int64, error) {
	defer observability.TrackQuery("list", "weekly_review_entries")()

	db := r.db.WithContext(ctx)
	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Where("user_id = ?", userID)
		if filter.ProjectID != "" {
			q = q.Where("project_id = ?", filter.ProjectID)
		}
		if filter.Year > 0 {
			q = q.Where("week_start_date BETWEEN ? AND ?",
				models.NewDate(filter.Year, time.January, 1),
				models.NewDate(filter.Year, time.December, 31))
		}
		return q
	}

	var total int64
	if err := db.Model(&models.WeeklyReview{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var reviews []models.WeeklyReview
	err := db.Scopes(scope).
		Preload("Project").
		Preload("Subproject").
		Order("week_start_date DESC, created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return reviews, total, nil
}

func (r *weeklyReviewRepository) Update(ctx context.Context, review *models.WeeklyReview) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(review).Error
	return conflictOr(err, weeklyConflict)
}

func (r *weeklyReviewRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.WeeklyReview{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
