package repository

import (
	"context"

	"momentum/internal/models"

	"gorm.io/gorm"
)

// SubprojectRepository defines persistence operations for subprojects.
type SubprojectRepository interface {
	Create(ctx context.Context, sp *models.Subproject) error
	GetInProject(ctx context.Context, projectID, id string) (*models.Subproject, error)
	Update(ctx context.Context, sp *models.Subproject) error
	// Delete detaches entries and reviews that reference the subproject before removing it.
	Delete(ctx context.Context, id string) error
}

type subprojectRepository struct {
	db *gorm.DB
}

func NewSubprojectRepository(db *gorm.DB) SubprojectRepository {
	return &subprojectRepository{db: db}
}

const subprojectConflict = "Subproject with this name already exists in this project"

func (r *subprojectRepository) Create(ctx context.Context, sp *models.Subproject) error {
	err := r.db.WithContext(ctx).Create(sp).Error
	return conflictOr(err, subprojectConflict)
}

func (r *subprojectRepository) GetInProject(ctx context.Context, projectID, id string) (*models.Subproject, error) {
	var sp models.Subproject
	err := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", id, projectID).
		First(&sp).Error
	if err != nil {
		return nil, notFoundOr(err, "Subproject")
	}
	return &sp, nil
}

func (r *subprojectRepository) Update(ctx context.Context, sp *models.Subproject) error {
	err := r.db.WithContext(ctx).Save(sp).Error
	return conflictOr(err, subprojectConflict)
}

func (r *subprojectRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	for _, model := range []any{&models.DailyEntry{}, &models.WeeklyReview{}} {
		if err := db.Model(model).Where("subproject_id = ?", id).Update("subproject_id", nil).Error; err != nil {
			return models.NewInternalError(err)
		}
	}
	if err := db.Where("id = ?", id).Delete(&models.Subproject{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
