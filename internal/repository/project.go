package repository

import (
	"context"
	"log/slog"

	"momentum/internal/middleware"
	"momentum/internal/models"
	"momentum/internal/observability"

	"gorm.io/gorm"
)

const (
	projectRecentEntries = 10
	projectRecentReviews = 5
)

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	// Create inserts the project together with any Subprojects set on it.
	Create(ctx context.Context, project *models.Project) error
	GetOwned(ctx context.Context, userID, id string) (*models.Project, error)
	GetDetail(ctx context.Context, userID, id string) (*models.Project, error)
	GetWithSubprojects(ctx context.Context, userID, id string) (*models.Project, error)
	ListByUser(ctx context.Context, userID string) ([]models.Project, error)
	// Update writes the client-editable columns only. total_hours_logged is
	// owned by RecomputeHours.
	Update(ctx context.Context, project *models.Project) error
	// Delete removes the project and everything beneath it, returning the
	// proof files whose stored artifacts must be removed after commit.
	Delete(ctx context.Context, id string) ([]models.ProofFile, error)
	// RecomputeHours refreshes total_hours_logged from the project's entries
	// in one statement.
	RecomputeHours(ctx context.Context, projectID string) error
	GetHours(ctx context.Context, projectID string) (float64, error)
}

type projectRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db, log: observability.NewRepoLogger("projects", middleware.Logger)}
}

const projectConflict = "Project with this name already exists"

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return conflictOr(err, projectConflict)
	}
	r.log.LogCreate(ctx, slog.String("project_id", project.ID), slog.Int("subprojects", len(project.Subprojects)))
	return nil
}

func (r *projectRepository) GetOwned(ctx context.Context, userID, id string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&project).Error
	if err != nil {
		return nil, notFoundOr(err, "Project")
	}
	return &project, nil
}

func (r *projectRepository) GetDetail(ctx context.Context, userID, id string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Subprojects", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("DailyEntries", func(db *gorm.DB) *gorm.DB {
			return db.Order("entry_date DESC, created_at DESC").Limit(projectRecentEntries)
		}).
		Preload("DailyEntries.ProofFiles").
		Preload("WeeklyReviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("week_start_date DESC").Limit(projectRecentReviews)
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&project).Error
	if err != nil {
		return nil, notFoundOr(err, "Project")
	}
	return &project, nil
}

func (r *projectRepository) GetWithSubprojects(ctx context.Context, userID, id string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Subprojects", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&project).Error
	if err != nil {
		return nil, notFoundOr(err, "Project")
	}
	return &project, nil
}

func (r *projectRepository) ListByUser(ctx context.Context, userID string) ([]models.Project, error) {
	defer observability.TrackQuery("list", "projects")()

	var projects []models.Project
	err := r.db.WithContext(ctx).
		Preload("Subprojects", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	err := r.db.WithContext(ctx).
		Model(project).
		Select("name", "description", "deadline", "status", "updated_at").
		Updates(project).Error
	if err != nil {
		return conflictOr(err, projectConflict)
	}
	r.log.LogUpdate(ctx, slog.String("project_id", project.ID))
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) ([]models.ProofFile, error) {
	db := r.db.WithContext(ctx)
	entryIDs := db.Model(&models.DailyEntry{}).Select("id").Where("project_id = ?", id)

	var files []models.ProofFile
	if err := db.Where("daily_execution_entry_id IN (?)", entryIDs).Find(&files).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	steps := []func() error{
		func() error {
			return db.Where("daily_execution_entry_id IN (?)", entryIDs).Delete(&models.ProofFile{}).Error
		},
		func() error { return db.Where("project_id = ?", id).Delete(&models.DailyEntry{}).Error },
		func() error { return db.Where("project_id = ?", id).Delete(&models.WeeklyReview{}).Error },
		func() error { return db.Where("project_id = ?", id).Delete(&models.Subproject{}).Error },
		func() error { return db.Where("id = ?", id).Delete(&models.Project{}).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			r.log.LogError(ctx, err, "delete")
			return nil, models.NewInternalError(err)
		}
	}
	r.log.LogDelete(ctx, slog.String("project_id", id), slog.Int("proof_files", len(files)))
	return files, nil
}

func (r *projectRepository) RecomputeHours(ctx context.Context, projectID string) error {
	defer observability.TrackQuery("recompute_hours", "projects")()

	err := r.db.WithContext(ctx).Exec(
		`UPDATE projects SET total_hours_logged = (
			SELECT COALESCE(SUM(hours_spent), 0) FROM daily_execution_entries WHERE project_id = ?
		) WHERE id = ?`,
		projectID, projectID,
	).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	observability.HoursRecomputed.Inc()
	return nil
}

func (r *projectRepository) GetHours(ctx context.Context, projectID string) (float64, error) {
	var hours float64
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Select("total_hours_logged").
		Where("id = ?", projectID).
		Scan(&hours).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return models.RoundHours(hours), nil
}
