package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"momentum/internal/middleware"
	"momentum/internal/models"
	"momentum/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobFilter narrows an application listing. Company matches a case-insensitive substring.
type JobFilter struct {
	Status  models.JobStatus
	Company string
}

// JobSummary is the slice of an application the dashboard aggregates over.
type JobSummary struct {
	CreatedAt time.Time
	ID        string
	Status    models.JobStatus
}

// JobRepository defines persistence operations for job applications and their activities.
type JobRepository interface {
	// Create inserts the application together with any Activities set on it.
	Create(ctx context.Context, app *models.JobApplication) error
	// GetOwned loads the application with its activities, newest first.
	// activityLimit <= 0 loads every activity.
	GetOwned(ctx context.Context, userID, id string, activityLimit int) (*models.JobApplication, error)
	List(ctx context.Context, userID string, filter JobFilter, page models.PageRequest, activityLimit int) ([]models.JobApplication, int64, error)
	Update(ctx context.Context, app *models.JobApplication) error
	UpdateStatus(ctx context.Context, id string, status models.JobStatus) error
	Delete(ctx context.Context, id string) error

	CreateActivity(ctx context.Context, activity *models.JobActivity) error
	GetActivity(ctx context.Context, appID, id string) (*models.JobActivity, error)
	UpdateActivity(ctx context.Context, activity *models.JobActivity) error
	DeleteActivity(ctx context.Context, id string) error

	CountByStatus(ctx context.Context, userID string) ([]models.StatusCount, error)
	ApplicationDatesSince(ctx context.Context, userID string, since models.Date) ([]models.Date, error)
	// Summaries returns the id, status and creation time of every application the user owns.
	Summaries(ctx context.Context, userID string) ([]JobSummary, error)
}

type jobRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db, log: observability.NewRepoLogger("job_applications", middleware.Logger)}
}

func newestActivitiesFirst(db *gorm.DB) *gorm.DB {
	return db.Order("activity_date DESC, created_at DESC")
}

func (r *jobRepository) Create(ctx context.Context, app *models.JobApplication) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, slog.String("application_id", app.ID), slog.String("status", string(app.Status)))
	return nil
}

func (r *jobRepository) GetOwned(ctx context.Context, userID, id string, activityLimit int) (*models.JobApplication, error) {
	var app models.JobApplication
	err := r.db.WithContext(ctx).
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			db = newestActivitiesFirst(db)
			if activityLimit > 0 {
				db = db.Limit(activityLimit)
			}
			return db
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&app).Error
	if err != nil {
		return nil, notFoundOr(err, "Job application")
	}
	return &app, nil
}

func (r *jobRepository) List(ctx context.Context, userID string, filter JobFilter, page models.PageRequest, activityLimit int) ([]models.JobApplication, int64, error) {
	defer observability.TrackQuery("list", "job_applications")()

	db := r.db.WithContext(ctx)
	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Where("user_id = ?", userID)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if company := strings.TrimSpace(filter.Company); company != "" {
			q = q.Where(`LOWER(company_name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(company))+"%")
		}
		return q
	}

	var total int64
	if err := db.Model(&models.JobApplication{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var apps []models.JobApplication
	err := db.Scopes(scope).
		Order("application_date DESC, created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&apps).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if err := r.attachActivities(ctx, apps, activityLimit); err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// attachActivities loads activities for a page of applications, keeping at
// most limit per application. A single preload cannot cap per parent.
func (r *jobRepository) attachActivities(ctx context.Context, apps []models.JobApplication, limit int) error {
	if len(apps) == 0 {
		return nil
	}
	ids := make([]string, len(apps))
	for i := range apps {
		ids[i] = apps[i].ID
		apps[i].Activities = []models.JobActivity{}
	}

	var activities []models.JobActivity
	err := newestActivitiesFirst(r.db.WithContext(ctx)).
		Where("job_application_id IN ?", ids).
		Find(&activities).Error
	if err != nil {
		return models.NewInternalError(err)
	}

	index := make(map[string]int, len(apps))
	for i := range apps {
		index[apps[i].ID] = i
	}
	for _, a := range activities {
		i := index[a.JobApplicationID]
		if limit > 0 && len(apps[i].Activities) >= limit {
			continue
		}
		apps[i].Activities = append(apps[i].Activities, a)
	}
	return nil
}

func (r *jobRepository) Update(ctx context.Context, app *models.JobApplication) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(app).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *jobRepository) UpdateStatus(ctx context.Context, id string, status models.JobStatus) error {
	err := r.db.WithContext(ctx).
		Model(&models.JobApplication{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, slog.String("application_id", id), slog.String("status", string(status)))
	return nil
}

func (r *jobRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("job_application_id = ?", id).Delete(&models.JobActivity{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := db.Where("id = ?", id).Delete(&models.JobApplication{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.log.LogDelete(ctx, slog.String("application_id", id))
	return nil
}

func (r *jobRepository) CreateActivity(ctx context.Context, activity *models.JobActivity) error {
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *jobRepository) GetActivity(ctx context.Context, appID, id string) (*models.JobActivity, error) {
	var activity models.JobActivity
	err := r.db.WithContext(ctx).
		Where("id = ? AND job_application_id = ?", id, appID).
		First(&activity).Error
	if err != nil {
		return nil, notFoundOr(err, "Activity")
	}
	return &activity, nil
}

func (r *jobRepository) UpdateActivity(ctx context.Context, activity *models.JobActivity) error {
	if err := r.db.WithContext(ctx).Save(activity).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *jobRepository) DeleteActivity(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.JobActivity{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *jobRepository) CountByStatus(ctx context.Context, userID string) ([]models.StatusCount, error) {
	defer observability.TrackQuery("count_by_status", "job_applications")()

	var counts []models.StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.JobApplication{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Order("status").
		Scan(&counts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return counts, nil
}

// ApplicationDatesSince returns the application dates on or after since, ascending.
// Month bucketing happens in Go so the query stays portable across drivers.
func (r *jobRepository) ApplicationDatesSince(ctx context.Context, userID string, since models.Date) ([]models.Date, error) {
	var rows []struct {
		ApplicationDate models.Date
	}
	err := r.db.WithContext(ctx).
		Model(&models.JobApplication{}).
		Select("application_date").
		Where("user_id = ? AND application_date >= ?", userID, since).
		Order("application_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	dates := make([]models.Date, len(rows))
	for i, row := range rows {
		dates[i] = row.ApplicationDate
	}
	return dates, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *jobRepository) Summaries(ctx context.Context, userID string) ([]JobSummary, error) {
	var out []JobSummary
	err := r.db.WithContext(ctx).
		Model(&models.JobApplication{}).
		Select("id", "status", "created_at").
		Where("user_id = ?", userID).
		Scan(&out).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
