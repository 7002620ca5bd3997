package repository

import (
	"context"
	"log/slog"

	"momentum/internal/middleware"
	"momentum/internal/models"
	"momentum/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyFilter narrows a daily entry listing. The date range only applies
// when both bounds are set.
type DailyFilter struct {
	ProjectID string
	StartDate models.Date
	EndDate   models.Date
}

// DailyEntryRepository defines persistence operations for daily entries and their proof files.
type DailyEntryRepository interface {
	// Create inserts the entry together with any ProofFiles set on it.
	Create(ctx context.Context, entry *models.DailyEntry) error
	GetOwned(ctx context.Context, userID, id string) (*models.DailyEntry, error)
	List(ctx context.Context, userID string, filter DailyFilter, page models.PageRequest) ([]models.DailyEntry, int64, error)
	Update(ctx context.Context, entry *models.DailyEntry) error
	// Delete removes the entry and its proof file rows, returning the rows removed.
	Delete(ctx context.Context, id string) ([]models.ProofFile, error)
	AddProofFiles(ctx context.Context, files []models.ProofFile) error
	GetProofFile(ctx context.Context, entryID, fileID string) (*models.ProofFile, error)
	DeleteProofFile(ctx context.Context, fileID string) error
	ListSince(ctx context.Context, userID string, since models.Date) ([]models.DailyEntry, error)
	// FocusDates returns the distinct dates on which the user kept daily focus, newest first.
	FocusDates(ctx context.Context, userID string) ([]models.Date, error)
	// ProofPaths returns every stored artifact path referenced by any proof file.
	ProofPaths(ctx context.Context) ([]string, error)
}

type dailyEntryRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

func NewDailyEntryRepository(db *gorm.DB) DailyEntryRepository {
	return &dailyEntryRepository{db: db, log: observability.NewRepoLogger("daily_execution_entries", middleware.Logger)}
}

func (r *dailyEntryRepository) Create(ctx context.Context, entry *models.DailyEntry) error {
	if err := r.db.WithContext(ctx).Omit("Project", "Subproject").Create(entry).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx,
		slog.String("entry_id", entry.ID),
		slog.String("project_id", entry.ProjectID),
		slog.Int("proof_files", len(entry.ProofFiles)),
	)
	return nil
}

func (r *dailyEntryRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Project").
		Preload("Subproject").
		Preload("ProofFiles", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

func (r *dailyEntryRepository) GetOwned(ctx context.Context, userID, id string) (*models.DailyEntry, error) {
	var entry models.DailyEntry
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, userID).
		First(&entry).Error
	if err != nil {
		return nil, notFoundOr(err, "Daily entry")
	}
	return &entry, nil
}

func (r *dailyEntryRepository) List(ctx context.Context, userID string, filter DailyFilter, page models.PageRequest) ([]models.DailyEntry, int64, error) {
	defer observability.TrackQuery("list", "daily_execution_entries")()

	db := r.db.WithContext(ctx)
	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Where("user_id = ?", userID)
		if filter.ProjectID != "" {
			q = q.Where("project_id = ?", filter.ProjectID)
		}
		if !filter.StartDate.IsZero() && !filter.EndDate.IsZero() {
			q = q.Where("entry_date BETWEEN ? AND ?", filter.StartDate, filter.EndDate)
		}
		return q
	}

	var total int64
	if err := db.Model(&models.DailyEntry{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var entries []models.DailyEntry
	err := r.withRelations(db.Scopes(scope)).
		Order("entry_date DESC, created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return entries, total, nil
}

func (r *dailyEntryRepository) Update(ctx context.Context, entry *models.DailyEntry) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *dailyEntryRepository) Delete(ctx context.Context, id string) ([]models.ProofFile, error) {
	db := r.db.WithContext(ctx)

	var files []models.ProofFile
	if err := db.Where("daily_execution_entry_id = ?", id).Find(&files).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Where("daily_execution_entry_id = ?", id).Delete(&models.ProofFile{}).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Where("id = ?", id).Delete(&models.DailyEntry{}).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	r.log.LogDelete(ctx, slog.String("entry_id", id), slog.Int("proof_files", len(files)))
	return files, nil
}

func (r *dailyEntryRepository) AddProofFiles(ctx context.Context, files []models.ProofFile) error {
	if len(files) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&files).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *dailyEntryRepository) GetProofFile(ctx context.Context, entryID, fileID string) (*models.ProofFile, error) {
	var file models.ProofFile
	err := r.db.WithContext(ctx).
		Where("id = ? AND daily_execution_entry_id = ?", fileID, entryID).
		First(&file).Error
	if err != nil {
		return nil, notFoundOr(err, "Proof file")
	}
	return &file, nil
}

func (r *dailyEntryRepository) DeleteProofFile(ctx context.Context, fileID string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", fileID).Delete(&models.ProofFile{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListSince returns the user's entries dated on or after since, without relations.
func (r *dailyEntryRepository) ListSince(ctx context.Context, userID string, since models.Date) ([]models.DailyEntry, error) {
	var entries []models.DailyEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND entry_date >= ?", userID, since).
		Order("entry_date ASC").
		Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *dailyEntryRepository) FocusDates(ctx context.Context, userID string) ([]models.Date, error) {
	var rows []struct {
		EntryDate models.Date
	}
	err := r.db.WithContext(ctx).
		Model(&models.DailyEntry{}).
		Distinct("entry_date").
		Where("user_id = ? AND daily_focus = ?", userID, true).
		Order("entry_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	dates := make([]models.Date, len(rows))
	for i, row := range rows {
		dates[i] = row.EntryDate
	}
	return dates, nil
}

func (r *dailyEntryRepository) ProofPaths(ctx context.Context) ([]string, error) {
	var files []models.ProofFile
	err := r.db.WithContext(ctx).
		Select("storage_path", "preview_path").
		Find(&files).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	paths := make([]string, 0, len(files))
	for i := range files {
		paths = append(paths, files[i].StoredPaths()...)
	}
	return paths, nil
}
