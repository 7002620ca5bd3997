package service

import (
	"context"
	"sort"
	"strings"

	"momentum/internal/cache"
	"momentum/internal/models"
	"momentum/internal/observability"
	"momentum/internal/repository"
	"momentum/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// listActivityLimit caps the activities embedded in each application of a list.
const listActivityLimit = 5

const (
	jobStatusMessage     = "status must be one of applied, screening, interview, offer, rejected, withdrawn"
	activityTypeMessage  = "activityType must be one of application, follow_up, phone_screen, interview, offer, rejection, withdrawal"
	statsWindowMonths    = 12
	monthLayout          = "2006-01"
	maxSalaryRangeLength = maxShortLen
)

type JobService struct {
	store *repository.Store
	cache *cache.Store
	today func() models.Date
}

type CreateJobInput struct {
	CompanyName     string           `json:"companyName"`
	PositionTitle   string           `json:"positionTitle"`
	JobDescription  string           `json:"jobDescription"`
	ApplicationDate models.Date      `json:"applicationDate"`
	Status          models.JobStatus `json:"status"`
	ApplicationURL  string           `json:"applicationUrl"`
	SalaryRange     string           `json:"salaryRange"`
	Location        string           `json:"location"`
	RemoteOption    string           `json:"remoteOption"`
	Notes           string           `json:"notes"`
}

type CreateActivityInput struct {
	ActivityType  models.ActivityType `json:"activityType"`
	ActivityDate  models.Date         `json:"activityDate"`
	Description   string              `json:"description"`
	ContactPerson string              `json:"contactPerson"`
	Notes         string              `json:"notes"`
}

func NewJobService(store *repository.Store, cache *cache.Store) *JobService {
	return &JobService{store: store, cache: cache, today: models.Today}
}

func (s *JobService) Create(ctx context.Context, userID string, in CreateJobInput) (_ *models.JobApplication, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "JobService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.PositionTitle = strings.TrimSpace(in.PositionTitle)
	in.ApplicationURL = strings.TrimSpace(in.ApplicationURL)
	if in.Status == "" {
		in.Status = models.JobApplied
	}

	var v validation.Errors
	v.Required("companyName", in.CompanyName)
	v.MaxLen("companyName", in.CompanyName, maxNameLen)
	v.Required("positionTitle", in.PositionTitle)
	v.MaxLen("positionTitle", in.PositionTitle, maxNameLen)
	v.Check(!in.ApplicationDate.IsZero(), "applicationDate is required")
	v.Check(in.Status.Valid(), jobStatusMessage)
	v.URI("applicationUrl", in.ApplicationURL)
	v.MaxLen("salaryRange", in.SalaryRange, maxSalaryRangeLength)
	v.MaxLen("location", in.Location, maxNameLen)
	if err := v.Err(); err != nil {
		return nil, err
	}

	app := &models.JobApplication{
		UserID:          userID,
		CompanyName:     in.CompanyName,
		PositionTitle:   in.PositionTitle,
		JobDescription:  in.JobDescription,
		ApplicationDate: in.ApplicationDate,
		Status:          in.Status,
		ApplicationURL:  in.ApplicationURL,
		SalaryRange:     in.SalaryRange,
		Location:        in.Location,
		RemoteOption:    in.RemoteOption,
		Notes:           in.Notes,
	}
	app.Activities = []models.JobActivity{models.ApplicationActivity(app)}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Jobs.Create(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(ctx, userID)
	return app, nil
}

// Update applies patch. A status change also records the matching activity, dated today.
func (s *JobService) Update(ctx context.Context, userID, id string, patch models.JobApplicationPatch) (_ *models.JobApplication, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "JobService", "Update", attribute.String("application.id", id))
	defer func() { observability.EndSpan(span, err) }()

	trimPtr(patch.CompanyName)
	trimPtr(patch.PositionTitle)
	trimPtr(patch.ApplicationURL)

	var v validation.Errors
	if patch.CompanyName != nil {
		v.Required("companyName", *patch.CompanyName)
		v.MaxLen("companyName", *patch.CompanyName, maxNameLen)
	}
	if patch.PositionTitle != nil {
		v.Required("positionTitle", *patch.PositionTitle)
		v.MaxLen("positionTitle", *patch.PositionTitle, maxNameLen)
	}
	if patch.ApplicationDate != nil {
		v.Check(!patch.ApplicationDate.IsZero(), "applicationDate is required")
	}
	if patch.Status != nil {
		v.Check(patch.Status.Valid(), jobStatusMessage)
	}
	if patch.ApplicationURL != nil {
		v.URI("applicationUrl", *patch.ApplicationURL)
	}
	if patch.SalaryRange != nil {
		v.MaxLen("salaryRange", *patch.SalaryRange, maxSalaryRangeLength)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		app, err := tx.Jobs.GetOwned(ctx, userID, id, 1)
		if err != nil {
			return err
		}
		previous := app.Status
		patch.Apply(app)
		if err := tx.Jobs.Update(ctx, app); err != nil {
			return err
		}
		if app.Status == previous {
			return nil
		}
		activity, ok := models.StatusChangeActivity(app.ID, app.Status, s.today())
		if !ok {
			return nil
		}
		return tx.Jobs.CreateActivity(ctx, &activity)
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(ctx, userID)
	return s.store.Jobs.GetOwned(ctx, userID, id, 0)
}

func (s *JobService) Delete(ctx context.Context, userID, id string) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "JobService", "Delete", attribute.String("application.id", id))
	defer func() { observability.EndSpan(span, err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Jobs.GetOwned(ctx, userID, id, 1); err != nil {
			return err
		}
		return tx.Jobs.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.cache.InvalidateUser(ctx, userID)
	return nil
}

// List returns one page of applications, each with its most recent activities.
func (s *JobService) List(ctx context.Context, userID string, filter repository.JobFilter, page models.PageRequest) ([]models.JobApplication, models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.Pagination{}, models.NewValidationError("Validation error", jobStatusMessage)
	}
	filter.Company = strings.TrimSpace(filter.Company)

	apps, total, err := s.store.Jobs.List(ctx, userID, filter, page, listActivityLimit)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return apps, page.Paginate(total), nil
}

// Get returns the application with its full activity timeline.
func (s *JobService) Get(ctx context.Context, userID, id string) (*models.JobApplication, error) {
	return s.store.Jobs.GetOwned(ctx, userID, id, 0)
}

// AddActivity records an activity. Activities that imply a pipeline stage
// move the application to it.
func (s *JobService) AddActivity(ctx context.Context, userID, appID string, in CreateActivityInput) (_ *models.JobActivity, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "JobService", "AddActivity", attribute.String("application.id", appID))
	defer func() { observability.EndSpan(span, err) }()

	var v validation.Errors
	v.Check(in.ActivityType.Valid(), activityTypeMessage)
	v.Check(!in.ActivityDate.IsZero(), "activityDate is required")
	v.MaxLen("contactPerson", in.ContactPerson, maxNameLen)
	if err := v.Err(); err != nil {
		return nil, err
	}

	activity := &models.JobActivity{
		JobApplicationID: appID,
		ActivityType:     in.ActivityType,
		ActivityDate:     in.ActivityDate,
		Description:      in.Description,
		ContactPerson:    in.ContactPerson,
		Notes:            in.Notes,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		app, err := tx.Jobs.GetOwned(ctx, userID, appID, 1)
		if err != nil {
			return err
		}
		if err := tx.Jobs.CreateActivity(ctx, activity); err != nil {
			return err
		}
		status, ok := models.StatusForActivity(activity.ActivityType)
		if !ok || status == app.Status {
			return nil
		}
		return tx.Jobs.UpdateStatus(ctx, app.ID, status)
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(ctx, userID)
	return activity, nil
}

// UpdateActivity edits an activity without touching the application status.
func (s *JobService) UpdateActivity(ctx context.Context, userID, appID, id string, patch models.JobActivityPatch) (_ *models.JobActivity, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "JobService", "UpdateActivity", attribute.String("activity.id", id))
	defer func() { observability.EndSpan(span, err) }()

	var v validation.Errors
	if patch.ActivityType != nil {
		v.Check(patch.ActivityType.Valid(), activityTypeMessage)
	}
	if patch.ActivityDate != nil {
		v.Check(!patch.ActivityDate.IsZero(), "activityDate is required")
	}
	if patch.ContactPerson != nil {
		v.MaxLen("contactPerson", *patch.ContactPerson, maxNameLen)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.store.Jobs.GetOwned(ctx, userID, appID, 1); err != nil {
		return nil, err
	}
	activity, err := s.store.Jobs.GetActivity(ctx, appID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(activity)
	if err := s.store.Jobs.UpdateActivity(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

func (s *JobService) DeleteActivity(ctx context.Context, userID, appID, id string) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "JobService", "DeleteActivity", attribute.String("activity.id", id))
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.store.Jobs.GetOwned(ctx, userID, appID, 1); err != nil {
		return err
	}
	if _, err := s.store.Jobs.GetActivity(ctx, appID, id); err != nil {
		return err
	}
	return s.store.Jobs.DeleteActivity(ctx, id)
}

// Stats summarizes the user's applications by status and by application
// month over the last year. Results are cached until the next job mutation.
func (s *JobService) Stats(ctx context.Context, userID string) (_ *models.JobStats, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "JobService", "Stats")
	defer func() { observability.EndSpan(span, err) }()

	var stats models.JobStats
	err = s.cache.Aside(ctx, "job_stats", cache.JobStatsKey(userID), &stats, cache.JobStatsTTL, func() error {
		computed, err := s.computeStats(ctx, userID)
		if err != nil {
			return err
		}
		stats = *computed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *JobService) computeStats(ctx context.Context, userID string) (*models.JobStats, error) {
	counts, err := s.store.Jobs.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := &models.JobStats{
		StatusStats:  counts,
		MonthlyStats: []models.MonthCount{},
	}
	if stats.StatusStats == nil {
		stats.StatusStats = []models.StatusCount{}
	}
	for _, c := range counts {
		stats.TotalApplications += c.Count
	}

	since := models.DateOf(s.today().AddDate(0, -statsWindowMonths, 0))
	dates, err := s.store.Jobs.ApplicationDatesSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	byMonth := make(map[string]int64)
	for _, d := range dates {
		byMonth[d.Format(monthLayout)]++
	}
	for month, n := range byMonth {
		stats.MonthlyStats = append(stats.MonthlyStats, models.MonthCount{Month: month, Count: n})
	}
	sort.Slice(stats.MonthlyStats, func(i, j int) bool {
		return stats.MonthlyStats[i].Month < stats.MonthlyStats[j].Month
	})
	return stats, nil
}
