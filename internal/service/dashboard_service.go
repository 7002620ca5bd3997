package service

import (
	"context"
	"math"
	"slices"
	"time"

	"momentum/internal/cache"
	"momentum/internal/models"
	"momentum/internal/observability"
	"momentum/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	trendDays        = 7
	deadlineHorizon  = 3
	defaultTimeframe = "all"
)

// DayCount is the number of applications created on one day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ProjectHours is one bar of the hours-per-project chart.
type ProjectHours struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Hours    float64      `json:"hours"`
	Deadline *models.Date `json:"deadline"`
}

// UpcomingDeadline is a project due within the next few days.
type UpcomingDeadline struct {
	ProjectID string      `json:"projectId"`
	Name      string      `json:"name"`
	Deadline  models.Date `json:"deadline"`
	DaysLeft  int         `json:"daysLeft"`
}

// DashboardSummary aggregates the numbers shown on the dashboard.
type DashboardSummary struct {
	Timeframe         string               `json:"timeframe"`
	TotalJobs         int                  `json:"totalJobs"`
	StatusData        []models.StatusCount `json:"statusData"`
	DailyTrend        []DayCount           `json:"dailyTrend"`
	ConversionRate    int                  `json:"conversionRate"`
	InterviewRate     int                  `json:"interviewRate"`
	ProjectData       []ProjectHours       `json:"projectData"`
	TotalProjectHours float64              `json:"totalProjectHours"`
	UpcomingDeadlines []UpcomingDeadline   `json:"upcomingDeadlines"`
	HoursLast7Days    float64              `json:"hoursLast7Days"`
	FocusStreak       int                  `json:"focusStreak"`
}

type DashboardService struct {
	store *repository.Store
	cache *cache.Store
	now   func() time.Time
}

func NewDashboardService(store *repository.Store, cache *cache.Store) *DashboardService {
	return &DashboardService{store: store, cache: cache, now: func() time.Time { return time.Now().UTC() }}
}

// Summary builds the dashboard for timeframe, one of all, daily, weekly or
// monthly. The timeframe filters applications by creation time only.
func (s *DashboardService) Summary(ctx context.Context, userID, timeframe string) (_ *DashboardSummary, err error) {
	if timeframe == "" {
		timeframe = defaultTimeframe
	}
	if !slices.Contains(cache.DashboardTimeframes, timeframe) {
		return nil, models.NewValidationError("Validation error", "timeframe must be one of all, daily, weekly, monthly")
	}

	ctx, span := observability.StartServiceSpan(ctx, "DashboardService", "Summary", attribute.String("timeframe", timeframe))
	defer func() { observability.EndSpan(span, err) }()

	var summary DashboardSummary
	err = s.cache.Aside(ctx, "dashboard", cache.DashboardKey(userID, timeframe), &summary, cache.DashboardTTL, func() error {
		computed, err := s.compute(ctx, userID, timeframe)
		if err != nil {
			return err
		}
		summary = *computed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *DashboardService) compute(ctx context.Context, userID, timeframe string) (*DashboardSummary, error) {
	now := s.now()
	today := models.DateOf(now)

	jobs, err := s.store.Jobs.Summaries(ctx, userID)
	if err != nil {
		return nil, err
	}
	projects, err := s.store.Projects.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.DailyEntries.ListSince(ctx, userID, models.DateOf(today.AddDate(0, 0, -(trendDays-1))))
	if err != nil {
		return nil, err
	}
	focusDates, err := s.store.DailyEntries.FocusDates(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{Timeframe: timeframe}
	summarizeJobs(summary, jobs, timeframeStart(timeframe, now))
	summary.DailyTrend = dailyTrend(jobs, today)
	summarizeProjects(summary, projects, today)
	for i := range recent {
		summary.HoursLast7Days += recent[i].HoursSpent
	}
	summary.HoursLast7Days = models.RoundHours(summary.HoursLast7Days)
	summary.FocusStreak = focusStreak(focusDates, today)
	return summary, nil
}

// timeframeStart is the earliest creation time included by timeframe. The
// zero time means no lower bound. Weeks start on Sunday.
func timeframeStart(timeframe string, now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch timeframe {
	case "daily":
		return day
	case "weekly":
		return day.AddDate(0, 0, -int(day.Weekday()))
	case "monthly":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
	return time.Time{}
}

func summarizeJobs(summary *DashboardSummary, jobs []repository.JobSummary, since time.Time) {
	counts := make(map[models.JobStatus]int)
	for _, job := range jobs {
		if !since.IsZero() && job.CreatedAt.Before(since) {
			continue
		}
		summary.TotalJobs++
		counts[job.Status]++
	}

	// Screening is charted together with interview.
	summary.StatusData = []models.StatusCount{}
	for _, status := range models.JobStatuses {
		n := counts[status]
		switch status {
		case models.JobScreening:
			continue
		case models.JobInterview:
			n += counts[models.JobScreening]
		}
		if n > 0 {
			summary.StatusData = append(summary.StatusData, models.StatusCount{Status: status, Count: int64(n)})
		}
	}

	summary.ConversionRate = percent(counts[models.JobOffer], summary.TotalJobs)
	summary.InterviewRate = percent(counts[models.JobInterview]+counts[models.JobScreening], summary.TotalJobs)
}

// dailyTrend counts applications created on each of the last seven days,
// oldest first, regardless of timeframe.
func dailyTrend(jobs []repository.JobSummary, today models.Date) []DayCount {
	trend := make([]DayCount, trendDays)
	index := make(map[string]int, trendDays)
	for i := range trend {
		day := today.AddDate(0, 0, i-(trendDays-1)).Format(models.DateLayout)
		trend[i].Date = day
		index[day] = i
	}
	for _, job := range jobs {
		if i, ok := index[job.CreatedAt.UTC().Format(models.DateLayout)]; ok {
			trend[i].Count++
		}
	}
	return trend
}

func summarizeProjects(summary *DashboardSummary, projects []models.Project, today models.Date) {
	summary.ProjectData = make([]ProjectHours, 0, len(projects))
	summary.UpcomingDeadlines = []UpcomingDeadline{}
	for i := range projects {
		p := &projects[i]
		summary.ProjectData = append(summary.ProjectData, ProjectHours{
			ID:       p.ID,
			Name:     p.Name,
			Hours:    p.TotalHoursLogged,
			Deadline: p.Deadline,
		})
		summary.TotalProjectHours += p.TotalHoursLogged

		if p.Deadline == nil {
			continue
		}
		daysLeft := int(p.Deadline.Sub(today.Time).Hours() / 24)
		if daysLeft >= 0 && daysLeft <= deadlineHorizon {
			summary.UpcomingDeadlines = append(summary.UpcomingDeadlines, UpcomingDeadline{
				ProjectID: p.ID,
				Name:      p.Name,
				Deadline:  *p.Deadline,
				DaysLeft:  daysLeft,
			})
		}
	}
	summary.TotalProjectHours = models.RoundHours(summary.TotalProjectHours)
	slices.SortStableFunc(summary.UpcomingDeadlines, func(a, b UpcomingDeadline) int {
		return a.DaysLeft - b.DaysLeft
	})
}

// focusStreak counts consecutive focus days ending today, or ending
// yesterday when today has no focus entry yet. dates must be newest first.
func focusStreak(dates []models.Date, today models.Date) int {
	if len(dates) == 0 {
		return 0
	}
	expected := today
	if !dates[0].Equal(today.Time) {
		expected = models.DateOf(today.AddDate(0, 0, -1))
	}
	streak := 0
	for _, d := range dates {
		if d.After(expected.Time) {
			continue
		}
		if !d.Equal(expected.Time) {
			break
		}
		streak++
		expected = models.DateOf(expected.AddDate(0, 0, -1))
	}
	return streak
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
