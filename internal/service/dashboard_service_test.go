package service

import (
	"context"
	"testing"
	"time"

	"momentum/internal/cache"
	"momentum/internal/models"
	"momentum/internal/repository"
	"momentum/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFocusStreak(t *testing.T) {
	t.Parallel()

	today := models.NewDate(2024, 3, 10)
	day := func(d int) models.Date { return models.NewDate(2024, 3, d) }

	tests := []struct {
		name  string
		dates []models.Date
		want  int
	}{
		{"none", nil, 0},
		{"today only", []models.Date{day(10)}, 1},
		{"run ending today", []models.Date{day(10), day(9), day(8), day(6)}, 3},
		{"run ending yesterday", []models.Date{day(9), day(8)}, 2},
		{"gap before yesterday", []models.Date{day(8), day(7)}, 0},
		{"future dates ignored", []models.Date{day(12), day(10), day(9)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, focusStreak(tt.dates, today))
		})
	}
}

func TestTimeframeStart(t *testing.T) {
	t.Parallel()

	// Wednesday.
	now := time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)
	assert.True(t, timeframeStart("all", now).IsZero())
	assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), timeframeStart("daily", now))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), timeframeStart("weekly", now))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), timeframeStart("monthly", now))
}

func TestSummarizeJobs(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	jobs := []repository.JobSummary{
		{ID: "1", Status: models.JobApplied, CreatedAt: now.Add(-time.Hour)},
		{ID: "2", Status: models.JobScreening, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "3", Status: models.JobInterview, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "4", Status: models.JobOffer, CreatedAt: now.Add(-4 * time.Hour)},
		{ID: "5", Status: models.JobRejected, CreatedAt: now.AddDate(0, -2, 0)},
	}

	var all DashboardSummary
	summarizeJobs(&all, jobs, time.Time{})
	assert.Equal(t, 5, all.TotalJobs)
	assert.Equal(t, 20, all.ConversionRate)
	assert.Equal(t, 40, all.InterviewRate)
	assert.Equal(t, []models.StatusCount{
		{Status: models.JobApplied, Count: 1},
		{Status: models.JobInterview, Count: 2},
		{Status: models.JobOffer, Count: 1},
		{Status: models.JobRejected, Count: 1},
	}, all.StatusData)

	var daily DashboardSummary
	summarizeJobs(&daily, jobs, timeframeStart("daily", now))
	assert.Equal(t, 4, daily.TotalJobs)
	assert.Equal(t, 25, daily.ConversionRate)
	assert.Equal(t, 50, daily.InterviewRate)

	var empty DashboardSummary
	summarizeJobs(&empty, nil, time.Time{})
	assert.Zero(t, empty.ConversionRate)
	assert.Empty(t, empty.StatusData)
}

func TestDashboardService_Summary(t *testing.T) {
	store := newTestStore(t)
	c, mr := newTestCache(t)
	user := newTestUser(t, store, "dash@example.com")
	ctx := context.Background()
	today := models.Today()

	deadline := models.DateOf(today.AddDate(0, 0, 2))
	far := models.DateOf(today.AddDate(0, 0, 30))
	projects := NewProjectService(store, c, nil)
	soon, err := projects.Create(ctx, user.ID, CreateProjectInput{Name: "Soon", Deadline: &deadline})
	require.NoError(t, err)
	_, err = projects.Create(ctx, user.ID, CreateProjectInput{Name: "Later", Deadline: &far})
	require.NoError(t, err)

	daily := NewDailyService(store, nil, nil, c, nil, storage.Limits{})
	for offset, focus := range []bool{true, true, false} {
		_, err := daily.Create(ctx, user.ID, CreateDailyEntryInput{
			ProjectID:        soon.ID,
			EntryDate:        models.DateOf(today.AddDate(0, 0, -offset)),
			DailyFocus:       focus,
			WhatShippedToday: "work",
			HoursSpent:       2,
			ProofLink:        "https://example.com/p",
		}, nil)
		require.NoError(t, err)
	}
	_, err = daily.Create(ctx, user.ID, CreateDailyEntryInput{
		ProjectID:        soon.ID,
		EntryDate:        models.DateOf(today.AddDate(0, 0, -20)),
		WhatShippedToday: "old work",
		HoursSpent:       4,
		ProofLink:        "https://example.com/p",
	}, nil)
	require.NoError(t, err)

	jobs := NewJobService(store, c)
	app, err := jobs.Create(ctx, user.ID, jobInput("Acme", today))
	require.NoError(t, err)
	_, err = jobs.Update(ctx, user.ID, app.ID, models.JobApplicationPatch{Status: ptr(models.JobOffer)})
	require.NoError(t, err)
	_, err = jobs.Create(ctx, user.ID, jobInput("Globex", today))
	require.NoError(t, err)

	svc := NewDashboardService(store, c)
	summary, err := svc.Summary(ctx, user.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "all", summary.Timeframe)
	assert.Equal(t, 2, summary.TotalJobs)
	assert.Equal(t, 50, summary.ConversionRate)
	assert.Equal(t, 0, summary.InterviewRate)
	require.Len(t, summary.DailyTrend, 7)
	assert.Equal(t, today.String(), summary.DailyTrend[6].Date)
	assert.Equal(t, 2, summary.DailyTrend[6].Count)
	assert.InDelta(t, 10, summary.TotalProjectHours, 0.001)
	assert.InDelta(t, 6, summary.HoursLast7Days, 0.001)
	assert.Equal(t, 2, summary.FocusStreak)
	require.Len(t, summary.UpcomingDeadlines, 1)
	assert.Equal(t, "Soon", summary.UpcomingDeadlines[0].Name)
	assert.Equal(t, 2, summary.UpcomingDeadlines[0].DaysLeft)
	assert.Len(t, summary.ProjectData, 2)
	assert.True(t, mr.Exists(cache.DashboardKey(user.ID, "all")))

	_, err = svc.Summary(ctx, user.ID, "yearly")
	assertValidationError(t, err)

	_, err = jobs.Create(ctx, user.ID, jobInput("Initech", today))
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.DashboardKey(user.ID, "all")))
}
