package service

import (
	"context"
	"testing"

	"momentum/internal/models"
	"momentum/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProjectService_CreateWithSubprojects(t *testing.T) {
	store := newTestStore(t)
	svc := NewProjectService(store, nil, nil)
	user := newTestUser(t, store, "owner@example.com")
	ctx := context.Background()

	deadline := models.NewDate(2024, 9, 1)
	project, err := svc.Create(ctx, user.ID, CreateProjectInput{
		Name:        "  Momentum  ",
		Deadline:    &deadline,
		Subprojects: []string{"API", "Docs"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Momentum", project.Name)
	assert.Equal(t, models.ProjectActive, project.Status)
	require.Len(t, project.Subprojects, 2)
	assert.Equal(t, project.ID, project.Subprojects[0].ProjectID)

	_, err = svc.Create(ctx, user.ID, CreateProjectInput{Name: "Momentum"})
	assertCode(t, err, models.CodeConflict)

	other := newTestUser(t, store, "other@example.com")
	_, err = svc.Create(ctx, other.ID, CreateProjectInput{Name: "Momentum"})
	require.NoError(t, err, "names are unique per owner only")
}

func TestProjectService_CreateValidation(t *testing.T) {
	store := newTestStore(t)
	svc := NewProjectService(store, nil, nil)
	user := newTestUser(t, store, "owner@example.com")

	tests := []struct {
		name string
		in   CreateProjectInput
	}{
		{"blank name", CreateProjectInput{Name: "   "}},
		{"unknown status", CreateProjectInput{Name: "X", Status: "archived"}},
		{"duplicate subprojects", CreateProjectInput{Name: "X", Subprojects: []string{"API", " API"}}},
		{"empty subproject", CreateProjectInput{Name: "X", Subprojects: []string{""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), user.ID, tt.in)
			assertValidationError(t, err)
		})
	}

	projects, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, projects, "rejected input must not leave a partial project")
}

func TestProjectService_UpdateAndOwnership(t *testing.T) {
	store := newTestStore(t)
	svc := NewProjectService(store, nil, nil)
	owner := newTestUser(t, store, "owner@example.com")
	stranger := newTestUser(t, store, "stranger@example.com")
	ctx := context.Background()

	first, err := svc.Create(ctx, owner.ID, CreateProjectInput{Name: "First", Description: "keep me"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner.ID, CreateProjectInput{Name: "Second"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, owner.ID, first.ID, models.ProjectPatch{Status: ptr(models.ProjectPaused)})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectPaused, updated.Status)
	assert.Equal(t, "keep me", updated.Description)

	_, err = svc.Update(ctx, owner.ID, first.ID, models.ProjectPatch{Name: ptr("Second")})
	assertCode(t, err, models.CodeConflict)

	_, err = svc.Update(ctx, stranger.ID, first.ID, models.ProjectPatch{Name: ptr("Mine now")})
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.Get(ctx, stranger.ID, first.ID)
	assertCode(t, err, models.CodeNotFound)
	assertCode(t, svc.Delete(ctx, stranger.ID, first.ID), models.CodeNotFound)
}

func TestProjectService_UpdateReturnsSubprojects(t *testing.T) {
	store := newTestStore(t)
	svc := NewProjectService(store, nil, nil)
	user := newTestUser(t, store, "owner@example.com")
	ctx := context.Background()

	project, err := svc.Create(ctx, user.ID, CreateProjectInput{Name: "Shape", Subprojects: []string{"API", "Docs"}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user.ID, project.ID, models.ProjectPatch{Description: ptr("new")})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Description)
	require.Len(t, updated.Subprojects, 2)
	assert.Equal(t, "API", updated.Subprojects[0].Name)
	assert.Equal(t, "Docs", updated.Subprojects[1].Name)
}

// An entry committed between the project read and its write must not have
// its hours overwritten by the project update.
func TestProjectService_UpdateKeepsInterleavedHours(t *testing.T) {
	store := newTestStore(t)
	svc := NewProjectService(store, nil, nil)
	user := newTestUser(t, store, "owner@example.com")
	ctx := context.Background()

	project, err := svc.Create(ctx, user.ID, CreateProjectInput{Name: "Racy"})
	require.NoError(t, err)

	fired := false
	err = store.DB().Callback().Update().Before("gorm:update").Register("test:interleave_entry", func(db *gorm.DB) {
		if fired || db.Statement.Table != "projects" {
			return
		}
		fired = true
		writer := repository.NewStore(db.Session(&gorm.Session{NewDB: true}))
		entry := &models.DailyEntry{
			UserID:           user.ID,
			ProjectID:        project.ID,
			EntryDate:        models.NewDate(2024, 3, 1),
			WhatShippedToday: "interleaved",
			HoursSpent:       3,
		}
		if err := writer.DailyEntries.Create(ctx, entry); err != nil {
			_ = db.AddError(err)
			return
		}
		if err := writer.Projects.RecomputeHours(ctx, project.ID); err != nil {
			_ = db.AddError(err)
		}
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user.ID, project.ID, models.ProjectPatch{Status: ptr(models.ProjectPaused)})
	require.NoError(t, err)
	require.True(t, fired)
	assert.Equal(t, models.ProjectPaused, updated.Status)

	hours, err := store.Projects.GetHours(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, hours)
	assert.Equal(t, 3.0, updated.TotalHoursLogged)
}

func TestProjectService_DeleteRemovesArtifacts(t *testing.T) {
	store := newTestStore(t)
	cleaner := &recordingCleaner{}
	projects := NewProjectService(store, nil, cleaner)
	user := newTestUser(t, store, "owner@example.com")
	ctx := context.Background()

	project, err := projects.Create(ctx, user.ID, CreateProjectInput{Name: "Doomed", Subprojects: []string{"A"}})
	require.NoError(t, err)

	entry := &models.DailyEntry{
		UserID:           user.ID,
		ProjectID:        project.ID,
		EntryDate:        models.NewDate(2024, 3, 1),
		WhatShippedToday: "things",
		HoursSpent:       2,
		ProofFiles: []models.ProofFile{{
			FileName:    "shot.png",
			FileType:    "image/png",
			FileSize:    3,
			FileURL:     "/uploads/u/shot.png",
			StoragePath: "u/shot.png",
			PreviewPath: "u/shot-preview.webp",
		}},
	}
	require.NoError(t, store.DailyEntries.Create(ctx, entry))
	require.NoError(t, store.WeeklyReviews.Create(ctx, &models.WeeklyReview{
		UserID:        user.ID,
		ProjectID:     project.ID,
		WeekStartDate: models.NewDate(2024, 2, 26),
		WhatShipped:   "x",
		WhatLearned:   "y",
		HoursSpent:    5,
	}))

	require.NoError(t, projects.Delete(ctx, user.ID, project.ID))
	assert.ElementsMatch(t, []string{"u/shot.png", "u/shot-preview.webp"}, cleaner.removed())

	_, err = projects.Get(ctx, user.ID, project.ID)
	assertCode(t, err, models.CodeNotFound)
	_, err = store.DailyEntries.GetOwned(ctx, user.ID, entry.ID)
	assertCode(t, err, models.CodeNotFound)
}

func TestSubprojectService(t *testing.T) {
	store := newTestStore(t)
	projects := NewProjectService(store, nil, nil)
	subs := NewSubprojectService(store)
	owner := newTestUser(t, store, "owner@example.com")
	stranger := newTestUser(t, store, "stranger@example.com")
	ctx := context.Background()

	project, err := projects.Create(ctx, owner.ID, CreateProjectInput{Name: "Parent"})
	require.NoError(t, err)
	otherProject, err := projects.Create(ctx, owner.ID, CreateProjectInput{Name: "Other"})
	require.NoError(t, err)

	sp, err := subs.Create(ctx, owner.ID, project.ID, CreateSubprojectInput{Name: "Backend"})
	require.NoError(t, err)
	assert.Equal(t, models.SubprojectActive, sp.Status)

	_, err = subs.Create(ctx, owner.ID, project.ID, CreateSubprojectInput{Name: "Backend"})
	assertCode(t, err, models.CodeConflict)

	_, err = subs.Create(ctx, owner.ID, project.ID, CreateSubprojectInput{Name: "Ops", Status: "cancelled"})
	assertValidationError(t, err)

	_, err = subs.Create(ctx, stranger.ID, project.ID, CreateSubprojectInput{Name: "Sneaky"})
	assertCode(t, err, models.CodeNotFound)

	updated, err := subs.Update(ctx, owner.ID, project.ID, sp.ID, models.SubprojectPatch{Status: ptr(models.SubprojectCompleted)})
	require.NoError(t, err)
	assert.Equal(t, models.SubprojectCompleted, updated.Status)

	_, err = subs.Update(ctx, owner.ID, otherProject.ID, sp.ID, models.SubprojectPatch{Name: ptr("Moved")})
	assertCode(t, err, models.CodeNotFound)

	assertCode(t, subs.Delete(ctx, stranger.ID, project.ID, sp.ID), models.CodeNotFound)
	require.NoError(t, subs.Delete(ctx, owner.ID, project.ID, sp.ID))
	assertCode(t, subs.Delete(ctx, owner.ID, project.ID, sp.ID), models.CodeNotFound)
}
