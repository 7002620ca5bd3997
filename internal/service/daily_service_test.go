package service

import (
	"context"
	"testing"

	"momentum/internal/featureflags"
	"momentum/internal/models"
	"momentum/internal/repository"
	"momentum/internal/storage"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dailyFixture struct {
	store   *repository.Store
	svc     *DailyService
	fs      afero.Fs
	cleaner *recordingCleaner
	user    *models.User
	project *models.Project
}

func newDailyFixture(t *testing.T, flags string) *dailyFixture {
	t.Helper()
	store := newTestStore(t)
	fsys := afero.NewMemMapFs()
	cleaner := &recordingCleaner{}
	svc := NewDailyService(store, storage.NewStore(fsys), cleaner, nil,
		featureflags.NewManager(flags), storage.Limits{MaxFiles: 5, MaxFileSize: 1 << 20})

	user := newTestUser(t, store, "maker@example.com")
	project, err := NewProjectService(store, nil, nil).Create(context.Background(), user.ID,
		CreateProjectInput{Name: "Main", Subprojects: []string{"Core"}})
	require.NoError(t, err)

	return &dailyFixture{store: store, svc: svc, fs: fsys, cleaner: cleaner, user: user, project: project}
}

func (f *dailyFixture) input(day int, hours float64) CreateDailyEntryInput {
	return CreateDailyEntryInput{
		ProjectID:        f.project.ID,
		EntryDate:        models.NewDate(2024, 5, day),
		WhatShippedToday: "shipped",
		HoursSpent:       hours,
		ProofLink:        "https://example.com/pr/1",
	}
}

func (f *dailyFixture) hours(t *testing.T, projectID string) float64 {
	t.Helper()
	h, err := f.store.Projects.GetHours(context.Background(), projectID)
	require.NoError(t, err)
	return h
}

func pngUpload(name string) storage.Upload {
	return storage.Upload{Filename: name, ContentType: "image/png", Content: []byte("not really a png")}
}

func TestDailyService_CreateRecomputesHours(t *testing.T) {
	f := newDailyFixture(t, "")
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.user.ID, f.input(1, 2.5), nil)
	require.NoError(t, err)
	require.NotNil(t, first.Project)
	assert.InDelta(t, 2.5, first.Project.TotalHoursLogged, 0.001)

	second, err := f.svc.Create(ctx, f.user.ID, f.input(2, 1.257), nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.26, second.HoursSpent, 0.001)
	assert.InDelta(t, 3.76, second.Project.TotalHoursLogged, 0.001)
	assert.InDelta(t, 3.76, f.hours(t, f.project.ID), 0.001)
}

func TestDailyService_CreateValidation(t *testing.T) {
	f := newDailyFixture(t, "")
	ctx := context.Background()

	noProof := f.input(1, 1)
	noProof.ProofLink = ""

	badHours := f.input(1, 0)
	tooMany := f.input(1, 25)
	badLink := f.input(1, 1)
	badLink.ProofLink = "ftp://example.com"
	badProject := f.input(1, 1)
	badProject.ProjectID = "nope"

	for name, in := range map[string]CreateDailyEntryInput{
		"no proof":     noProof,
		"zero hours":   badHours,
		"over a day":   tooMany,
		"bad link":     badLink,
		"bad project":  badProject,
		"missing date": {ProjectID: f.project.ID, WhatShippedToday: "x", HoursSpent: 1, ProofLink: "https://x.io"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.user.ID, in, nil)
			assertValidationError(t, err)
		})
	}

	_, err := f.svc.Create(ctx, f.user.ID, noProof, []storage.Upload{{Filename: "a.exe", ContentType: "application/octet-stream", Content: []byte("x")}})
	assertCode(t, err, models.CodeUpload)

	assert.Zero(t, f.hours(t, f.project.ID))
}

func TestDailyService_ProofFlagOff(t *testing.T) {
	f := newDailyFixture(t, "proof_required=off")

	in := f.input(1, 1)
	in.ProofLink = ""
	entry, err := f.svc.Create(context.Background(), f.user.ID, in, nil)
	require.NoError(t, err)
	assert.False(t, entry.HasProof())
}

func TestDailyService_CreateWithFiles(t *testing.T) {
	f := newDailyFixture(t, "")
	ctx := context.Background()

	in := f.input(3, 4)
	in.ProofLink = ""
	entry, err := f.svc.Create(ctx, f.user.ID, in, []storage.Upload{pngUpload("one.png"), pngUpload("two.png")})
	require.NoError(t, err)
	require.Len(t, entry.ProofFiles, 2)

	for _, file := range entry.ProofFiles {
		assert.Equal(t, entry.ID, file.DailyEntryID)
		exists, err := afero.Exists(f.fs, file.StoragePath)
		require.NoError(t, err)
		assert.True(t, exists, file.StoragePath)
		assert.Contains(t, file.FileURL, "/uploads/"+f.user.ID+"/")
	}
	assert.Empty(t, f.cleaner.removed())
}

func sixUploads() []storage.Upload {
	uploads := make([]storage.Upload, 0, 6)
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png", "e.png", "f.png"} {
		uploads = append(uploads, pngUpload(name))
	}
	return uploads
}

func TestDailyService_RejectsTooManyFiles(t *testing.T) {
	f := newDailyFixture(t, "")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.user.ID, f.input(1, 2), sixUploads())
	assertCode(t, err, models.CodeUpload)
	assert.InDelta(t, 0, f.hours(t, f.project.ID), 0.001)

	entry, err := f.svc.Create(ctx, f.user.ID, f.input(1, 2), sixUploads()[:5])
	require.NoError(t, err)
	require.Len(t, entry.ProofFiles, 5)

	_, err = f.svc.Update(ctx, f.user.ID, entry.ID, models.DailyEntryPatch{HoursSpent: ptr(4.0)}, sixUploads())
	assertCode(t, err, models.CodeUpload)

	got, err := f.svc.Get(ctx, f.user.ID, entry.ID)
	require.NoError(t, err)
	assert.Len(t, got.ProofFiles, 5)
	assert.InDelta(t, 2, got.HoursSpent, 0.001)

	files, err := f.svc.files.List(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 5, "a refused batch writes nothing")
}

func TestDailyService_CreateChecksOwnership(t *testing.T) {
	f := newDailyFixture(t, "")
	ctx := context.Background()
	stranger := newTestUser(t, f.store, "stranger@example.com")

	_, err := f.svc.Create(ctx, stranger.ID, f.input(1, 1), nil)
	assertCode(t, err, models.CodeNotFound)

	other, err := NewProjectService(f.store, nil, nil).Create(ctx, f.user.ID, CreateProjectInput{Name: "Other", Subprojects: []string{"Elsewhere"}})
	require.NoError(t, err)

	in := f.input(1, 1)
	in.SubprojectID = other.Subprojects[0].ID
	_, err = f.svc.Create(ctx, f.user.ID, in, []storage.Upload{pngUpload("x.png")})
	assertCode(t, err, models.CodeNotFound)

	files, err := f.svc.files.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files, "nothing is written before ownership is confirmed")
}

func TestDailyService_UpdateMovesHours(t *testing.T) {
	f := newDailyFixture(t, "")
	ctx := context.Background()

	other, err := NewProjectService(f.store, nil, nil).Create(ctx, f.user.ID, CreateProjectInput{Name: "Other"})
	require.NoError(t, err)

	in := f.input(1, 3)
	in.SubprojectID = f.project.Subprojects[0].ID
	entry, err := f.svc.Create(ctx, f.user.ID, in, nil)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.user.ID, f.input(2, 1), nil)
	require.NoError(t, err)

	// Moving without naming a subproject detaches the old project's one.
	moved, err := f.svc.Update(ctx, f.user.ID, entry.ID, models.DailyEntryPatch{ProjectID: &other.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, other.ID, moved.ProjectID)
	assert.Nil(t, moved.SubprojectID)
	assert.Equal(t, "shipped", moved.WhatShippedToday)
	assert.InDelta(t, 1, f.hours(t, f.project.ID), 0.001)
	assert.InDelta(t, 3, f.hours(t, other.ID), 0.001)

	core := f.project.Subprojects[0].ID
	back, err := f.svc.Update(ctx, f.user.ID, entry.ID, models.DailyEntryPatch{
		ProjectID:    &f.project.ID,
		SubprojectID: &core,
		HoursSpent:   ptr(5.0),
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, back.SubprojectID)
	assert.Equal(t, core, *back.SubprojectID)
	assert.InDelta(t, 6, back.Project.TotalHoursLogged, 0.001)
	assert.InDelta(t, 0, f.hours(t, other.ID), 0.001)

	// An explicit subproject must belong to the target project.
	_, err = f.svc.Update(ctx, f.user.ID, entry.ID, models.DailyEntryPatch{ProjectID: &other.ID, SubprojectID: &core}, nil)
	assertCode(t, err, models.CodeNotFound)
	assert.InDelta(t, 6, f.hours(t, f.project.ID), 0.001)
}

func TestDailyService_UpdateKeepsProof(t *testing.T) {
	f := newDailyFixture(t, "")
	ctx := context.Background()

	entry, err := f.svc.Create(ctx, f.user.ID, f.input(1, 1), nil)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.user.ID, entry.ID, models.DailyEntryPatch{ProofLink: ptr("")}, nil)
	assertValidationError(t, err)

	updated, err := f.svc.Update(ctx, f.user.ID, entry.ID, models.DailyEntryPatch{ProofLink: ptr("")}, []storage.Upload{pngUpload("proof.png")})
	require.NoError(t, err)
	assert.Empty(t, updated.ProofLink)
	require.Len(t, updated.ProofFiles, 1)
}

func TestDailyService_DeleteRecomputesAndCleansUp(t *testing.T) {
	f := newDailyFixture(t, "")
	ctx := context.Background()

	in := f.input(1, 2)
	entry, err := f.svc.Create(ctx, f.user.ID, in, []storage.Upload{pngUpload("a.png")})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.user.ID, f.input(2, 1.5), nil)
	require.NoError(t, err)

	stranger := newTestUser(t, f.store, "stranger@example.com")
	_, err = f.svc.Delete(ctx, stranger.ID, entry.ID)
	assertCode(t, err, models.CodeNotFound)

	result, err := f.svc.Delete(ctx, f.user.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, f.project.ID, result.Project.ID)
	assert.Equal(t, "Main", result.Project.Name)
	assert.InDelta(t, 1.5, result.Project.TotalHoursLogged, 0.001)
	assert.Equal(t, entry.ProofFiles[0].StoredPaths(), f.cleaner.removed())

	_, err = f.svc.Get(ctx, f.user.ID, entry.ID)
	assertCode(t, err, models.CodeNotFound)
}

func TestDailyService_DeleteProofFile(t *testing.T) {
	f := newDailyFixture(t, "")
	ctx := context.Background()

	in := f.input(1, 2)
	in.ProofLink = ""
	entry, err := f.svc.Create(ctx, f.user.ID, in, []storage.Upload{pngUpload("a.png"), pngUpload("b.png")})
	require.NoError(t, err)
	require.Len(t, entry.ProofFiles, 2)

	other, err := f.svc.Create(ctx, f.user.ID, f.input(2, 1), nil)
	require.NoError(t, err)
	assertCode(t, f.svc.DeleteProofFile(ctx, f.user.ID, other.ID, entry.ProofFiles[0].ID), models.CodeNotFound)

	require.NoError(t, f.svc.DeleteProofFile(ctx, f.user.ID, entry.ID, entry.ProofFiles[0].ID))
	assert.Equal(t, entry.ProofFiles[0].StoredPaths(), f.cleaner.removed())

	err = f.svc.DeleteProofFile(ctx, f.user.ID, entry.ID, entry.ProofFiles[1].ID)
	assertValidationError(t, err)

	reloaded, err := f.svc.Get(ctx, f.user.ID, entry.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.ProofFiles, 1)
	assert.InDelta(t, 3, reloaded.Project.TotalHoursLogged, 0.001, "proof removal never touches hours")
}

func TestDailyService_List(t *testing.T) {
	f := newDailyFixture(t, "")
	ctx := context.Background()
	for day := 1; day <= 12; day++ {
		_, err := f.svc.Create(ctx, f.user.ID, f.input(day, 1), nil)
		require.NoError(t, err)
	}

	entries, page, err := f.svc.List(ctx, f.user.ID, repository.DailyFilter{}, models.NewPageRequest(2, 5))
	require.NoError(t, err)
	assert.Equal(t, models.Pagination{Total: 12, Page: 2, Pages: 3, Limit: 5}, page)
	require.Len(t, entries, 5)
	assert.Equal(t, "2024-05-07", entries[0].EntryDate.String())

	entries, page, err = f.svc.List(ctx, f.user.ID, repository.DailyFilter{
		StartDate: models.NewDate(2024, 5, 3),
		EndDate:   models.NewDate(2024, 5, 5),
	}, models.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, entries, 3)

	_, _, err = f.svc.List(ctx, f.user.ID, repository.DailyFilter{ProjectID: "bogus"}, models.NewPageRequest(1, 10))
	assertValidationError(t, err)
}
