package service

import (
	"context"
	"strings"

	"momentum/internal/cache"
	"momentum/internal/featureflags"
	"momentum/internal/models"
	"momentum/internal/observability"
	"momentum/internal/repository"
	"momentum/internal/storage"
	"momentum/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const (
	proofRequiredMessage = "Proof is required: provide a proof link or upload at least one file"
	lastProofMessage     = "Cannot delete the only proof of an entry without a proof link"
)

type DailyService struct {
	store   *repository.Store
	files   storage.ProofStore
	cleaner ArtifactCleaner
	cache   *cache.Store
	flags   *featureflags.Manager
	limits  storage.Limits
}

// CreateDailyEntryInput is the body of a new daily entry. Form tags let the
// handler bind multipart requests that carry proof files.
type CreateDailyEntryInput struct {
	ProjectID         string      `json:"projectId" form:"projectId"`
	SubprojectID      string      `json:"subprojectId" form:"subprojectId"`
	EntryDate         models.Date `json:"entryDate" form:"entryDate"`
	DailyFocus        bool        `json:"dailyFocus" form:"dailyFocus"`
	WhatShippedToday  string      `json:"whatShippedToday" form:"whatShippedToday"`
	WhatSlowedDown    string      `json:"whatSlowedDown" form:"whatSlowedDown"`
	WhatToFixTomorrow string      `json:"whatToFixTomorrow" form:"whatToFixTomorrow"`
	HoursSpent        float64     `json:"hoursSpent" form:"hoursSpent"`
	ProofLink         string      `json:"proofLink" form:"proofLink"`
}

// DeletedEntry reports the project whose hours changed because an entry was removed.
type DeletedEntry struct {
	Project models.ProjectSummary `json:"project"`
}

func NewDailyService(
	store *repository.Store,
	files storage.ProofStore,
	cleaner ArtifactCleaner,
	cache *cache.Store,
	flags *featureflags.Manager,
	limits storage.Limits,
) *DailyService {
	if flags == nil {
		flags = featureflags.NewManager("")
	}
	return &DailyService{
		store:   store,
		files:   files,
		cleaner: cleaner,
		cache:   cache,
		flags:   flags,
		limits:  limits,
	}
}

func (s *DailyService) proofRequired(userID string) bool {
	return s.flags.Enabled(featureflags.ProofRequired, userID, true)
}

func (s *DailyService) save(ctx context.Context, userID string, uploads []storage.Upload) ([]storage.Stored, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	if s.files == nil {
		return nil, models.NewUploadError("File uploads are not configured")
	}
	return s.files.Save(ctx, userID, uploads, s.flags.Enabled(featureflags.ProofPreviews, userID, false))
}

// checkTargets verifies the caller owns projectID and that subprojectID, when
// set, belongs to that project.
func checkTargets(ctx context.Context, store *repository.Store, userID, projectID string, subprojectID *string) error {
	if _, err := store.Projects.GetOwned(ctx, userID, projectID); err != nil {
		return err
	}
	if subprojectID == nil {
		return nil
	}
	_, err := store.Subprojects.GetInProject(ctx, projectID, *subprojectID)
	return err
}

func (s *DailyService) Create(ctx context.Context, userID string, in CreateDailyEntryInput, uploads []storage.Upload) (_ *models.DailyEntry, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "DailyService", "Create", attribute.Int("uploads", len(uploads)))
	defer func() { observability.EndSpan(span, err) }()

	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.SubprojectID = strings.TrimSpace(in.SubprojectID)
	in.ProofLink = strings.TrimSpace(in.ProofLink)

	var v validation.Errors
	v.Required("projectId", in.ProjectID)
	v.UUID("projectId", in.ProjectID)
	v.UUID("subprojectId", in.SubprojectID)
	v.Check(!in.EntryDate.IsZero(), "entryDate is required")
	v.Required("whatShippedToday", in.WhatShippedToday)
	v.Hours("hoursSpent", in.HoursSpent, maxDailyHours)
	v.URI("proofLink", in.ProofLink)
	v.MaxLen("proofLink", in.ProofLink, 2048)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := storage.ValidateBatch(uploads, s.limits); err != nil {
		return nil, err
	}
	if s.proofRequired(userID) && in.ProofLink == "" && len(uploads) == 0 {
		return nil, models.NewValidationError(proofRequiredMessage)
	}

	entry := &models.DailyEntry{
		UserID:            userID,
		ProjectID:         in.ProjectID,
		EntryDate:         in.EntryDate,
		DailyFocus:        in.DailyFocus,
		WhatShippedToday:  in.WhatShippedToday,
		WhatSlowedDown:    in.WhatSlowedDown,
		WhatToFixTomorrow: in.WhatToFixTomorrow,
		HoursSpent:        models.RoundHours(in.HoursSpent),
		ProofLink:         in.ProofLink,
	}
	if in.SubprojectID != "" {
		entry.SubprojectID = &in.SubprojectID
	}
	if err := checkTargets(ctx, s.store, userID, entry.ProjectID, entry.SubprojectID); err != nil {
		return nil, err
	}

	stored, err := s.save(ctx, userID, uploads)
	if err != nil {
		return nil, err
	}
	for _, st := range stored {
		entry.ProofFiles = append(entry.ProofFiles, st.ProofFile(""))
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.DailyEntries.Create(ctx, entry); err != nil {
			return err
		}
		return tx.Projects.RecomputeHours(ctx, entry.ProjectID)
	})
	if err != nil {
		cleanup(ctx, s.cleaner, storedPaths(stored))
		return nil, err
	}

	s.cache.InvalidateUser(ctx, userID)
	return s.store.DailyEntries.GetOwned(ctx, userID, entry.ID)
}

// Update applies patch and appends any new proof files. Hours are recomputed
// for the entry's project and, when the entry moved, for the project it left.
func (s *DailyService) Update(ctx context.Context, userID, id string, patch models.DailyEntryPatch, uploads []storage.Upload) (_ *models.DailyEntry, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "DailyService", "Update",
		attribute.String("entry.id", id), attribute.Int("uploads", len(uploads)))
	defer func() { observability.EndSpan(span, err) }()

	trimPtr(patch.ProjectID)
	trimPtr(patch.SubprojectID)
	trimPtr(patch.ProofLink)

	var v validation.Errors
	if patch.ProjectID != nil {
		v.Required("projectId", *patch.ProjectID)
		v.UUID("projectId", *patch.ProjectID)
	}
	if patch.SubprojectID != nil {
		v.UUID("subprojectId", *patch.SubprojectID)
	}
	if patch.EntryDate != nil {
		v.Check(!patch.EntryDate.IsZero(), "entryDate is required")
	}
	if patch.WhatShippedToday != nil {
		v.Required("whatShippedToday", *patch.WhatShippedToday)
	}
	if patch.HoursSpent != nil {
		v.Hours("hoursSpent", *patch.HoursSpent, maxDailyHours)
	}
	if patch.ProofLink != nil {
		v.URI("proofLink", *patch.ProofLink)
		v.MaxLen("proofLink", *patch.ProofLink, 2048)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := storage.ValidateBatch(uploads, s.limits); err != nil {
		return nil, err
	}

	entry, err := s.store.DailyEntries.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	previousProject := entry.ProjectID
	previousSubproject := entry.SubprojectID

	patch.Apply(entry)
	moved := entry.ProjectID != previousProject
	if moved || !sameID(entry.SubprojectID, previousSubproject) {
		if err := checkTargets(ctx, s.store, userID, entry.ProjectID, entry.SubprojectID); err != nil {
			return nil, err
		}
	}
	if s.proofRequired(userID) && !entry.HasProof() && len(uploads) == 0 {
		return nil, models.NewValidationError(proofRequiredMessage)
	}

	stored, err := s.save(ctx, userID, uploads)
	if err != nil {
		return nil, err
	}
	added := make([]models.ProofFile, 0, len(stored))
	for _, st := range stored {
		added = append(added, st.ProofFile(entry.ID))
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.DailyEntries.Update(ctx, entry); err != nil {
			return err
		}
		if len(added) > 0 {
			if err := tx.DailyEntries.AddProofFiles(ctx, added); err != nil {
				return err
			}
		}
		if err := tx.Projects.RecomputeHours(ctx, entry.ProjectID); err != nil {
			return err
		}
		if moved {
			return tx.Projects.RecomputeHours(ctx, previousProject)
		}
		return nil
	})
	if err != nil {
		cleanup(ctx, s.cleaner, storedPaths(stored))
		return nil, err
	}

	s.cache.InvalidateUser(ctx, userID)
	return s.store.DailyEntries.GetOwned(ctx, userID, entry.ID)
}

// Delete removes the entry and its proof files and returns the project with
// its recomputed hours.
func (s *DailyService) Delete(ctx context.Context, userID, id string) (_ *DeletedEntry, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "DailyService", "Delete", attribute.String("entry.id", id))
	defer func() { observability.EndSpan(span, err) }()

	var (
		files  []models.ProofFile
		result DeletedEntry
	)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		entry, err := tx.DailyEntries.GetOwned(ctx, userID, id)
		if err != nil {
			return err
		}
		if files, err = tx.DailyEntries.Delete(ctx, id); err != nil {
			return err
		}
		if err := tx.Projects.RecomputeHours(ctx, entry.ProjectID); err != nil {
			return err
		}
		hours, err := tx.Projects.GetHours(ctx, entry.ProjectID)
		if err != nil {
			return err
		}
		if entry.Project != nil {
			result.Project = *entry.Project
		}
		result.Project.ID = entry.ProjectID
		result.Project.TotalHoursLogged = hours
		return nil
	})
	if err != nil {
		return nil, err
	}

	cleanup(ctx, s.cleaner, proofPaths(files))
	s.cache.InvalidateUser(ctx, userID)
	return &result, nil
}

// DeleteProofFile removes one proof file of an entry. Project hours are untouched.
func (s *DailyService) DeleteProofFile(ctx context.Context, userID, entryID, fileID string) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "DailyService", "DeleteProofFile",
		attribute.String("entry.id", entryID), attribute.String("file.id", fileID))
	defer func() { observability.EndSpan(span, err) }()

	var file *models.ProofFile
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		entry, err := tx.DailyEntries.GetOwned(ctx, userID, entryID)
		if err != nil {
			return err
		}
		if file, err = tx.DailyEntries.GetProofFile(ctx, entryID, fileID); err != nil {
			return err
		}
		if s.proofRequired(userID) && entry.ProofLink == "" && len(entry.ProofFiles) <= 1 {
			return models.NewValidationError(lastProofMessage)
		}
		return tx.DailyEntries.DeleteProofFile(ctx, fileID)
	})
	if err != nil {
		return err
	}

	cleanup(ctx, s.cleaner, file.StoredPaths())
	return nil
}

func (s *DailyService) List(ctx context.Context, userID string, filter repository.DailyFilter, page models.PageRequest) ([]models.DailyEntry, models.Pagination, error) {
	var v validation.Errors
	v.UUID("projectId", filter.ProjectID)
	if err := v.Err(); err != nil {
		return nil, models.Pagination{}, err
	}
	entries, total, err := s.store.DailyEntries.List(ctx, userID, filter, page)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return entries, page.Paginate(total), nil
}

func (s *DailyService) Get(ctx context.Context, userID, id string) (*models.DailyEntry, error) {
	return s.store.DailyEntries.GetOwned(ctx, userID, id)
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
