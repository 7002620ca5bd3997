package service

import (
	"context"
	"log/slog"
	"strings"

	"momentum/internal/cache"
	"momentum/internal/middleware"
	"momentum/internal/models"
	"momentum/internal/observability"
	"momentum/internal/repository"
	"momentum/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type ProjectService struct {
	store   *repository.Store
	cache   *cache.Store
	cleaner ArtifactCleaner
}

// CreateProjectInput creates a project and, optionally, its first subprojects.
type CreateProjectInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Deadline    *models.Date         `json:"deadline"`
	Status      models.ProjectStatus `json:"status"`
	Subprojects []string             `json:"subprojects"`
}

func NewProjectService(store *repository.Store, cache *cache.Store, cleaner ArtifactCleaner) *ProjectService {
	return &ProjectService{store: store, cache: cache, cleaner: cleaner}
}

func (s *ProjectService) Create(ctx context.Context, userID string, in CreateProjectInput) (_ *models.Project, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ProjectService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	in.Name = strings.TrimSpace(in.Name)
	var v validation.Errors
	v.Required("name", in.Name)
	v.MaxLen("name", in.Name, maxNameLen)
	if in.Status == "" {
		in.Status = models.ProjectActive
	}
	v.Check(in.Status.Valid(), "status must be one of active, completed, paused, cancelled")

	names := make([]string, 0, len(in.Subprojects))
	seen := make(map[string]bool, len(in.Subprojects))
	for _, name := range in.Subprojects {
		name = strings.TrimSpace(name)
		switch {
		case name == "":
			v.Addf("subproject names must not be empty")
		case seen[name]:
			v.Addf("duplicate subproject name %q", name)
		default:
			v.MaxLen("subproject name", name, maxNameLen)
			seen[name] = true
			names = append(names, name)
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	project := &models.Project{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
	}
	if in.Deadline != nil && !in.Deadline.IsZero() {
		project.Deadline = in.Deadline
	}
	for _, name := range names {
		project.Subprojects = append(project.Subprojects, models.Subproject{
			Name:   name,
			Status: models.SubprojectActive,
		})
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Projects.Create(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(ctx, userID)
	return project, nil
}

func (s *ProjectService) List(ctx context.Context, userID string) ([]models.Project, error) {
	return s.store.Projects.ListByUser(ctx, userID)
}

// Get returns the project with its subprojects and most recent entries and reviews.
func (s *ProjectService) Get(ctx context.Context, userID, id string) (*models.Project, error) {
	return s.store.Projects.GetDetail(ctx, userID, id)
}

func (s *ProjectService) Update(ctx context.Context, userID, id string, patch models.ProjectPatch) (_ *models.Project, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ProjectService", "Update", attribute.String("project.id", id))
	defer func() { observability.EndSpan(span, err) }()

	trimPtr(patch.Name)
	var v validation.Errors
	if patch.Name != nil {
		v.Required("name", *patch.Name)
		v.MaxLen("name", *patch.Name, maxNameLen)
	}
	if patch.Status != nil {
		v.Check(patch.Status.Valid(), "status must be one of active, completed, paused, cancelled")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		project, err := tx.Projects.GetOwned(ctx, userID, id)
		if err != nil {
			return err
		}
		patch.Apply(project)
		return tx.Projects.Update(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(ctx, userID)
	return s.store.Projects.GetWithSubprojects(ctx, userID, id)
}

// Delete removes the project with its subprojects, entries, proof files and
// reviews in one transaction, then removes the stored artifacts.
func (s *ProjectService) Delete(ctx context.Context, userID, id string) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ProjectService", "Delete", attribute.String("project.id", id))
	defer func() { observability.EndSpan(span, err) }()

	var files []models.ProofFile
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Projects.GetOwned(ctx, userID, id); err != nil {
			return err
		}
		var err error
		files, err = tx.Projects.Delete(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	if len(files) > 0 {
		middleware.Logger.InfoContext(ctx, "removing proof artifacts of deleted project",
			slog.String("project_id", id), slog.Int("files", len(files)))
		cleanup(ctx, s.cleaner, proofPaths(files))
	}
	s.cache.InvalidateUser(ctx, userID)
	return nil
}
