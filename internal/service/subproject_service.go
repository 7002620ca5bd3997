package service

import (
	"context"
	"strings"

	"momentum/internal/models"
	"momentum/internal/observability"
	"momentum/internal/repository"
	"momentum/internal/validation"
)

type SubprojectService struct {
	store *repository.Store
}

type CreateSubprojectInput struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Status      models.SubprojectStatus `json:"status"`
}

func NewSubprojectService(store *repository.Store) *SubprojectService {
	return &SubprojectService{store: store}
}

func (s *SubprojectService) Create(ctx context.Context, userID, projectID string, in CreateSubprojectInput) (_ *models.Subproject, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "SubprojectService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = models.SubprojectActive
	}
	var v validation.Errors
	v.Required("name", in.Name)
	v.MaxLen("name", in.Name, maxNameLen)
	v.Check(in.Status.Valid(), "status must be one of active, completed, paused")
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.store.Projects.GetOwned(ctx, userID, projectID); err != nil {
		return nil, err
	}

	sp := &models.Subproject{
		ProjectID:   projectID,
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
	}
	if err := s.store.Subprojects.Create(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *SubprojectService) Update(ctx context.Context, userID, projectID, id string, patch models.SubprojectPatch) (_ *models.Subproject, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "SubprojectService", "Update")
	defer func() { observability.EndSpan(span, err) }()

	trimPtr(patch.Name)
	var v validation.Errors
	if patch.Name != nil {
		v.Required("name", *patch.Name)
		v.MaxLen("name", *patch.Name, maxNameLen)
	}
	if patch.Status != nil {
		v.Check(patch.Status.Valid(), "status must be one of active, completed, paused")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.store.Projects.GetOwned(ctx, userID, projectID); err != nil {
		return nil, err
	}
	sp, err := s.store.Subprojects.GetInProject(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(sp)
	if err := s.store.Subprojects.Update(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// Delete removes the subproject. Entries and reviews that referenced it keep
// their project and lose the subproject link.
func (s *SubprojectService) Delete(ctx context.Context, userID, projectID, id string) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "SubprojectService", "Delete")
	defer func() { observability.EndSpan(span, err) }()

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Projects.GetOwned(ctx, userID, projectID); err != nil {
			return err
		}
		if _, err := tx.Subprojects.GetInProject(ctx, projectID, id); err != nil {
			return err
		}
		return tx.Subprojects.Delete(ctx, id)
	})
}
