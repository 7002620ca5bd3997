package service

import (
	"context"
	"strings"

	"momentum/internal/models"
	"momentum/internal/observability"
	"momentum/internal/repository"
	"momentum/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type WeeklyService struct {
	store *repository.Store
}

// CreateWeeklyReviewInput is the body of a new weekly review. WeekStartDate
// is stored as given; it is not snapped to a Monday.
type CreateWeeklyReviewInput struct {
	ProjectID           string      `json:"projectId"`
	SubprojectID        string      `json:"subprojectId"`
	WeekStartDate       models.Date `json:"weekStartDate"`
	WhatShipped         string      `json:"whatShipped"`
	WhatFailedToDeliver string      `json:"whatFailedToDeliver"`
	WhatDistracted      string      `json:"whatDistracted"`
	WhatLearned         string      `json:"whatLearned"`
	HoursSpent          float64     `json:"hoursSpent"`
}

func NewWeeklyService(store *repository.Store) *WeeklyService {
	return &WeeklyService{store: store}
}

func (s *WeeklyService) Create(ctx context.Context, userID string, in CreateWeeklyReviewInput) (_ *models.WeeklyReview, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "WeeklyService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.SubprojectID = strings.TrimSpace(in.SubprojectID)

	var v validation.Errors
	v.Required("projectId", in.ProjectID)
	v.UUID("projectId", in.ProjectID)
	v.UUID("subprojectId", in.SubprojectID)
	v.Check(!in.WeekStartDate.IsZero(), "weekStartDate is required")
	v.Required("whatShipped", in.WhatShipped)
	v.Required("whatLearned", in.WhatLearned)
	v.Hours("hoursSpent", in.HoursSpent, maxWeeklyHours)
	if err := v.Err(); err != nil {
		return nil, err
	}

	review := &models.WeeklyReview{
		UserID:              userID,
		ProjectID:           in.ProjectID,
		WeekStartDate:       in.WeekStartDate,
		WhatShipped:         in.WhatShipped,
		WhatFailedToDeliver: in.WhatFailedToDeliver,
		WhatDistracted:      in.WhatDistracted,
		WhatLearned:         in.WhatLearned,
		HoursSpent:          models.RoundHours(in.HoursSpent),
	}
	if in.SubprojectID != "" {
		review.SubprojectID = &in.SubprojectID
	}
	if err := checkTargets(ctx, s.store, userID, review.ProjectID, review.SubprojectID); err != nil {
		return nil, err
	}
	if err := s.store.WeeklyReviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return s.store.WeeklyReviews.GetOwned(ctx, userID, review.ID)
}

func (s *WeeklyService) Update(ctx context.Context, userID, id string, patch models.WeeklyReviewPatch) (_ *models.WeeklyReview, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "WeeklyService", "Update", attribute.String("review.id", id))
	defer func() { observability.EndSpan(span, err) }()

	trimPtr(patch.ProjectID)
	trimPtr(patch.SubprojectID)

	var v validation.Errors
	if patch.ProjectID != nil {
		v.Required("projectId", *patch.ProjectID)
		v.UUID("projectId", *patch.ProjectID)
	}
	if patch.SubprojectID != nil {
		v.UUID("subprojectId", *patch.SubprojectID)
	}
	if patch.WeekStartDate != nil {
		v.Check(!patch.WeekStartDate.IsZero(), "weekStartDate is required")
	}
	if patch.WhatShipped != nil {
		v.Required("whatShipped", *patch.WhatShipped)
	}
	if patch.WhatLearned != nil {
		v.Required("whatLearned", *patch.WhatLearned)
	}
	if patch.HoursSpent != nil {
		v.Hours("hoursSpent", *patch.HoursSpent, maxWeeklyHours)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	review, err := s.store.WeeklyReviews.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	previousProject := review.ProjectID
	previousSubproject := review.SubprojectID

	patch.Apply(review)
	if review.ProjectID != previousProject || !sameID(review.SubprojectID, previousSubproject) {
		if err := checkTargets(ctx, s.store, userID, review.ProjectID, review.SubprojectID); err != nil {
			return nil, err
		}
	}
	if err := s.store.WeeklyReviews.Update(ctx, review); err != nil {
		return nil, err
	}
	return s.store.WeeklyReviews.GetOwned(ctx, userID, review.ID)
}

func (s *WeeklyService) Delete(ctx context.Context, userID, id string) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "WeeklyService", "Delete", attribute.String("review.id", id))
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.store.WeeklyReviews.GetOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.store.WeeklyReviews.Delete(ctx, id)
}

func (s *WeeklyService) List(ctx context.Context, userID string, filter repository.WeeklyFilter, page models.PageRequest) ([]models.WeeklyReview, models.Pagination, error) {
	var v validation.Errors
	v.UUID("projectId", filter.ProjectID)
	v.Check(filter.Year == 0 || (filter.Year >= 1970 && filter.Year <= 9999), "year must be a four digit year")
	if err := v.Err(); err != nil {
		return nil, models.Pagination{}, err
	}
	reviews, total, err := s.store.WeeklyReviews.List(ctx, userID, filter, page)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return reviews, page.Paginate(total), nil
}

func (s *WeeklyService) Get(ctx context.Context, userID, id string) (*models.WeeklyReview, error) {
	return s.store.WeeklyReviews.GetOwned(ctx, userID, id)
}
