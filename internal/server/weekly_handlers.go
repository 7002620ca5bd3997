package server

import (
	"momentum/internal/models"
	"momentum/internal/repository"
	"momentum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// WeeklyReviewList is one page of weekly reviews.
type WeeklyReviewList struct {
	Reviews    []models.WeeklyReview `json:"reviews"`
	Pagination models.Pagination     `json:"pagination"`
}

// ListWeeklyReviews handles GET /api/weekly
// @Summary List weekly reviews
// @Tags weekly
// @Produce json
// @Security BearerAuth
// @Param projectId query string false "Project ID"
// @Param year query int false "Calendar year of the week start"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.Envelope{data=WeeklyReviewList}
// @Router /weekly [get]
func (s *Server) ListWeeklyReviews(c *fiber.Ctx) error {
	filter := repository.WeeklyFilter{ProjectID: c.Query("projectId")}
	if raw := c.Query("year"); raw != "" {
		year := c.QueryInt("year", -1)
		if year <= 0 {
			return s.respondError(c, models.NewValidationError("year must be a positive integer"))
		}
		filter.Year = year
	}

	reviews, page, err := s.weekly.List(c.UserContext(), userID(c), filter, pageRequest(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "", WeeklyReviewList{Reviews: reviews, Pagination: page})
}

// GetWeeklyReview handles GET /api/weekly/:id
// @Summary Weekly review detail
// @Tags weekly
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} models.Envelope{data=models.WeeklyReview}
// @Router /weekly/{id} [get]
func (s *Server) GetWeeklyReview(c *fiber.Ctx) error {
	review, err := s.weekly.Get(c.UserContext(), userID(c), c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "", review)
}

// CreateWeeklyReview handles POST /api/weekly
// @Summary Create weekly review
// @Description One review per project and week start date
// @Tags weekly
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateWeeklyReviewInput true "Review"
// @Success 201 {object} models.Envelope{data=models.WeeklyReview}
// @Failure 400 {object} models.Envelope
// @Router /weekly [post]
func (s *Server) CreateWeeklyReview(c *fiber.Ctx) error {
	var req service.CreateWeeklyReviewInput
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	review, err := s.weekly.Create(c.UserContext(), userID(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return created(c, "Weekly review created successfully", review)
}

// UpdateWeeklyReview handles PUT /api/weekly/:id
// @Summary Update weekly review
// @Tags weekly
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body models.WeeklyReviewPatch true "Fields to change"
// @Success 200 {object} models.Envelope{data=models.WeeklyReview}
// @Router /weekly/{id} [put]
func (s *Server) UpdateWeeklyReview(c *fiber.Ctx) error {
	var req models.WeeklyReviewPatch
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	review, err := s.weekly.Update(c.UserContext(), userID(c), c.Params("id"), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Weekly review updated successfully", review)
}

// DeleteWeeklyReview handles DELETE /api/weekly/:id
// @Summary Delete weekly review
// @Tags weekly
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} models.Envelope
// @Router /weekly/{id} [delete]
func (s *Server) DeleteWeeklyReview(c *fiber.Ctx) error {
	if err := s.weekly.Delete(c.UserContext(), userID(c), c.Params("id")); err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Weekly review deleted successfully", nil)
}
