package server

import (
	"momentum/internal/models"
	"momentum/internal/repository"
	"momentum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// JobApplicationList is one page of job applications.
type JobApplicationList struct {
	Applications []models.JobApplication `json:"applications"`
	Pagination   models.Pagination       `json:"pagination"`
}

// ListJobs handles GET /api/jobs
// @Summary List job applications
// @Description Each application carries its five most recent activities
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param company query string false "Case-insensitive company name fragment"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.Envelope{data=JobApplicationList}
// @Router /jobs [get]
func (s *Server) ListJobs(c *fiber.Ctx) error {
	filter := repository.JobFilter{
		Status:  models.JobStatus(c.Query("status")),
		Company: c.Query("company"),
	}
	apps, page, err := s.jobs.List(c.UserContext(), userID(c), filter, pageRequest(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "", JobApplicationList{Applications: apps, Pagination: page})
}

// GetJobStats handles GET /api/jobs/stats
// @Summary Job application statistics
// @Description Totals per status and per month over the last twelve months
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=models.JobStats}
// @Router /jobs/stats [get]
func (s *Server) GetJobStats(c *fiber.Ctx) error {
	stats, err := s.jobs.Stats(c.UserContext(), userID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "", stats)
}

// GetJob handles GET /api/jobs/:id
// @Summary Job application detail
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} models.Envelope{data=models.JobApplication}
// @Failure 404 {object} models.Envelope
// @Router /jobs/{id} [get]
func (s *Server) GetJob(c *fiber.Ctx) error {
	app, err := s.jobs.Get(c.UserContext(), userID(c), c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "", app)
}

// CreateJob handles POST /api/jobs
// @Summary Create job application
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateJobInput true "Application"
// @Success 201 {object} models.Envelope{data=models.JobApplication}
// @Router /jobs [post]
func (s *Server) CreateJob(c *fiber.Ctx) error {
	var req service.CreateJobInput
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	app, err := s.jobs.Create(c.UserContext(), userID(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return created(c, "Job application created successfully", app)
}

// UpdateJob handles PUT /api/jobs/:id
// @Summary Update job application
// @Description A status change records an activity
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body models.JobApplicationPatch true "Fields to change"
// @Success 200 {object} models.Envelope{data=models.JobApplication}
// @Router /jobs/{id} [put]
func (s *Server) UpdateJob(c *fiber.Ctx) error {
	var req models.JobApplicationPatch
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	app, err := s.jobs.Update(c.UserContext(), userID(c), c.Params("id"), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Job application updated successfully", app)
}

// DeleteJob handles DELETE /api/jobs/:id
// @Summary Delete job application
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} models.Envelope
// @Router /jobs/{id} [delete]
func (s *Server) DeleteJob(c *fiber.Ctx) error {
	if err := s.jobs.Delete(c.UserContext(), userID(c), c.Params("id")); err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Job application deleted successfully", nil)
}

// AddJobActivity handles POST /api/jobs/:id/activities
// @Summary Add activity
// @Description Some activity types move the application status forward
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body service.CreateActivityInput true "Activity"
// @Success 201 {object} models.Envelope{data=models.JobActivity}
// @Router /jobs/{id}/activities [post]
func (s *Server) AddJobActivity(c *fiber.Ctx) error {
	var req service.CreateActivityInput
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	activity, err := s.jobs.AddActivity(c.UserContext(), userID(c), c.Params("id"), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return created(c, "Activity added successfully", activity)
}

// UpdateJobActivity handles PUT /api/jobs/:id/activities/:activityId
// @Summary Update activity
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param activityId path string true "Activity ID"
// @Param request body models.JobActivityPatch true "Fields to change"
// @Success 200 {object} models.Envelope{data=models.JobActivity}
// @Router /jobs/{id}/activities/{activityId} [put]
func (s *Server) UpdateJobActivity(c *fiber.Ctx) error {
	var req models.JobActivityPatch
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	activity, err := s.jobs.UpdateActivity(c.UserContext(), userID(c), c.Params("id"), c.Params("activityId"), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Activity updated successfully", activity)
}

// DeleteJobActivity handles DELETE /api/jobs/:id/activities/:activityId
// @Summary Delete activity
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param activityId path string true "Activity ID"
// @Success 200 {object} models.Envelope
// @Router /jobs/{id}/activities/{activityId} [delete]
func (s *Server) DeleteJobActivity(c *fiber.Ctx) error {
	if err := s.jobs.DeleteActivity(c.UserContext(), userID(c), c.Params("id"), c.Params("activityId")); err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Activity deleted successfully", nil)
}
