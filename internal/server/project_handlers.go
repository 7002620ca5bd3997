package server

import (
	"momentum/internal/models"
	"momentum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListProjects handles GET /api/projects
// @Summary List projects
// @Description Projects of the current user with their subprojects, newest first
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=[]models.Project}
// @Router /projects [get]
func (s *Server) ListProjects(c *fiber.Ctx) error {
	projects, err := s.projects.List(c.UserContext(), userID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "", projects)
}

// GetProject handles GET /api/projects/:id
// @Summary Project detail
// @Description Includes subprojects and the most recent daily entries and weekly reviews
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} models.Envelope{data=models.Project}
// @Failure 404 {object} models.Envelope
// @Router /projects/{id} [get]
func (s *Server) GetProject(c *fiber.Ctx) error {
	project, err := s.projects.Get(c.UserContext(), userID(c), c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "", project)
}

// CreateProject handles POST /api/projects
// @Summary Create project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateProjectInput true "Project"
// @Success 201 {object} models.Envelope{data=models.Project}
// @Failure 400 {object} models.Envelope
// @Router /projects [post]
func (s *Server) CreateProject(c *fiber.Ctx) error {
	var req service.CreateProjectInput
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	project, err := s.projects.Create(c.UserContext(), userID(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return created(c, "Project created successfully", project)
}

// UpdateProject handles PUT /api/projects/:id
// @Summary Update project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body models.ProjectPatch true "Fields to change"
// @Success 200 {object} models.Envelope{data=models.Project}
// @Router /projects/{id} [put]
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	var req models.ProjectPatch
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	project, err := s.projects.Update(c.UserContext(), userID(c), c.Params("id"), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Project updated successfully", project)
}

// DeleteProject handles DELETE /api/projects/:id
// @Summary Delete project
// @Description Removes the project with its subprojects, entries, reviews and proof files
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} models.Envelope
// @Router /projects/{id} [delete]
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	if err := s.projects.Delete(c.UserContext(), userID(c), c.Params("id")); err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Project deleted successfully", nil)
}

// CreateSubproject handles POST /api/projects/:id/subprojects
// @Summary Create subproject
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body service.CreateSubprojectInput true "Subproject"
// @Success 201 {object} models.Envelope{data=models.Subproject}
// @Router /projects/{id}/subprojects [post]
func (s *Server) CreateSubproject(c *fiber.Ctx) error {
	var req service.CreateSubprojectInput
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	sp, err := s.subprojects.Create(c.UserContext(), userID(c), c.Params("id"), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return created(c, "Subproject created successfully", sp)
}

// UpdateSubproject handles PUT /api/projects/:id/subprojects/:subprojectId
// @Summary Update subproject
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param subprojectId path string true "Subproject ID"
// @Param request body models.SubprojectPatch true "Fields to change"
// @Success 200 {object} models.Envelope{data=models.Subproject}
// @Router /projects/{id}/subprojects/{subprojectId} [put]
func (s *Server) UpdateSubproject(c *fiber.Ctx) error {
	var req models.SubprojectPatch
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	sp, err := s.subprojects.Update(c.UserContext(), userID(c), c.Params("id"), c.Params("subprojectId"), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Subproject updated successfully", sp)
}

// DeleteSubproject handles DELETE /api/projects/:id/subprojects/:subprojectId
// @Summary Delete subproject
// @Description Entries and reviews that referenced it stay with the parent project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param subprojectId path string true "Subproject ID"
// @Success 200 {object} models.Envelope
// @Router /projects/{id}/subprojects/{subprojectId} [delete]
func (s *Server) DeleteSubproject(c *fiber.Ctx) error {
	if err := s.subprojects.Delete(c.UserContext(), userID(c), c.Params("id"), c.Params("subprojectId")); err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Subproject deleted successfully", nil)
}
