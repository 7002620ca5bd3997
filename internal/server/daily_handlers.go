package server

import (
	"momentum/internal/models"
	"momentum/internal/repository"
	"momentum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// DailyEntryList is one page of daily entries.
type DailyEntryList struct {
	Entries    []models.DailyEntry `json:"entries"`
	Pagination models.Pagination   `json:"pagination"`
}

// ListDailyEntries handles GET /api/daily
// @Summary List daily entries
// @Tags daily
// @Produce json
// @Security BearerAuth
// @Param projectId query string false "Project ID"
// @Param startDate query string false "Earliest entry date (YYYY-MM-DD)"
// @Param endDate query string false "Latest entry date (YYYY-MM-DD)"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.Envelope{data=DailyEntryList}
// @Router /daily [get]
func (s *Server) ListDailyEntries(c *fiber.Ctx) error {
	start, err := queryDate(c, "startDate")
	if err != nil {
		return s.respondError(c, err)
	}
	end, err := queryDate(c, "endDate")
	if err != nil {
		return s.respondError(c, err)
	}

	filter := repository.DailyFilter{ProjectID: c.Query("projectId"), StartDate: start, EndDate: end}
	entries, page, err := s.daily.List(c.UserContext(), userID(c), filter, pageRequest(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "", DailyEntryList{Entries: entries, Pagination: page})
}

// GetDailyEntry handles GET /api/daily/:id
// @Summary Daily entry detail
// @Tags daily
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} models.Envelope{data=models.DailyEntry}
// @Failure 404 {object} models.Envelope
// @Router /daily/{id} [get]
func (s *Server) GetDailyEntry(c *fiber.Ctx) error {
	entry, err := s.daily.Get(c.UserContext(), userID(c), c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "", entry)
}

// CreateDailyEntry handles POST /api/daily
// @Summary Log a daily entry
// @Description Accepts JSON or multipart/form-data with up to five proofFiles
// @Tags daily
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateDailyEntryInput true "Entry"
// @Success 201 {object} models.Envelope{data=models.DailyEntry}
// @Failure 400 {object} models.Envelope
// @Router /daily [post]
func (s *Server) CreateDailyEntry(c *fiber.Ctx) error {
	var req service.CreateDailyEntryInput
	uploads, err := parseBody(c, &req)
	if err != nil {
		return s.respondError(c, err)
	}

	entry, err := s.daily.Create(c.UserContext(), userID(c), req, uploads)
	if err != nil {
		return s.respondError(c, err)
	}
	return created(c, "Daily entry created successfully", entry)
}

// UpdateDailyEntry handles PUT /api/daily/:id
// @Summary Update a daily entry
// @Description New proofFiles are appended to the existing ones
// @Tags daily
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Param request body models.DailyEntryPatch true "Fields to change"
// @Success 200 {object} models.Envelope{data=models.DailyEntry}
// @Router /daily/{id} [put]
func (s *Server) UpdateDailyEntry(c *fiber.Ctx) error {
	var req models.DailyEntryPatch
	uploads, err := parseBody(c, &req)
	if err != nil {
		return s.respondError(c, err)
	}

	entry, err := s.daily.Update(c.UserContext(), userID(c), c.Params("id"), req, uploads)
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Daily entry updated successfully", entry)
}

// DeleteDailyEntry handles DELETE /api/daily/:id
// @Summary Delete a daily entry
// @Description Returns the project with its refreshed hour total
// @Tags daily
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} models.Envelope{data=service.DeletedEntry}
// @Router /daily/{id} [delete]
func (s *Server) DeleteDailyEntry(c *fiber.Ctx) error {
	deleted, err := s.daily.Delete(c.UserContext(), userID(c), c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Daily entry deleted successfully", deleted)
}

// DeleteProofFile handles DELETE /api/daily/:id/files/:fileId
// @Summary Remove one proof file
// @Tags daily
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Param fileId path string true "Proof file ID"
// @Success 200 {object} models.Envelope
// @Router /daily/{id}/files/{fileId} [delete]
func (s *Server) DeleteProofFile(c *fiber.Ctx) error {
	if err := s.daily.DeleteProofFile(c.UserContext(), userID(c), c.Params("id"), c.Params("fileId")); err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Proof file deleted successfully", nil)
}
