package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetDashboard handles GET /api/dashboard
// @Summary Dashboard summary
// @Description Job funnel for the timeframe plus project hours, deadlines and focus streak
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param timeframe query string false "all, daily, weekly or monthly" default(all)
// @Success 200 {object} models.Envelope{data=service.DashboardSummary}
// @Failure 400 {object} models.Envelope
// @Router /dashboard [get]
func (s *Server) GetDashboard(c *fiber.Ctx) error {
	summary, err := s.dashboard.Summary(c.UserContext(), userID(c), c.Query("timeframe"))
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "", summary)
}
