package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/workflow"
)

type DashboardHandler struct {
	Engine *workflow.Engine
}

func NewDashboardHandler(e *workflow.Engine) *DashboardHandler {
	return &DashboardHandler{Engine: e}
}

func (h *DashboardHandler) Routes(r fiber.Router, authMiddleware fiber.Handler) {
	r.Get("/dashboard/stats", authMiddleware, h.GetStats)
}

// GetStats returns the summary for the caller's dashboard
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.Engine.Dashboard(c.UserContext(), *middleware.Identity(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", stats)
}
