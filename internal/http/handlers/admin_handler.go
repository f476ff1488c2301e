package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ewarranty/internal/services"
)

type AdminHandler struct {
	Dashboard *services.DashboardService
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	s, err := h.Dashboard.Overview(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s)
}
