package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	applog "ewarranty/internal/log"
	"ewarranty/internal/repos"
)

type HealthHandler struct {
	DB *sqlx.DB
}

// GET /api/health
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	n, err := repos.Ping(c.UserContext(), h.DB)
	if err != nil {
		applog.Error(c, "health.db.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok", "dbTest": n})
}
