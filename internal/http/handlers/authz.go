package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"ewarranty/internal/domain"
	applog "ewarranty/internal/log"
	"ewarranty/internal/services"
)

const adminKey = "admin"

// RequireAdmin admits requests that carry a valid admin bearer token.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "missing_token"})
			return writeError(c, domain.ErrUnauthorized)
		}
		u, err := auth.Verify(c.UserContext(), raw)
		if err != nil {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": err.Error()})
			return writeError(c, err)
		}
		applog.SetAdmin(c, u.ID)
		c.Locals(adminKey, u)
		return c.Next()
	}
}

func currentAdmin(c *fiber.Ctx) *domain.AdminUser {
	u, _ := c.Locals(adminKey).(*domain.AdminUser)
	return u
}
