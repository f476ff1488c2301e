package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ewarranty/internal/domain"
	"ewarranty/internal/log"
	"ewarranty/internal/services"
	"ewarranty/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, domain.Invalid("body", "Invalid request body"))
	}
	email, ok := validate.Email(req.Email)
	if !ok || req.Password == "" || len(req.Password) > 72 {
		log.Security(c, "auth.login.fail", map[string]any{"email": req.Email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password", "code": "UNAUTHORIZED"})
	}

	tok, err := h.Auth.Login(c.UserContext(), email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			log.Security(c, "auth.login.fail", map[string]any{"email": email})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password", "code": "UNAUTHORIZED"})
		}
		return writeError(c, err)
	}
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(tok)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u := currentAdmin(c)
	if u == nil {
		return writeError(c, domain.ErrUnauthorized)
	}
	return c.JSON(u)
}
