package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ewarranty/internal/domain"
	applog "ewarranty/internal/log"
	"ewarranty/internal/services"
	"ewarranty/internal/validate"
)

type ContactHandler struct {
	Contact *services.ContactService
}

type contactRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Message string `json:"message" form:"message"`
}

// POST /api/contact
func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, domain.Invalid("body", "Invalid request body"))
	}
	name, ok := validate.Name(req.Name, 255)
	if !ok {
		return writeError(c, domain.Invalid("name", "Name is required"))
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return writeError(c, domain.Invalid("email", "A valid email is required"))
	}
	phone, ok := validate.Phone(req.Phone)
	if !ok {
		return writeError(c, domain.Invalid("phone", "Invalid phone number"))
	}
	msg, ok := validate.Text(req.Message, 5000)
	if !ok || msg == "" {
		return writeError(c, domain.Invalid("message", "Message is required (max 5000 characters)"))
	}
	m, err := h.Contact.Submit(c.UserContext(), domain.ContactMessage{Name: name, Email: email, Phone: phone, Message: msg})
	if err != nil {
		return writeError(c, err)
	}
	applog.Info(c, "contact.submit", map[string]any{"message_id": m.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Message received", "id": m.ID})
}

// GET /api/contact
func (h *ContactHandler) List(c *fiber.Ctx) error {
	out, err := h.Contact.List(c.UserContext(), c.QueryInt("limit", 100))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
