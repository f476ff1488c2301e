package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"ewarranty/internal/domain"
	applog "ewarranty/internal/log"
	"ewarranty/internal/repos"
	"ewarranty/internal/services"
	"ewarranty/internal/validate"
)

type WarrantyHandler struct {
	Warranty *services.WarrantyService
}

type validateRequest struct {
	Serial string `json:"serial" form:"serial"`
}

type registerRequest struct {
	Serial    string `json:"serial" form:"serial"`
	ProductID int64  `json:"product_id" form:"product_id"`
	UserName  string `json:"user_name" form:"user_name"`
	UserEmail string `json:"user_email" form:"user_email"`
	UserPhone string `json:"user_phone" form:"user_phone"`
}

func (r registerRequest) toService() (services.RegisterRequest, error) {
	if strings.TrimSpace(r.Serial) == "" {
		return services.RegisterRequest{}, domain.Invalid("serial", "Serial is required")
	}
	if r.ProductID < 1 {
		return services.RegisterRequest{}, domain.Invalid("product_id", "product_id is required")
	}
	name, ok := validate.Name(r.UserName, 255)
	if !ok {
		return services.RegisterRequest{}, domain.Invalid("user_name", "Name is required")
	}
	email, ok := validate.Email(r.UserEmail)
	if !ok {
		return services.RegisterRequest{}, domain.Invalid("user_email", "A valid email is required")
	}
	phone, ok := validate.Phone(r.UserPhone)
	if !ok {
		return services.RegisterRequest{}, domain.Invalid("user_phone", "Invalid phone number")
	}
	return services.RegisterRequest{
		Serial:    r.Serial,
		ProductID: r.ProductID,
		UserName:  name,
		UserEmail: email,
		UserPhone: phone,
	}, nil
}

// POST /api/warranty/validate
func (h *WarrantyHandler) Validate(c *fiber.Ctx) error {
	var req validateRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, domain.Invalid("body", "Invalid request body"))
	}
	if strings.TrimSpace(req.Serial) == "" {
		return writeError(c, domain.Invalid("serial", "Serial is required"))
	}
	info, err := h.Warranty.ValidateSerial(c.UserContext(), req.Serial)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(info)
}

// POST /api/warranty/register
func (h *WarrantyHandler) Register(c *fiber.Ctx) error {
	var body registerRequest
	if err := c.BodyParser(&body); err != nil {
		return writeError(c, domain.Invalid("body", "Invalid request body"))
	}
	req, err := body.toService()
	if err != nil {
		return writeError(c, err)
	}
	w, err := h.Warranty.Register(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	applog.Info(c, "warranty.register", map[string]any{"registration_id": w.ID, "serial": w.Serial})
	return c.Status(fiber.StatusCreated).JSON(w)
}

// GET /api/warranty[?q=&status=]
func (h *WarrantyHandler) List(c *fiber.Ctx) error {
	var f repos.WarrantyFilter
	if raw := strings.TrimSpace(c.Query("q")); raw != "" {
		q, ok := validate.Q(raw)
		if !ok {
			return writeError(c, domain.Invalid("q", "Invalid search"))
		}
		f.Serial = q
	}
	if raw := c.Query("status"); raw != "" {
		st, ok := validate.WarrantyStatus(raw)
		if !ok {
			return writeError(c, domain.Invalid("status", "Status must be pending, accepted or rejected"))
		}
		f.Status = st
	}
	out, err := h.Warranty.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GET /api/warranty/:id
func (h *WarrantyHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	w, err := h.Warranty.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(w)
}

// PUT /api/warranty/:id/status
func (h *WarrantyHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var req struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, domain.Invalid("body", "Invalid request body"))
	}
	status, ok := validate.WarrantyStatus(req.Status)
	if !ok {
		return writeError(c, domain.Invalid("status", "Status must be pending, accepted or rejected"))
	}
	w, err := h.Warranty.UpdateStatus(c.UserContext(), id, status)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.warranty.status", map[string]any{"registration_id": id, "status": status})
	return c.JSON(w)
}

// DELETE /api/warranty/:id
func (h *WarrantyHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Warranty.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.warranty.delete", map[string]any{"registration_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
