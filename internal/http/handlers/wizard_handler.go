package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ewarranty/internal/domain"
	applog "ewarranty/internal/log"
	"ewarranty/internal/services"
)

// WizardHandler renders the three-step warranty registration pages:
// enter serial, confirm details, done.
type WizardHandler struct {
	Warranty *services.WarrantyService
}

// serialProblem turns a validation failure into the message and status the
// serial step shows. ok is false for errors the page cannot explain.
func serialProblem(err error) (msg string, status int, ok bool) {
	switch {
	case domain.IsValidation(err):
		return "That serial number is not valid. Use letters and digits only.", fiber.StatusBadRequest, true
	case errors.Is(err, domain.ErrNotFound):
		return "We could not find that serial number. Check the label on your product.", fiber.StatusNotFound, true
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return "A warranty has already been registered for this serial number.", fiber.StatusConflict, true
	}
	return "", 0, false
}

// GET /warranty[?serial=]
func (h *WizardHandler) Start(c *fiber.Ctx) error {
	return render(c, "warranty_serial", fiber.Map{"Serial": c.Query("serial")})
}

// POST /warranty/validate
func (h *WizardHandler) Validate(c *fiber.Ctx) error {
	serial := c.FormValue("serial")
	info, err := h.Warranty.ValidateSerial(c.UserContext(), serial)
	if err != nil {
		msg, status, ok := serialProblem(err)
		if !ok {
			return err
		}
		applog.Info(c, "wizard.serial.reject", map[string]any{"serial": serial, "status": status})
		c.Status(status)
		return render(c, "warranty_serial", fiber.Map{"Serial": serial, "Err": msg})
	}
	return render(c, "warranty_confirm", fiber.Map{"Info": info})
}

// POST /warranty/register
func (h *WizardHandler) Register(c *fiber.Ctx) error {
	pid, _ := strconv.ParseInt(c.FormValue("product_id"), 10, 64)
	body := registerRequest{
		Serial:    c.FormValue("serial"),
		ProductID: pid,
		UserName:  c.FormValue("user_name"),
		UserEmail: c.FormValue("user_email"),
		UserPhone: c.FormValue("user_phone"),
	}
	req, err := body.toService()
	if err == nil {
		var w domain.WarrantyRegistration
		if w, err = h.Warranty.Register(c.UserContext(), req); err == nil {
			applog.Info(c, "warranty.register", map[string]any{"registration_id": w.ID, "serial": w.Serial})
			return render(c, "warranty_done", fiber.Map{"Registration": w})
		}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) && ve.Field != "serial" && ve.Field != "product_id" {
		// a detail field is wrong: stay on the confirm step
		info, verr := h.Warranty.ValidateSerial(c.UserContext(), body.Serial)
		if verr == nil {
			c.Status(fiber.StatusBadRequest)
			return render(c, "warranty_confirm", fiber.Map{
				"Info": info, "Err": ve.Message,
				"UserName": body.UserName, "UserEmail": body.UserEmail, "UserPhone": body.UserPhone,
			})
		}
		err = verr
	}
	msg, status, ok := serialProblem(err)
	if !ok {
		return err
	}
	c.Status(status)
	return render(c, "warranty_serial", fiber.Map{"Serial": body.Serial, "Err": msg})
}
