package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"ewarranty/internal/domain"
	applog "ewarranty/internal/log"
)

// writeError maps a domain error onto a status and a JSON body of the form
// {"message", "code", "field"?, "serial"?}. Unexpected errors are logged and
// reported as a bare 500.
func writeError(c *fiber.Ctx, err error) error {
	var (
		ve   *domain.ValidationError
		se   *domain.SerialError
		body = fiber.Map{}
	)
	errors.As(err, &se)
	status := fiber.StatusInternalServerError
	switch {
	case errors.As(err, &ve):
		status = fiber.StatusBadRequest
		body["code"] = "VALIDATION"
		body["message"] = ve.Message
		body["field"] = ve.Field
		if ve.Field == "serial" && ve.Value != "" {
			body["serial"] = ve.Value
		}
		applog.Security(c, "input.invalid", map[string]any{"field": ve.Field})
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
		body["code"] = "NOT_FOUND"
		body["message"] = "Not found"
		if se != nil {
			body["message"] = "Serial not found"
		}
	case errors.Is(err, domain.ErrUnauthorized):
		status = fiber.StatusUnauthorized
		body["code"] = "UNAUTHORIZED"
		body["message"] = "Unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		status = fiber.StatusForbidden
		body["code"] = "FORBIDDEN"
		body["message"] = "Forbidden"
	case errors.Is(err, domain.ErrAlreadyRegistered):
		status = fiber.StatusConflict
		body["code"] = "ALREADY_REGISTERED"
		body["message"] = "Serial already registered"
	case errors.Is(err, domain.ErrInvalidTransition):
		status = fiber.StatusConflict
		body["code"] = "INVALID_TRANSITION"
		body["message"] = "Only pending registrations can be accepted or rejected"
	case errors.Is(err, domain.ErrReferenced):
		status = fiber.StatusConflict
		body["code"] = "REFERENCED"
		body["message"] = "Resource is still in use"
	case errors.Is(err, domain.ErrConflict):
		status = fiber.StatusConflict
		body["code"] = "CONFLICT"
		body["message"] = "Already exists"
		if se != nil {
			body["message"] = fmt.Sprintf("Duplicate serial: %s", se.Serial)
		}
	default:
		applog.Error(c, "server.error", err, nil)
		return c.Status(status).JSON(fiber.Map{"message": "Server error"})
	}
	if se != nil {
		body["serial"] = se.Serial
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler is the fiber-level fallback for errors that escape handlers,
// including recovered panics and framework errors such as 404 or 413.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
}
