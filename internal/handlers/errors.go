package handlers

import (
	"errors"
	"net/url"

	"lifejournal/internal/logging"
	"lifejournal/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError writes err in the {"error": "..."} envelope with the status
// code matching its kind.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrBadRequest):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	}

	msg := "Internal server error"
	cause := err
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		msg = svcErr.Msg
		cause = svcErr.Cause
	}

	if status >= fiber.StatusInternalServerError {
		logging.Error().Err(cause).Str("method", c.Method()).Str("path", c.Path()).Msg(msg)
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// badRequest writes a 400 envelope.
func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

// ErrorHandler is the Fiber error handler; it keeps framework errors such as
// unknown routes or recovered panics in the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		logging.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// param returns a path parameter with percent-escapes decoded.
func param(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
