package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/yangonmaps/citymap/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

// serviceError maps a use case error onto a response. what names the
// resource for 404 messages, e.g. "road".
func serviceError(c *fiber.Ctx, err error, what string) error {
	switch {
	case errors.Is(err, usecases.ErrNotFound):
		return errNotFound(c, what+" not found")
	case errors.Is(err, usecases.ErrNoRoute):
		return errNotFound(c, err.Error())
	case usecases.IsValidation(err):
		return errBadRequest(c, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return newError(c, fiber.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		LoggerFromCtx(c.UserContext()).Error("request failed", "resource", what, "error", err)
		return errInternal(c, "internal error")
	}
}
