package http

import "github.com/gofiber/fiber/v2"

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, internal_error, unavailable
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

func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal logs the cause and returns a 500 without leaking it.
func errInternal(c *fiber.Ctx, msg string, err error) error {
	LoggerFromCtx(c.UserContext()).Error(msg, "error", err, "path", c.Path())
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}
