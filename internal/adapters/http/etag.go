package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ETagMiddleware sets a weak ETag on successful GET responses and answers
// 304 when the client's If-None-Match already names it.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}

		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		sum := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(sum[:8]) + `"`
		c.Set(fiber.HeaderETag, etag)

		for _, tag := range strings.Split(c.Get(fiber.HeaderIfNoneMatch), ",") {
			if tag = strings.TrimSpace(tag); tag == etag || tag == "*" {
				c.Status(fiber.StatusNotModified)
				c.Response().ResetBody()
				return nil
			}
		}
		return nil
	}
}
