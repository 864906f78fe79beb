package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// VersionMiddleware reads the X-Api-Version request header, normalizes short
// forms, and exposes the result as the "apiVersion" local for handlers.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", "1.0.0")

		// Clients may send the two-segment alias.
		if version == "1.0" {
			version = "1.0.0"
		}

		c.Locals("apiVersion", version)

		return c.Next()
	}
}
