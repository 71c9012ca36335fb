package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// DefaultAPIVersion is served when the client does not pin a version.
const DefaultAPIVersion = "1.0.0"

// VersionMiddleware negotiates the API version from the X-Api-Version
// header, stores it for handlers, and echoes the resolved version on the
// response.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", DefaultAPIVersion)

		// Support version aliases
		if version == "1.0" {
			version = DefaultAPIVersion
		}

		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", version)

		return c.Next()
	}
}
