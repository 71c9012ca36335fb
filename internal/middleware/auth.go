package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/kaziflow/kazi-sync/internal/types"
)

// SessionValidator checks a session cookie against the auth provider.
type SessionValidator interface {
	ValidateSession(cookie string, roles []string) (map[string]interface{}, error)
}

// AuthAdmin validates that the request has admin role authorization
func AuthAdmin(v SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, v, []string{"admin"}, "session.authorization.admin")
	}
}

// AuthUser validates that the request has user role authorization
func AuthUser(v SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, v, []string{"user"}, "session.authorization.user")
	}
}

// authorize performs the authorization check
func authorize(c *fiber.Ctx, v SessionValidator, roles []string, errorType string) error {
	// Get session cookie
	session := c.Cookies("cookie_session")
	if session == "" {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: "Authorizer cookie \"cookie_session\" not found",
			Type:    errorType,
		}
	}

	// Validate session
	data, err := v.ValidateSession(session, roles)
	if err != nil {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("Invalid session: %v", err),
			Type:    errorType,
		}
	}

	// Set user data in context
	if user, ok := data["user"]; ok {
		c.Locals("user", user)
	}

	return c.Next()
}
