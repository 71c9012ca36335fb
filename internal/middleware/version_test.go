package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/kaziflow/kazi-sync/internal/middleware"
)

// TestVersionMiddleware tests version negotiation and the echoed
// response header.
func TestVersionMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("apiVersion").(string))
	})

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"default", "", middleware.DefaultAPIVersion},
		{"alias", "1.0", "1.0.0"},
		{"pinned", "2.0.0", "2.0.0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("X-Api-Version", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to execute request: %v", err)
			}
			if got := resp.Header.Get("X-Api-Version"); got != tc.want {
				t.Errorf("Expected echoed version %s, got %s", tc.want, got)
			}
		})
	}
}
