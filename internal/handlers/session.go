package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/kaziflow/kazi-sync/internal/session"
	"github.com/kaziflow/kazi-sync/internal/utils"
)

// SessionHandler exposes the mirrored session state
type SessionHandler struct {
	Session *session.Session
}

// GetState handles GET /api/session
// @Summary Get session state
// @Description Get the hydrated profile and credit balance for the signed-in principal
// @Tags Session
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /session [get]
func (h *SessionHandler) GetState(c *fiber.Ctx) error {
	profile := h.Session.Profile()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"signedIn": profile != nil,
		"profile":  profile,
		"credits":  h.Session.Credits(),
	})
}

// GetCollections handles GET /api/session/collections?collections=...
// @Summary Get mirrored collections
// @Description Get the current row sets of the requested collections, or all of them
// @Tags Session
// @Produce json
// @Param collections query string false "Comma-separated list of collections to filter"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /session/collections [get]
func (h *SessionHandler) GetCollections(c *fiber.Ctx) error {
	names := parseCollections(c)
	if names == nil {
		names = session.CollectionNames
	}

	result := make(map[string]interface{}, len(names))
	for _, name := range names {
		rows, ok := h.Session.Rows(name)
		if !ok {
			return utils.NotFoundResponse(c, fmt.Sprintf("Collection '%s' not found", name))
		}
		result[name] = rows
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// GetSentEmails handles GET /api/session/collections/sentEmails
// @Summary Get the sent-email log
// @Description Get the mirrored login-alert email log
// @Tags Session
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security CookieAuth
// @Router /session/collections/sentEmails [get]
func (h *SessionHandler) GetSentEmails(c *fiber.Ctx) error {
	rows, _ := h.Session.Rows(session.CollectionSentEmails)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{session.CollectionSentEmails: rows})
}

// GetCollection handles GET /api/session/collections/:name
// @Summary Get one mirrored collection
// @Description Get the current row set of a single collection
// @Tags Session
// @Produce json
// @Param name path string true "Collection name"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /session/collections/{name} [get]
func (h *SessionHandler) GetCollection(c *fiber.Ctx) error {
	name := c.Params("name")
	rows, ok := h.Session.Rows(name)
	if !ok {
		return utils.NotFoundResponse(c, fmt.Sprintf("Collection '%s' not found", name))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{name: rows})
}
