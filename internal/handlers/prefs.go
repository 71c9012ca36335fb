package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kaziflow/kazi-sync/internal/prefs"
	"github.com/kaziflow/kazi-sync/internal/utils"
)

// PrefsHandler handles durable local preference routes
type PrefsHandler struct {
	Prefs *prefs.Store
}

// PreferenceRequest carries a preference value to set
type PreferenceRequest struct {
	Value string `json:"value"`
}

// GetPreferences handles GET /api/preferences
// @Summary Get preferences
// @Description Get the persisted theme and primary color, falling back to defaults
// @Tags Preferences
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /preferences [get]
func (h *PrefsHandler) GetPreferences(c *fiber.Ctx) error {
	theme, err := h.Prefs.Theme()
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getPreferences")
	}
	color, err := h.Prefs.PrimaryColor()
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getPreferences")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"theme":        theme,
		"primaryColor": color,
	})
}

// SetTheme handles PUT /api/preferences/theme
// @Summary Set theme
// @Description Persist the theme preference ("light" or "dark")
// @Tags Preferences
// @Accept json
// @Produce json
// @Param preference body PreferenceRequest true "Theme value"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /preferences/theme [put]
func (h *PrefsHandler) SetTheme(c *fiber.Ctx) error {
	var req PreferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "setTheme")
	}
	if err := h.Prefs.SetTheme(req.Value); err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "setTheme")
	}
	return utils.SuccessResponse(c, fiber.Map{"ok": true, "theme": req.Value}, fiber.StatusOK)
}

// SetPrimaryColor handles PUT /api/preferences/primary-color
// @Summary Set primary color
// @Description Persist the primary color preference as a hex value
// @Tags Preferences
// @Accept json
// @Produce json
// @Param preference body PreferenceRequest true "Hex color value"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /preferences/primary-color [put]
func (h *PrefsHandler) SetPrimaryColor(c *fiber.Ctx) error {
	var req PreferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "setPrimaryColor")
	}
	if err := h.Prefs.SetPrimaryColor(req.Value); err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "setPrimaryColor")
	}
	hsl, _ := prefs.HexToHSL(req.Value)
	return utils.SuccessResponse(c, fiber.Map{"ok": true, "primaryColor": req.Value, "hsl": hsl}, fiber.StatusOK)
}
