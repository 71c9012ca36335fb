package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kaziflow/kazi-sync/internal/auth"
	"github.com/kaziflow/kazi-sync/internal/session"
	"github.com/kaziflow/kazi-sync/internal/utils"
)

// AuthHandler handles credential exchange routes
type AuthHandler struct {
	Gateway *session.Gateway
	Auth    auth.Service
}

// LoginRequest is the credential payload for Login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
// @Summary Sign in with email and password
// @Description Exchanges credentials for a session. Failures are reported without distinguishing bad credentials from provider outages.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "login")
	}
	if req.Email == "" || req.Password == "" {
		return utils.ErrorResponse(c, "email and password are required", fiber.StatusBadRequest, "login")
	}

	if !h.Gateway.Authenticate(c.Context(), req.Email, req.Password) {
		return utils.ErrorResponse(c, "Login failed", fiber.StatusUnauthorized, "login")
	}

	return utils.SuccessResponse(c, fiber.Map{"ok": true}, fiber.StatusOK)
}

// Logout handles POST /api/auth/logout
// @Summary Sign out
// @Description Ends the current session and releases all live subscriptions.
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Auth.SignOut(c.Context()); err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "logout")
	}
	return utils.SuccessResponse(c, fiber.Map{"ok": true}, fiber.StatusOK)
}
