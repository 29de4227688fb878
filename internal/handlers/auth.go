package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fileshelf/backend/internal/middleware"
	"github.com/fileshelf/backend/internal/services"
	"github.com/fileshelf/backend/pkg/utils"
)

type AuthHandler struct {
	sessions *services.SessionService
}

func NewAuthHandler(sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Connect exchanges basic-auth credentials for an opaque session token.
func (h *AuthHandler) Connect(c *fiber.Ctx) error {
	token, err := h.sessions.Login(c.Context(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.JSON(c, fiber.StatusOK, fiber.Map{"token": token})
}

// Disconnect deletes the session behind the X-Token header.
func (h *AuthHandler) Disconnect(c *fiber.Ctx) error {
	err := h.sessions.Logout(c.Context(), c.Get(middleware.TokenHeader))
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			return utils.Error(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
