package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fileshelf/backend/internal/middleware"
	"github.com/fileshelf/backend/internal/services"
	"github.com/fileshelf/backend/pkg/utils"
)

type UsersHandler struct {
	users *services.UserService
}

func NewUsersHandler(users *services.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.Register(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.JSON(c, fiber.StatusCreated, user.ToResponse())
}

func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, err := h.users.Get(c.Context(), middleware.CurrentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.JSON(c, fiber.StatusOK, user.ToResponse())
}
