package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fileshelf/backend/internal/services"
	"github.com/fileshelf/backend/pkg/logger"
	"github.com/fileshelf/backend/pkg/utils"
)

// respondServiceError maps the service error taxonomy to HTTP responses.
// Internal causes are logged here and never reach the client.
func respondServiceError(c *fiber.Ctx, err error) error {
	var badRequest *services.BadRequestError
	switch {
	case errors.As(err, &badRequest):
		return utils.Error(c, fiber.StatusBadRequest, badRequest.Message)
	case errors.Is(err, services.ErrUnauthorized):
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, services.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrConflict):
		return utils.Error(c, fiber.StatusBadRequest, "Already exist")
	default:
		logger.Error("internal_error", err, map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
