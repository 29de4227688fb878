package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/fileshelf/backend/pkg/utils"
)

// MetadataStatus is the metadata-store surface for liveness and counts.
type MetadataStatus interface {
	Ping(ctx context.Context) error
	CountUsers(ctx context.Context) (int64, error)
	CountFiles(ctx context.Context) (int64, error)
}

// CacheStatus reports session-store liveness.
type CacheStatus interface {
	Ping(ctx context.Context) error
}

type AppHandler struct {
	db    MetadataStatus
	cache CacheStatus
}

func NewAppHandler(db MetadataStatus, cache CacheStatus) *AppHandler {
	return &AppHandler{db: db, cache: cache}
}

func (h *AppHandler) Status(c *fiber.Ctx) error {
	return utils.JSON(c, fiber.StatusOK, fiber.Map{
		"redis": h.cache.Ping(c.Context()) == nil,
		"db":    h.db.Ping(c.Context()) == nil,
	})
}

func (h *AppHandler) Stats(c *fiber.Ctx) error {
	users, err := h.db.CountUsers(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	files, err := h.db.CountFiles(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.JSON(c, fiber.StatusOK, fiber.Map{
		"users": users,
		"files": files,
	})
}
