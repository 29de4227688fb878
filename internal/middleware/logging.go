package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fileshelf/backend/pkg/logger"
)

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		details := map[string]interface{}{
			"method":      c.Method(),
			"path":        c.Path(),
			"status_code": c.Response().StatusCode(),
			"latency_ms":  time.Since(start).Milliseconds(),
			"ip":          c.IP(),
		}

		if userID := CurrentUserID(c); userID != "" {
			logger.InfoWithUser(userID, "http_request", details)
		} else {
			logger.Info("http_request", details)
		}

		return err
	}
}
