package utils

import "github.com/gofiber/fiber/v2"

// JSON writes payload as the response body with the given status. The API
// serializes records and token envelopes directly, without a wrapper object.
func JSON(c *fiber.Ctx, status int, payload interface{}) error {
	return c.Status(status).JSON(payload)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
