package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/fileshelf/backend/pkg/logger"
	"github.com/fileshelf/backend/pkg/utils"
)

const (
	// TokenHeader carries the opaque session token on protected requests.
	TokenHeader = "X-Token"

	userIDKey = "userID"
)

// TokenResolver maps a session token to a user id.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	sessions TokenResolver
}

func NewAuthMiddleware(sessions TokenResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireAuth resolves the X-Token header to a user id and stores it in the
// request context. Missing, unknown and expired tokens are indistinguishable
// to the client.
func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	token := c.Get(TokenHeader)
	userID, err := a.sessions.Resolve(c.Context(), token)
	if err != nil {
		logger.Warn("token_rejected", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	c.Locals(userIDKey, userID)
	return c.Next()
}

// OptionalAuth resolves the token when one is supplied but never rejects the
// request; anonymous access is decided per record downstream.
func (a *AuthMiddleware) OptionalAuth(c *fiber.Ctx) error {
	token := c.Get(TokenHeader)
	if token == "" {
		return c.Next()
	}
	userID, err := a.sessions.Resolve(c.Context(), token)
	if err == nil {
		c.Locals(userIDKey, userID)
	}
	return c.Next()
}

// CurrentUserID returns the resolved user id, or "" for anonymous requests.
func CurrentUserID(c *fiber.Ctx) string {
	value := c.Locals(userIDKey)
	if value == nil {
		return ""
	}
	userID, ok := value.(string)
	if !ok {
		return ""
	}
	return userID
}
