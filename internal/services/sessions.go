package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fileshelf/backend/internal/models"
	"github.com/fileshelf/backend/pkg/logger"
	"github.com/fileshelf/backend/pkg/utils"
)

const (
	sessionKeyPrefix = "auth_"
	sessionTTL       = 24 * time.Hour
)

// SessionStore is the key/value cache holding token sessions. The store owns
// expiry through the TTL passed at set time.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) (bool, error)
}

type credentialFinder interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// SessionService issues and resolves opaque bearer tokens. Every protected
// operation goes through Resolve; the service never renews a session's TTL.
type SessionService struct {
	users    credentialFinder
	sessions SessionStore
}

func NewSessionService(users credentialFinder, sessions SessionStore) *SessionService {
	return &SessionService{users: users, sessions: sessions}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// Login decodes basic-auth credentials from the Authorization header value,
// verifies them and issues a fresh 24-hour token.
func (s *SessionService) Login(ctx context.Context, authHeader string) (string, error) {
	email, password, ok := decodeBasicCredentials(authHeader)
	if !ok {
		return "", ErrUnauthorized
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}
	if user.Password != utils.HashPassword(password) {
		return "", ErrUnauthorized
	}

	token := uuid.NewString()
	if err := s.sessions.SetEx(ctx, sessionKey(token), user.ID.Hex(), sessionTTL); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}

	logger.InfoWithUser(user.ID.Hex(), "session_created", nil)
	return token, nil
}

// Logout deletes the session for token. An unknown token is an authorization
// failure; a store error during deletion is internal.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	key := sessionKey(token)
	_, ok, err := s.sessions.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("looking up session: %w", err)
	}
	if !ok {
		return ErrUnauthorized
	}

	deleted, err := s.sessions.Del(ctx, key)
	if err != nil || !deleted {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Resolve maps a token to its user id without renewing the TTL.
func (s *SessionService) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	userID, ok, err := s.sessions.Get(ctx, sessionKey(token))
	if err != nil {
		return "", fmt.Errorf("looking up session: %w", err)
	}
	if !ok {
		return "", ErrUnauthorized
	}
	return userID, nil
}

func decodeBasicCredentials(authHeader string) (email, password string, ok bool) {
	encoded := strings.TrimSpace(strings.TrimPrefix(authHeader, "Basic"))
	if encoded == "" {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", false
	}
	email, password, ok = strings.Cut(string(decoded), ":")
	if !ok || email == "" {
		return "", "", false
	}
	return email, password, true
}
