package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fileshelf/backend/internal/models"
	"github.com/fileshelf/backend/pkg/logger"
	"github.com/fileshelf/backend/pkg/utils"
)

// UserStore is the metadata-store surface for user records.
type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Enqueuer is the outbound port to the asynchronous job queue. Enqueue is
// fire-and-forget from the request path.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload any) error
}

type UserService struct {
	store   UserStore
	welcome Enqueuer
}

func NewUserService(store UserStore, welcome Enqueuer) *UserService {
	return &UserService{store: store, welcome: welcome}
}

// WelcomeJob is the payload processed by the welcome pipeline after a
// successful registration.
type WelcomeJob struct {
	UserID string `json:"userId"`
}

// Register creates a user with a hashed password and enqueues a welcome job.
// A duplicate email maps to ErrConflict.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" {
		return nil, badRequest("Missing email")
	}
	if password == "" {
		return nil, badRequest("Missing password")
	}

	user := &models.User{Email: email, Password: utils.HashPassword(password)}
	id, err := s.store.InsertUser(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	user.ID = id

	if s.welcome != nil {
		if err := s.welcome.Enqueue(ctx, WelcomeJob{UserID: id.Hex()}); err != nil {
			logger.ErrorWithUser(id.Hex(), "welcome_enqueue_failed", err, nil)
		}
	}

	logger.InfoWithUser(id.Hex(), "user_registered", map[string]interface{}{"email": email})
	return user, nil
}

// Get resolves a user id (as stored in the session) to its record.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return user, nil
}
