package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fileshelf/backend/internal/models"
	"github.com/fileshelf/backend/internal/services"
	"github.com/fileshelf/backend/pkg/logger"
)

// UserFinder loads the user record for a welcome job.
type UserFinder interface {
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Notifier performs the welcome side effect. The delivery mechanism is an
// external collaborator.
type Notifier interface {
	Welcome(ctx context.Context, user *models.User) error
}

// LogNotifier announces new users through the structured log.
type LogNotifier struct{}

func (LogNotifier) Welcome(_ context.Context, user *models.User) error {
	logger.InfoWithUser(user.ID.Hex(), "welcome_sent", map[string]interface{}{
		"email": user.Email,
	})
	return nil
}

// WelcomeWorker processes registration welcome jobs.
type WelcomeWorker struct {
	users    UserFinder
	notifier Notifier
}

func NewWelcomeWorker(users UserFinder, notifier Notifier) *WelcomeWorker {
	return &WelcomeWorker{users: users, notifier: notifier}
}

func (w *WelcomeWorker) Handle(ctx context.Context, payload []byte) error {
	var job services.WelcomeJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("decoding welcome job: %w", err)
	}
	if job.UserID == "" {
		return errors.New("Missing userId")
	}

	id, err := primitive.ObjectIDFromHex(job.UserID)
	if err != nil {
		return errors.New("User not found")
	}
	user, err := w.users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errors.New("User not found")
		}
		return fmt.Errorf("loading user record: %w", err)
	}

	return w.notifier.Welcome(ctx, user)
}
