package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateNotification(ctx context.Context, userID, column string, value bool) (*models.User, error)
}

// UpdateNotificationRequest flips one notification preference. Field names
// the whitelist does not know are rejected.
type UpdateNotificationRequest struct {
	Field string `json:"field"`
	Value bool   `json:"value"`
}

// UserService manages user profiles and notification preferences.
type UserService struct {
	repo   userRepository
	logger *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo userRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// Get loads the user's profile.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// UpdateNotification flips one whitelisted notification preference and
// returns the refreshed profile.
func (s *UserService) UpdateNotification(ctx context.Context, userID string, req UpdateNotificationRequest) (*models.User, error) {
	column, ok := models.NotificationColumns[req.Field]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown notification field")
	}

	user, err := s.repo.UpdateNotification(ctx, userID, column, req.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notification preference")
	}
	return user, nil
}
