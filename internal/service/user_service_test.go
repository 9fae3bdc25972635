package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
)

type fakeNotificationRepo struct {
	user      *models.User
	gotColumn string
	gotValue  bool
	called    bool
}

func (f *fakeNotificationRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	return f.user, nil
}

func (f *fakeNotificationRepo) UpdateNotification(_ context.Context, userID, column string, value bool) (*models.User, error) {
	f.called = true
	f.gotColumn = column
	f.gotValue = value
	return f.user, nil
}

func TestUpdateNotificationRejectsUnknownField(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewUserService(repo, zap.NewNop())

	_, err := svc.UpdateNotification(context.Background(), "u1", UpdateNotificationRequest{Field: "isAdmin", Value: true})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.False(t, repo.called, "unknown fields must never reach the repository")
}

func TestUpdateNotificationMapsWhitelistedField(t *testing.T) {
	repo := &fakeNotificationRepo{user: &models.User{ID: "u1"}}
	svc := NewUserService(repo, zap.NewNop())

	user, err := svc.UpdateNotification(context.Background(), "u1", UpdateNotificationRequest{Field: "taskDeadline", Value: false})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "tasknotification", repo.gotColumn)
	assert.False(t, repo.gotValue)
}
