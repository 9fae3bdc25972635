package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
)

type fakeMessageRepo struct {
	history    []models.GroupMessage
	historyErr error
	appended   *models.GroupMessage
	appendErr  error
	latest     []models.LatestMessage

	gotContent  string
	gotTimeSent int
}

func (f *fakeMessageRepo) History(context.Context, string, int) ([]models.GroupMessage, error) {
	return f.history, f.historyErr
}

func (f *fakeMessageRepo) Append(_ context.Context, groupID, userID, content string, timeSent int) (*models.GroupMessage, error) {
	f.gotContent = content
	f.gotTimeSent = timeSent
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	if f.appended != nil {
		return f.appended, nil
	}
	return &models.GroupMessage{ID: "m1", GroupID: groupID, UserID: userID, Content: content, TimeSent: timeSent}, nil
}

func (f *fakeMessageRepo) LatestPerGroup(context.Context, string) ([]models.LatestMessage, error) {
	return f.latest, nil
}

func TestHistoryEmptyGroupReturnsEmptySlice(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewChatService(repo, nil, zap.NewNop(), 0, 0)

	messages, err := svc.History(context.Background(), "g1")
	require.NoError(t, err)
	require.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestPostRejectsWhitespaceOnlyContent(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewChatService(repo, nil, zap.NewNop(), 0, 0)

	_, err := svc.Post(context.Background(), "g1", "u1", "ana", "   \n\t ")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrEmptyMessage.Code, appErr.Code)
	assert.Empty(t, repo.gotContent)
}

func TestPostRejectsOverlongContent(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewChatService(repo, nil, zap.NewNop(), 0, 10)

	_, err := svc.Post(context.Background(), "g1", "u1", "ana", strings.Repeat("x", 11))
	require.Error(t, err)
}

func TestPostTrimsAndFillsUsername(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewChatService(repo, nil, zap.NewNop(), 0, 0)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 13, 30, 15, 0, time.UTC)
	}

	msg, err := svc.Post(context.Background(), "g1", "u1", "ana", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", repo.gotContent)
	assert.Equal(t, 13*3600+30*60+15, repo.gotTimeSent)
	assert.Equal(t, "ana", msg.Username)
}

func TestPostSurfacesPersistFailure(t *testing.T) {
	repo := &fakeMessageRepo{appendErr: errors.New("db down")}
	svc := NewChatService(repo, nil, zap.NewNop(), 0, 0)

	_, err := svc.Post(context.Background(), "g1", "u1", "ana", "hello")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrPersistFailed.Code, appErr.Code)
}

func TestLatestEmptyReturnsEmptySlice(t *testing.T) {
	svc := NewChatService(&fakeMessageRepo{}, nil, zap.NewNop(), 0, 0)

	latest, err := svc.Latest(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Empty(t, latest)
}

type fakeRosterRepo struct {
	entries []models.GroupDescriptionEntry
	err     error
}

func (f *fakeRosterRepo) Description(context.Context, string) ([]models.GroupDescriptionEntry, error) {
	return f.entries, f.err
}

func TestRosterReturnsMemberUsernames(t *testing.T) {
	roster := &fakeRosterRepo{entries: []models.GroupDescriptionEntry{
		{Username: "ana", UserID: "u1"},
		{Username: "bob", UserID: "u2"},
	}}
	svc := NewChatService(&fakeMessageRepo{}, roster, zap.NewNop(), 0, 0)

	members, err := svc.Roster(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "bob"}, members)
}

func TestRosterEmptyGroupReturnsEmptySlice(t *testing.T) {
	svc := NewChatService(&fakeMessageRepo{}, &fakeRosterRepo{}, zap.NewNop(), 0, 0)

	members, err := svc.Roster(context.Background(), "g1")
	require.NoError(t, err)
	require.NotNil(t, members)
	assert.Empty(t, members)
}
