package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
)

type chatMessageRepository interface {
	History(ctx context.Context, groupID string, limit int) ([]models.GroupMessage, error)
	Append(ctx context.Context, groupID, userID, content string, timeSent int) (*models.GroupMessage, error)
	LatestPerGroup(ctx context.Context, userID string) ([]models.LatestMessage, error)
}

type chatRosterRepository interface {
	Description(ctx context.Context, groupID string) ([]models.GroupDescriptionEntry, error)
}

// ChatService persists and retrieves group chat messages.
type ChatService struct {
	repo         chatMessageRepository
	roster       chatRosterRepository
	logger       *zap.Logger
	historyLimit int
	maxLength    int
	now          func() time.Time
}

// NewChatService constructs a ChatService.
func NewChatService(repo chatMessageRepository, roster chatRosterRepository, logger *zap.Logger, historyLimit, maxLength int) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if historyLimit <= 0 {
		historyLimit = 200
	}
	if maxLength <= 0 {
		maxLength = 2000
	}
	return &ChatService{repo: repo, roster: roster, logger: logger, historyLimit: historyLimit, maxLength: maxLength, now: time.Now}
}

// History returns a group's messages in server order. A group with no
// messages yields an empty slice, never an error.
func (s *ChatService) History(ctx context.Context, groupID string) ([]models.GroupMessage, error) {
	messages, err := s.repo.History(ctx, groupID, s.historyLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message history")
	}
	if messages == nil {
		messages = []models.GroupMessage{}
	}
	return messages, nil
}

// Roster returns the usernames enrolled in the group. A group without
// members yields an empty slice.
func (s *ChatService) Roster(ctx context.Context, groupID string) ([]string, error) {
	if s.roster == nil {
		return []string{}, nil
	}
	entries, err := s.roster.Description(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group roster")
	}
	members := make([]string, 0, len(entries))
	for _, entry := range entries {
		members = append(members, entry.Username)
	}
	return members, nil
}

// Post validates and persists one message. The stored timesent is the
// second of the UTC day at which the server accepted the message.
func (s *ChatService) Post(ctx context.Context, groupID, userID, username, content string) (*models.GroupMessage, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, appErrors.Clone(appErrors.ErrEmptyMessage, "message content must not be empty")
	}
	if len(trimmed) > s.maxLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message content too long")
	}

	msg, err := s.repo.Append(ctx, groupID, userID, trimmed, s.secondsSinceMidnight())
	if err != nil {
		s.logger.Error("failed to persist message",
			zap.String("groupid", groupID),
			zap.String("userid", userID),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrPersistFailed.Code, appErrors.ErrPersistFailed.Status, "failed to persist message")
	}
	msg.Username = username
	return msg, nil
}

// Latest returns the newest message of each group the user has posted in.
func (s *ChatService) Latest(ctx context.Context, userID string) ([]models.LatestMessage, error) {
	messages, err := s.repo.LatestPerGroup(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest messages")
	}
	if messages == nil {
		messages = []models.LatestMessage{}
	}
	return messages, nil
}

func (s *ChatService) secondsSinceMidnight() int {
	now := s.now().UTC()
	return now.Hour()*3600 + now.Minute()*60 + now.Second()
}
