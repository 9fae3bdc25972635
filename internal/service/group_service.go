package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
)

const (
	invitationCodeLength   = 6
	invitationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type groupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	FindByInvitationCode(ctx context.Context, code string) (*models.Group, error)
	AddMember(ctx context.Context, member *models.GroupMember) error
	ListByUser(ctx context.Context, userID string) ([]models.GroupSummary, error)
	Description(ctx context.Context, groupID string) ([]models.GroupDescriptionEntry, error)
	MemberClassTimes(ctx context.Context, groupID string) ([]models.MemberClassTime, error)
}

// CreateGroupRequest is the payload for creating a study group.
type CreateGroupRequest struct {
	Name        string `json:"groupname" validate:"required,min=1"`
	Description string `json:"groupdescription"`
}

// GroupService manages study groups and their membership.
type GroupService struct {
	repo      groupRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGroupService constructs a GroupService.
func NewGroupService(repo groupRepository, validate *validator.Validate, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GroupService{repo: repo, validator: validate, logger: logger}
}

// Create makes a new group with a fresh invitation code and enrolls the
// creator as its first member.
func (s *GroupService) Create(ctx context.Context, userID string, req CreateGroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}

	code, err := generateInvitationCode()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate invitation code")
	}

	group := &models.Group{
		Name:           req.Name,
		Description:    req.Description,
		InvitationCode: code,
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}

	if err := s.repo.AddMember(ctx, &models.GroupMember{UserID: userID, GroupID: group.ID}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll group creator")
	}

	return group, nil
}

// Join enrolls the user into the group behind the invitation code.
func (s *GroupService) Join(ctx context.Context, userID, invitationCode string) (*models.Group, error) {
	if invitationCode == "" {
		return nil, appErrors.Clone(appErrors.ErrInvitationCode, "invitation code is required")
	}

	group, err := s.repo.FindByInvitationCode(ctx, invitationCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvitationCode, "no group matches this invitation code")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up invitation code")
	}

	if err := s.repo.AddMember(ctx, &models.GroupMember{UserID: userID, GroupID: group.ID}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to join group")
	}
	return group, nil
}

// List returns the groups the user belongs to.
func (s *GroupService) List(ctx context.Context, userID string) ([]models.GroupSummary, error) {
	groups, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	if groups == nil {
		groups = []models.GroupSummary{}
	}
	return groups, nil
}

// Description returns the group's metadata alongside its member roster.
func (s *GroupService) Description(ctx context.Context, groupID string) ([]models.GroupDescriptionEntry, error) {
	entries, err := s.repo.Description(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group description")
	}
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	return entries, nil
}

// MemberClassTimes returns every member's class slots for meeting planning.
func (s *GroupService) MemberClassTimes(ctx context.Context, groupID string) ([]models.MemberClassTime, error) {
	times, err := s.repo.MemberClassTimes(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member class times")
	}
	if times == nil {
		times = []models.MemberClassTime{}
	}
	return times, nil
}

func generateInvitationCode() (string, error) {
	buf := make([]byte, invitationCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = invitationCodeAlphabet[int(b)%len(invitationCodeAlphabet)]
	}
	return string(buf), nil
}
