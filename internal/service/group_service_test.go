package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
)

type fakeGroupRepo struct {
	byCode  map[string]*models.Group
	members []*models.GroupMember
}

func (f *fakeGroupRepo) Create(_ context.Context, group *models.Group) error {
	group.ID = "g1"
	return nil
}

func (f *fakeGroupRepo) FindByInvitationCode(_ context.Context, code string) (*models.Group, error) {
	if group, ok := f.byCode[code]; ok {
		return group, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeGroupRepo) AddMember(_ context.Context, member *models.GroupMember) error {
	f.members = append(f.members, member)
	return nil
}

func (f *fakeGroupRepo) ListByUser(context.Context, string) ([]models.GroupSummary, error) {
	return nil, nil
}

func (f *fakeGroupRepo) Description(context.Context, string) ([]models.GroupDescriptionEntry, error) {
	return nil, nil
}

func (f *fakeGroupRepo) MemberClassTimes(context.Context, string) ([]models.MemberClassTime, error) {
	return nil, nil
}

func TestCreateGroupGeneratesCodeAndEnrollsCreator(t *testing.T) {
	repo := &fakeGroupRepo{}
	svc := NewGroupService(repo, nil, zap.NewNop())

	group, err := svc.Create(context.Background(), "u1", CreateGroupRequest{Name: "CS2040 squad"})
	require.NoError(t, err)
	assert.Len(t, group.InvitationCode, 6)
	require.Len(t, repo.members, 1)
	assert.Equal(t, "u1", repo.members[0].UserID)
	assert.Equal(t, "g1", repo.members[0].GroupID)
}

func TestJoinUnknownInvitationCode(t *testing.T) {
	svc := NewGroupService(&fakeGroupRepo{}, nil, zap.NewNop())

	_, err := svc.Join(context.Background(), "u1", "NOPE99")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvitationCode.Code, appErr.Code)
}

func TestJoinByInvitationCode(t *testing.T) {
	repo := &fakeGroupRepo{byCode: map[string]*models.Group{
		"AB12CD": {ID: "g1", Name: "CS2040 squad", InvitationCode: "AB12CD"},
	}}
	svc := NewGroupService(repo, nil, zap.NewNop())

	group, err := svc.Join(context.Background(), "u2", "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, "g1", group.ID)
	require.Len(t, repo.members, 1)
	assert.Equal(t, "u2", repo.members[0].UserID)
}

func TestDescriptionEmptyMeansNotFound(t *testing.T) {
	svc := NewGroupService(&fakeGroupRepo{}, nil, zap.NewNop())

	_, err := svc.Description(context.Background(), "missing")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestInvitationCodeAlphabet(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateInvitationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.Contains(t, invitationCodeAlphabet, string(r))
		}
	}
}
