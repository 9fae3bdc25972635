package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/grindhub/grindhub-api/internal/models"
)

// GroupRepository provides persistence for study groups and memberships.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create stores a new group.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	const query = `INSERT INTO groupcollections (groupid, groupname, groupdescription, invitationcode) VALUES (:groupid, :groupname, :groupdescription, :invitationcode)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// FindByInvitationCode resolves a group from its invitation code.
func (r *GroupRepository) FindByInvitationCode(ctx context.Context, code string) (*models.Group, error) {
	const query = `SELECT groupid, groupname, groupdescription, invitationcode FROM groupcollections WHERE invitationcode = $1 LIMIT 1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, code); err != nil {
		return nil, err
	}
	return &group, nil
}

// AddMember links a user to a group.
func (r *GroupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	const query = `INSERT INTO groupmembers (memberid, userid, groupid) VALUES (:memberid, :userid, :groupid)`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

// ListByUser returns the groups a user belongs to.
func (r *GroupRepository) ListByUser(ctx context.Context, userID string) ([]models.GroupSummary, error) {
	const query = `SELECT gc.groupid, gc.groupname FROM groupmembers gm JOIN groupcollections gc ON gm.groupid = gc.groupid WHERE gm.userid = $1`
	var groups []models.GroupSummary
	if err := r.db.SelectContext(ctx, &groups, query, userID); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Description returns the group's metadata joined with its member roster.
func (r *GroupRepository) Description(ctx context.Context, groupID string) ([]models.GroupDescriptionEntry, error) {
	const query = `SELECT u.username, u.userid, gc.groupdescription, gc.groupname, gc.invitationcode FROM groupcollections gc JOIN groupmembers gm ON gm.groupid = gc.groupid JOIN users u ON gm.userid = u.userid WHERE gm.groupid = $1`
	var entries []models.GroupDescriptionEntry
	if err := r.db.SelectContext(ctx, &entries, query, groupID); err != nil {
		return nil, fmt.Errorf("group description: %w", err)
	}
	return entries, nil
}

// MemberClassTimes returns the class slots of every member, for finding a
// common meeting window.
func (r *GroupRepository) MemberClassTimes(ctx context.Context, groupID string) ([]models.MemberClassTime, error) {
	const query = `SELECT to_char(c.startdate, 'YYYY-MM-DD') AS startdate, c.starttime, c.endtime FROM class c JOIN groupmembers gm ON gm.userid = c.userid WHERE gm.groupid = $1`
	var times []models.MemberClassTime
	if err := r.db.SelectContext(ctx, &times, query, groupID); err != nil {
		return nil, fmt.Errorf("member class times: %w", err)
	}
	return times, nil
}
