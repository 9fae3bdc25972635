package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/grindhub/grindhub-api/internal/models"
)

// MessageRepository provides persistence for group chat messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// History returns a group's messages joined with sender usernames in
// authoritative server order. An empty slice means no history, not an error.
func (r *MessageRepository) History(ctx context.Context, groupID string, limit int) ([]models.GroupMessage, error) {
	if limit <= 0 {
		limit = 200
	}
	const query = `SELECT m.messageid, m.groupid, m.userid, u.username, m.messagecontent, to_char(m.datesent, 'YYYY-MM-DD') AS datesent, m.timesent FROM messagecollections m JOIN users u ON m.userid = u.userid WHERE m.groupid = $1 ORDER BY m.datesent ASC, m.timesent ASC LIMIT $2`
	var messages []models.GroupMessage
	if err := r.db.SelectContext(ctx, &messages, query, groupID, limit); err != nil {
		return nil, fmt.Errorf("message history: %w", err)
	}
	return messages, nil
}

// Append persists one message. The send date comes from the database clock;
// timesent is seconds since midnight supplied by the caller.
func (r *MessageRepository) Append(ctx context.Context, groupID, userID, content string, timeSent int) (*models.GroupMessage, error) {
	messageID := uuid.NewString()
	const query = `INSERT INTO messagecollections (messageid, groupid, userid, messagecontent, datesent, timesent) VALUES ($1, $2, $3, $4, NOW(), $5) RETURNING messageid, groupid, userid, messagecontent, to_char(datesent, 'YYYY-MM-DD') AS datesent, timesent`
	var msg models.GroupMessage
	if err := r.db.GetContext(ctx, &msg, query, messageID, groupID, userID, content, timeSent); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return &msg, nil
}

// LatestPerGroup returns the newest message of each group the user has
// posted in, for the chat list preview.
func (r *MessageRepository) LatestPerGroup(ctx context.Context, userID string) ([]models.LatestMessage, error) {
	const query = `SELECT groupid, messagecontent FROM (SELECT *, ROW_NUMBER() OVER (PARTITION BY groupid ORDER BY datesent DESC, timesent DESC) AS rn FROM messagecollections WHERE userid = $1) AS subquery WHERE rn = 1`
	var messages []models.LatestMessage
	if err := r.db.SelectContext(ctx, &messages, query, userID); err != nil {
		return nil, fmt.Errorf("latest messages: %w", err)
	}
	return messages, nil
}
