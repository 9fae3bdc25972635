package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/grindhub/grindhub-api/internal/models"
)

// UserRepository provides persistence for users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "userid, email, username, password, notification, tasknotification, classnotification, groupnotification, privatenotification, created_at"

// FindByEmail loads a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1 LIMIT 1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE userid = $1 LIMIT 1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create stores a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	const query = `INSERT INTO users (userid, email, username, password, notification, tasknotification, classnotification, groupnotification, privatenotification)
		VALUES (:userid, :email, :username, :password, :notification, :tasknotification, :classnotification, :groupnotification, :privatenotification)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateNotification flips one notification preference column. The column
// name must come from models.NotificationColumns; callers validate before
// reaching this query builder.
func (r *UserRepository) UpdateNotification(ctx context.Context, userID, column string, value bool) (*models.User, error) {
	query := fmt.Sprintf("UPDATE users SET %s = $1 WHERE userid = $2 RETURNING %s", column, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, value, userID); err != nil {
		return nil, err
	}
	return &user, nil
}
