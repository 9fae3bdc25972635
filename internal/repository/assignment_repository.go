package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/grindhub/grindhub-api/internal/models"
)

// AssignmentRepository provides persistence for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = "assignmentid, assignmentname, assignmentmodule, assignmentpercentage, to_char(assignmentduedate, 'YYYY-MM-DD') AS assignmentduedate, assignmenttimeduedate, timeneeded, userid"

// Create stores a new assignment. New assignments start at zero percent
// completion.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.Percentage = 0
	const query = `INSERT INTO assignments (assignmentid, assignmentname, assignmentmodule, assignmentpercentage, assignmentduedate, assignmenttimeduedate, timeneeded, userid) VALUES (:assignmentid, :assignmentname, :assignmentmodule, :assignmentpercentage, :assignmentduedate, :assignmenttimeduedate, :timeneeded, :userid)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// ListByUser returns all assignments owned by the user.
func (r *AssignmentRepository) ListByUser(ctx context.Context, userID string) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE userid = $1", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, userID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// UpdatePercentage sets the tracked completion percentage.
func (r *AssignmentRepository) UpdatePercentage(ctx context.Context, id string, percentage int) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE assignments SET assignmentpercentage = $1 WHERE assignmentid = $2`, percentage, id); err != nil {
		return fmt.Errorf("update assignment percentage: %w", err)
	}
	return nil
}
