package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/grindhub/grindhub-api/internal/models"
)

// ClassRepository provides persistence for scheduled classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// Dates are selected as plain YYYY-MM-DD strings so the timetable ingestion
// owns all parsing.
const classColumns = "classid, userid, modulename, classtype, classlocation, to_char(startdate, 'YYYY-MM-DD') AS startdate, starttime, to_char(enddate, 'YYYY-MM-DD') AS enddate, endtime"

// Create stores a new class record.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	const query = `INSERT INTO class (classid, userid, modulename, classtype, classlocation, startdate, starttime, enddate, endtime) VALUES (:classid, :userid, :modulename, :classtype, :classlocation, :startdate, :starttime, :enddate, :endtime)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// ListByUser returns all classes owned by the user.
func (r *ClassRepository) ListByUser(ctx context.Context, userID string) ([]models.Class, error) {
	query := fmt.Sprintf("SELECT %s FROM class WHERE userid = $1", classColumns)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, userID); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}
