package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/grindhub/grindhub-api/internal/models"
)

// ModuleRepository provides persistence for course modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository creates a new module repository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// Create stores a new module record.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	const query = `INSERT INTO modules (moduleid, modulename, moduletitle, credits, instructor, userid) VALUES (:moduleid, :modulename, :moduletitle, :credits, :instructor, :userid)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// ListByUser returns all modules owned by the user.
func (r *ModuleRepository) ListByUser(ctx context.Context, userID string) ([]models.Module, error) {
	const query = `SELECT moduleid, modulename, moduletitle, credits, instructor, userid FROM modules WHERE userid = $1`
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query, userID); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// DistinctNames returns every module name a user references, whether from
// an enrolled module or an assignment's module field.
func (r *ModuleRepository) DistinctNames(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT DISTINCT modulename FROM modules WHERE userid = $1 UNION SELECT DISTINCT assignmentmodule AS modulename FROM assignments WHERE userid = $1`
	var names []string
	if err := r.db.SelectContext(ctx, &names, query, userID); err != nil {
		return nil, fmt.Errorf("list module names: %w", err)
	}
	return names, nil
}
