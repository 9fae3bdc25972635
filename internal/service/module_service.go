package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
)

type moduleRepository interface {
	Create(ctx context.Context, module *models.Module) error
	ListByUser(ctx context.Context, userID string) ([]models.Module, error)
	DistinctNames(ctx context.Context, userID string) ([]string, error)
}

// CreateModuleRequest is the payload for enrolling in a module.
type CreateModuleRequest struct {
	Name       string `json:"modulename" validate:"required,min=1"`
	Title      string `json:"moduletitle"`
	Credits    int    `json:"credits" validate:"gte=0"`
	Instructor string `json:"instructor"`
}

// ModuleService manages a user's enrolled modules.
type ModuleService struct {
	repo      moduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModuleService constructs a ModuleService.
func NewModuleService(repo moduleRepository, validate *validator.Validate, logger *zap.Logger) *ModuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ModuleService{repo: repo, validator: validate, logger: logger}
}

// Create enrolls the user in a new module.
func (s *ModuleService) Create(ctx context.Context, userID string, req CreateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}

	module := &models.Module{
		Name:       req.Name,
		Title:      req.Title,
		Credits:    req.Credits,
		Instructor: req.Instructor,
		UserID:     userID,
	}
	if err := s.repo.Create(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
	}
	return module, nil
}

// List returns the user's enrolled modules.
func (s *ModuleService) List(ctx context.Context, userID string) ([]models.Module, error) {
	modules, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	if modules == nil {
		modules = []models.Module{}
	}
	return modules, nil
}

// Names returns every distinct module name the user references, including
// names that only appear on assignments.
func (s *ModuleService) Names(ctx context.Context, userID string) ([]string, error) {
	names, err := s.repo.DistinctNames(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list module names")
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
